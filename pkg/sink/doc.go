// Package sink turns generated point sets and rendered canvases into output
// files.
//
// # Overview
//
// Every sink takes core values ([raster.Canvas], [raster.Coordinate],
// [raster.Disk]) and returns encoded bytes. Nothing here writes to disk;
// callers decide where the bytes go. Supported formats:
//
//   - PNG: 8-bit grayscale display image ([RenderPNG])
//   - TIFF: 16-bit grayscale display image ([RenderTIFF])
//   - CSV: ground-truth coordinates with an X,Y header ([RenderCSV])
//   - JSON: run manifest for dataset bookkeeping ([RenderJSON])
//   - Overlay: display image with markers at the true positions ([RenderOverlay])
//
// Image sinks expect a display canvas in [0, 1], i.e. the output of
// [contrast.Rescale]. Values outside that range are clamped.
//
// # Options
//
// Sinks are configured with functional options:
//
//	png, err := sink.RenderPNG(display, sink.WithPNGScale(2))
//	tif, err := sink.RenderTIFF(display, sink.WithDeflate())
//	ov, err := sink.RenderOverlay(display, points, nil, sink.WithMarkerRadius(4))
//
// # Helpers
//
// [Gray] converts a display canvas to an [image.Gray]. [Thumbnail] and
// [Resample] shrink it for previews, and [Summarize] reports raster statistics.
//
// [raster.Canvas]: github.com/matzehuels/evsynth/pkg/core/raster.Canvas
// [raster.Coordinate]: github.com/matzehuels/evsynth/pkg/core/raster.Coordinate
// [raster.Disk]: github.com/matzehuels/evsynth/pkg/core/raster.Disk
// [contrast.Rescale]: github.com/matzehuels/evsynth/pkg/core/contrast.Rescale
package sink
