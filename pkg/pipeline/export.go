package pipeline

import (
	"fmt"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/sink"
)

// Export encodes every format in opts.Formats. display must be the rescaled
// canvas; m is written verbatim for the json format.
func Export(g Geometry, display *raster.Canvas, m sink.Manifest, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := exportOne(format, g, display, m, opts)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func exportOne(format string, g Geometry, display *raster.Canvas, m sink.Manifest, opts Options) ([]byte, error) {
	switch format {
	case FormatPNG:
		return sink.RenderPNG(display, sink.WithPNGScale(opts.Scale))
	case FormatTIFF:
		var tiffOpts []sink.TIFFOption
		if opts.Deflate {
			tiffOpts = append(tiffOpts, sink.WithDeflate())
		}
		return sink.RenderTIFF(display, tiffOpts...)
	case FormatCSV:
		return sink.RenderCSV(g.Points)
	case FormatJSON:
		return sink.RenderJSON(m)
	case FormatOverlay:
		var points []raster.Coordinate
		if g.Policy == PolicyCluster {
			points = g.Points
		}
		return sink.RenderOverlay(display, points, g.Disks,
			sink.WithMarkerRadius(opts.MarkerRadius),
			sink.WithOverlayScale(opts.Scale),
		)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}
