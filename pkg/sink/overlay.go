package sink

import (
	"bytes"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// OverlayOption configures overlay rendering.
type OverlayOption func(*overlayRenderer)

type overlayRenderer struct {
	radius    float64
	lineWidth float64
	color     color.Color
	scale     int
}

// WithMarkerRadius sets the circle radius drawn around point markers, in
// source pixels. Disks always use their own radius.
func WithMarkerRadius(r float64) OverlayOption {
	return func(o *overlayRenderer) { o.radius = r }
}

// WithMarkerColor sets the marker stroke colour.
func WithMarkerColor(c color.Color) OverlayOption {
	return func(o *overlayRenderer) { o.color = c }
}

// WithLineWidth sets the marker stroke width in output pixels.
func WithLineWidth(w float64) OverlayOption {
	return func(o *overlayRenderer) { o.lineWidth = w }
}

// WithOverlayScale enlarges the background image by an integer factor
// before markers are drawn.
func WithOverlayScale(s int) OverlayOption {
	return func(o *overlayRenderer) { o.scale = s }
}

// RenderOverlay draws the display canvas as background and strokes a circle
// around every ground-truth point and every placed disk. The result is an
// RGBA PNG used for visual checks of generated training data.
func RenderOverlay(display *raster.Canvas, points []raster.Coordinate, disks []raster.Disk, opts ...OverlayOption) ([]byte, error) {
	o := overlayRenderer{
		radius:    3,
		lineWidth: 1,
		color:     color.RGBA{R: 0xe8, G: 0x3e, B: 0x3e, A: 0xff},
		scale:     1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scale < 1 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "overlay scale must be at least 1, got %d", o.scale)
	}

	dc := gg.NewContextForImage(scaledGray(display, o.scale))
	dc.SetColor(o.color)
	dc.SetLineWidth(o.lineWidth)

	s := float64(o.scale)
	// Pixel centres sit at +0.5 in image space.
	for _, p := range points {
		dc.DrawCircle((float64(p.X)+0.5)*s, (float64(p.Y)+0.5)*s, o.radius*s)
		dc.Stroke()
	}
	for _, d := range disks {
		dc.DrawCircle((float64(d.Center.X)+0.5)*s, (float64(d.Center.Y)+0.5)*s, (float64(d.Radius)+0.5)*s)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode overlay")
	}
	return buf.Bytes(), nil
}
