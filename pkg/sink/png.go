package sink

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale int
}

// WithPNGScale enlarges the image by an integer factor using
// nearest-neighbour sampling, so every source pixel stays a crisp block.
func WithPNGScale(s int) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG encodes a display canvas as an 8-bit grayscale PNG.
func RenderPNG(display *raster.Canvas, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale < 1 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "png scale must be at least 1, got %d", r.scale)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaledGray(display, r.scale)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// scaledGray converts display to grayscale and enlarges it by scale with
// nearest-neighbour sampling.
func scaledGray(display *raster.Canvas, scale int) *image.Gray {
	img := Gray(display)
	if scale <= 1 {
		return img
	}
	return toGray(imaging.Resize(img, display.Width*scale, display.Height*scale, imaging.NearestNeighbor))
}
