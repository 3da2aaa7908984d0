package sink

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// Thumbnail shrinks a display canvas to fit inside w×h while keeping its
// aspect ratio. Images already inside the bounds are returned unscaled.
func Thumbnail(display *raster.Canvas, w, h int) (*image.Gray, error) {
	if err := errors.ValidateDimensions(w, h); err != nil {
		return nil, err
	}
	return toGray(imaging.Fit(Gray(display), w, h, imaging.Box)), nil
}

// Resample scales a display canvas to exactly w×h, ignoring its aspect
// ratio. The terminal preview uses it to compensate for tall character cells.
func Resample(display *raster.Canvas, w, h int) (*image.Gray, error) {
	if err := errors.ValidateDimensions(w, h); err != nil {
		return nil, err
	}
	return toGray(imaging.Resize(Gray(display), w, h, imaging.Box)), nil
}
