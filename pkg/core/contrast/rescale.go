package contrast

import (
	"slices"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// Default percentile window for display images.
const (
	DefaultLow  = 0.0
	DefaultHigh = 99.5
)

// Window is the pair of intensities a rescale mapped to 0 and 1.
type Window struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Rescale returns a new canvas with every pixel of c mapped through the
// percentile window [low, high]: values at or below the low percentile
// become 0, values at or above the high percentile become 1, and values in
// between are interpolated linearly. A flat window yields an all-zero canvas.
// c is not modified.
func Rescale(c *raster.Canvas, low, high float64) (*raster.Canvas, error) {
	out, _, err := RescaleWindow(c, low, high)
	return out, err
}

// RescaleWindow is [Rescale] that also reports the intensity window used.
func RescaleWindow(c *raster.Canvas, low, high float64) (*raster.Canvas, Window, error) {
	if c == nil || len(c.Pix) == 0 {
		return nil, Window{}, errors.New(errors.ErrCodeInvalidInput, "cannot rescale an empty canvas")
	}
	if err := errors.ValidatePercentiles(low, high); err != nil {
		return nil, Window{}, err
	}

	sorted := slices.Clone(c.Pix)
	slices.Sort(sorted)
	w := Window{Low: percentileSorted(sorted, low), High: percentileSorted(sorted, high)}

	out := &raster.Canvas{Width: c.Width, Height: c.Height, Pix: make([]float64, len(c.Pix))}
	span := w.High - w.Low
	if span <= 0 {
		return out, w, nil
	}
	for i, v := range c.Pix {
		switch {
		case v <= w.Low:
			out.Pix[i] = 0
		case v >= w.High:
			out.Pix[i] = 1
		default:
			out.Pix[i] = (v - w.Low) / span
		}
	}
	return out, w, nil
}
