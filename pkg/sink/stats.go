package sink

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/evsynth/pkg/core/raster"
)

// Stats summarizes the intensities of a canvas.
type Stats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stddev"`
	Sum     float64 `json:"sum"`
	NonZero int     `json:"nonzero"`
}

// Summarize computes [Stats] over every pixel of c. An empty canvas yields
// zero stats.
func Summarize(c *raster.Canvas) Stats {
	if c == nil || len(c.Pix) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(c.Pix, nil)
	if len(c.Pix) == 1 {
		std = 0
	}
	s := Stats{
		Min:    floats.Min(c.Pix),
		Max:    floats.Max(c.Pix),
		Mean:   mean,
		StdDev: std,
		Sum:    floats.Sum(c.Pix),
	}
	for _, v := range c.Pix {
		if v != 0 {
			s.NonZero++
		}
	}
	return s
}
