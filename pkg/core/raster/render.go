package raster

import (
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/evsynth/pkg/core/kernel"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// RenderParams configures a Gaussian-PSF render.
type RenderParams struct {
	// Radius is the kernel half-width r; patches are (2r+1)×(2r+1).
	Radius int
	// Sigma is the PSF standard deviation in pixels. Must be positive.
	Sigma float64
	// Width and Height are the canvas dimensions.
	Width  int
	Height int
	// Workers is the number of horizontal bands rendered concurrently.
	// Values below 2 render sequentially.
	Workers int
}

// Validate checks the parameters before any pixel is touched.
func (p RenderParams) Validate() error {
	if p.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "kernel radius must be non-negative, got %d", p.Radius)
	}
	if err := errors.ValidatePositive("psf sigma", p.Sigma); err != nil {
		return err
	}
	return errors.ValidateDimensions(p.Width, p.Height)
}

// RenderStats counts what happened to each input point.
type RenderStats struct {
	Rendered int `json:"rendered"`
	Skipped  int `json:"skipped"`
}

// Fits reports whether a patch of radius r centred on pt stays inside a
// width×height canvas with a one-pixel margin on every side.
func Fits(pt Coordinate, r, width, height int) bool {
	return pt.X-r-1 >= 0 && pt.Y-r-1 >= 0 && pt.X+r+1 < width && pt.Y+r+1 < height
}

// Render accumulates one Gaussian patch per point onto a fresh canvas.
// Points that do not fit (see [Fits]) contribute nothing and are counted as
// skipped.
func Render(points []Coordinate, p RenderParams) (*Canvas, RenderStats, error) {
	if err := p.Validate(); err != nil {
		return nil, RenderStats{}, err
	}

	patch, err := kernel.Preview(p.Radius, p.Sigma)
	if err != nil {
		return nil, RenderStats{}, err
	}

	c, err := NewCanvas(p.Width, p.Height)
	if err != nil {
		return nil, RenderStats{}, err
	}

	var stats RenderStats
	accepted := make([]Coordinate, 0, len(points))
	for _, pt := range points {
		if !Fits(pt, p.Radius, p.Width, p.Height) {
			stats.Skipped++
			continue
		}
		accepted = append(accepted, pt)
	}
	stats.Rendered = len(accepted)

	workers := min(p.Workers, p.Height)
	if workers < 2 {
		stampBand(c, patch, accepted, 0, c.Height)
		return c, stats, nil
	}

	band := (c.Height + workers - 1) / workers
	var g errgroup.Group
	for y0 := 0; y0 < c.Height; y0 += band {
		y1 := min(y0+band, c.Height)
		g.Go(func() error {
			stampBand(c, patch, accepted, y0, y1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, RenderStats{}, err
	}
	return c, stats, nil
}

// stampBand adds the rows [y0, y1) of every patch. Bands are disjoint, so
// concurrent calls never write the same pixel.
func stampBand(c *Canvas, patch kernel.Patch, points []Coordinate, y0, y1 int) {
	r := patch.Radius()
	for _, pt := range points {
		top := max(pt.Y-r, y0)
		bottom := min(pt.Y+r, y1-1)
		for y := top; y <= bottom; y++ {
			row := c.Row(y)[pt.X-r : pt.X+r+1]
			weights := patch.Weights[(y-pt.Y+r)*patch.Size : (y-pt.Y+r+1)*patch.Size]
			for i, w := range weights {
				row[i] += w
			}
		}
	}
}
