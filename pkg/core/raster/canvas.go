package raster

import (
	"fmt"
	"slices"

	"github.com/matzehuels/evsynth/pkg/errors"
)

// Coordinate is an integer pixel position, 0-indexed.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns "(x, y)".
func (c Coordinate) String() string { return fmt.Sprintf("(%d, %d)", c.X, c.Y) }

// Canvas is a dense float raster, row-major by y.
type Canvas struct {
	Width  int
	Height int
	Pix    []float64
}

// NewCanvas returns a zeroed canvas. Dimensions must be positive.
func NewCanvas(width, height int) (*Canvas, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	return &Canvas{Width: width, Height: height, Pix: make([]float64, width*height)}, nil
}

// In reports whether (x, y) lies on the canvas.
func (c *Canvas) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width && y < c.Height
}

// At returns the value at (x, y). It panics if the position is off the canvas.
func (c *Canvas) At(x, y int) float64 { return c.Pix[y*c.Width+x] }

// Set stores v at (x, y).
func (c *Canvas) Set(x, y int, v float64) { c.Pix[y*c.Width+x] = v }

// Clone returns a deep copy.
func (c *Canvas) Clone() *Canvas {
	return &Canvas{Width: c.Width, Height: c.Height, Pix: slices.Clone(c.Pix)}
}

// Row returns the slice backing row y.
func (c *Canvas) Row(y int) []float64 { return c.Pix[y*c.Width : (y+1)*c.Width] }
