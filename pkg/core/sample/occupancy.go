package sample

import (
	"math/rand/v2"

	"github.com/matzehuels/evsynth/pkg/core/raster"
)

// Occupancy records which pixels of a square or rectangular canvas are
// covered by placed disks. It keeps a bitmap for window queries and a list
// of covered pixels so a uniformly random covered pixel can be drawn in O(1).
type Occupancy struct {
	width, height int
	covered       []bool
	pixels        []raster.Coordinate
}

// NewOccupancy returns an empty index for a width×height canvas.
func NewOccupancy(width, height int) *Occupancy {
	return &Occupancy{width: width, height: height, covered: make([]bool, width*height)}
}

// Count returns the number of covered pixels.
func (o *Occupancy) Count() int { return len(o.pixels) }

// Empty reports whether no pixel is covered yet.
func (o *Occupancy) Empty() bool { return len(o.pixels) == 0 }

// Occupied reports whether (x, y) is covered. Off-canvas positions never are.
func (o *Occupancy) Occupied(x, y int) bool {
	if x < 0 || y < 0 || x >= o.width || y >= o.height {
		return false
	}
	return o.covered[y*o.width+x]
}

// AnyInWindow reports whether any covered pixel lies in the square of
// half-width h centred on c, i.e. a (2h+1)×(2h+1) window clipped to the canvas.
func (o *Occupancy) AnyInWindow(c raster.Coordinate, h int) bool {
	x0, x1 := max(c.X-h, 0), min(c.X+h, o.width-1)
	y0, y1 := max(c.Y-h, 0), min(c.Y+h, o.height-1)
	for y := y0; y <= y1; y++ {
		row := o.covered[y*o.width : (y+1)*o.width]
		for x := x0; x <= x1; x++ {
			if row[x] {
				return true
			}
		}
	}
	return false
}

// Overlaps reports whether any pixel of d is already covered.
func (o *Occupancy) Overlaps(d raster.Disk) bool {
	for px := range d.Pixels() {
		if o.Occupied(px.X, px.Y) {
			return true
		}
	}
	return false
}

// Mark covers every on-canvas pixel of d.
func (o *Occupancy) Mark(d raster.Disk) {
	for px := range d.Pixels() {
		if px.X < 0 || px.Y < 0 || px.X >= o.width || px.Y >= o.height {
			continue
		}
		i := px.Y*o.width + px.X
		if o.covered[i] {
			continue
		}
		o.covered[i] = true
		o.pixels = append(o.pixels, px)
	}
}

// Random returns a uniformly chosen covered pixel. The index must not be empty.
func (o *Occupancy) Random(rng *rand.Rand) raster.Coordinate {
	return o.pixels[rng.IntN(len(o.pixels))]
}
