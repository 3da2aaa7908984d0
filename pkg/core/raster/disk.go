package raster

import (
	"iter"

	"github.com/matzehuels/evsynth/pkg/errors"
)

// DiskValue is the intensity written into every pixel of a placed disk.
const DiskValue = 0.8

// Disk is a filled circle of integer radius around a pixel centre.
type Disk struct {
	Center Coordinate `json:"center"`
	Radius int        `json:"radius"`
}

// Inside reports whether the whole disk lies on a width×height canvas.
func (d Disk) Inside(width, height int) bool {
	return d.Center.X-d.Radius >= 0 && d.Center.Y-d.Radius >= 0 &&
		d.Center.X+d.Radius < width && d.Center.Y+d.Radius < height
}

// Pixels yields every pixel whose squared distance to the centre is at most
// Radius², row by row.
func (d Disk) Pixels() iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		r2 := d.Radius * d.Radius
		for dy := -d.Radius; dy <= d.Radius; dy++ {
			for dx := -d.Radius; dx <= d.Radius; dx++ {
				if dx*dx+dy*dy > r2 {
					continue
				}
				if !yield(Coordinate{X: d.Center.X + dx, Y: d.Center.Y + dy}) {
					return
				}
			}
		}
	}
}

// RenderDisks returns a fresh canvas with every disk filled at [DiskValue].
// Pixels that fall off the canvas are dropped.
func RenderDisks(disks []Disk, width, height int) (*Canvas, error) {
	c, err := NewCanvas(width, height)
	if err != nil {
		return nil, err
	}
	for _, d := range disks {
		if d.Radius < 0 {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "disk at %s has negative radius %d", d.Center, d.Radius)
		}
		for px := range d.Pixels() {
			if c.In(px.X, px.Y) {
				c.Set(px.X, px.Y, DiskValue)
			}
		}
	}
	return c, nil
}
