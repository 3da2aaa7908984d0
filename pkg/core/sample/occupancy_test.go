package sample

import (
	"testing"

	"github.com/matzehuels/evsynth/pkg/core/raster"
)

func TestOccupancyMark(t *testing.T) {
	o := NewOccupancy(20, 20)
	if !o.Empty() {
		t.Fatal("new index should be empty")
	}

	d := raster.Disk{Center: raster.Coordinate{X: 5, Y: 5}, Radius: 1}
	o.Mark(d)
	if o.Count() != 5 {
		t.Errorf("Count() = %d, want 5", o.Count())
	}
	o.Mark(d)
	if o.Count() != 5 {
		t.Errorf("Count() after re-mark = %d, want 5", o.Count())
	}

	if !o.Occupied(5, 5) || !o.Occupied(6, 5) || o.Occupied(6, 6) {
		t.Error("Occupied() does not match a radius-1 disc")
	}
	if o.Occupied(-1, 5) || o.Occupied(5, 20) {
		t.Error("off-canvas positions must not be occupied")
	}
}

func TestOccupancyWindow(t *testing.T) {
	o := NewOccupancy(30, 30)
	o.Mark(raster.Disk{Center: raster.Coordinate{X: 10, Y: 10}, Radius: 0})

	tests := []struct {
		c    raster.Coordinate
		h    int
		want bool
	}{
		{raster.Coordinate{X: 10, Y: 10}, 0, true},
		{raster.Coordinate{X: 12, Y: 10}, 1, false},
		{raster.Coordinate{X: 12, Y: 10}, 2, true},
		{raster.Coordinate{X: 13, Y: 13}, 3, true},
		{raster.Coordinate{X: -5, Y: -5}, 2, false},
		{raster.Coordinate{X: -5, Y: -5}, 20, true},
	}

	for _, tt := range tests {
		if got := o.AnyInWindow(tt.c, tt.h); got != tt.want {
			t.Errorf("AnyInWindow(%v, %d) = %v, want %v", tt.c, tt.h, got, tt.want)
		}
	}
}

func TestOccupancyOverlapsAndRandom(t *testing.T) {
	o := NewOccupancy(40, 40)
	placed := raster.Disk{Center: raster.Coordinate{X: 20, Y: 20}, Radius: 3}
	o.Mark(placed)

	if !o.Overlaps(raster.Disk{Center: raster.Coordinate{X: 25, Y: 20}, Radius: 2}) {
		t.Error("touching disk should overlap")
	}
	if o.Overlaps(raster.Disk{Center: raster.Coordinate{X: 27, Y: 20}, Radius: 3}) {
		t.Error("separate disk should not overlap")
	}

	rng := NewRNG(2)
	for range 100 {
		px := o.Random(rng)
		if !o.Occupied(px.X, px.Y) {
			t.Fatalf("Random() returned uncovered pixel %v", px)
		}
	}
}
