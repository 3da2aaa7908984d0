package sample

import (
	"math/rand/v2"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// DefaultPackingSize is the side of the square disk-packing canvas.
const DefaultPackingSize = 1024

// directions are the eight compass offsets a neighbour-biased candidate may
// take from an occupied pixel.
var directions = [8]raster.Coordinate{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// DiskParams configures [DiskPacking].
type DiskParams struct {
	// Beads is the number of placement attempts N.
	Beads int `json:"beads" toml:"beads"`
	// DistMin and DistMax bound the neighbour distance d, drawn from
	// [DistMin, DistMax) once per attempt. d also sizes the (2d-1)² exclusion
	// window around each candidate.
	DistMin int `json:"dist_min" toml:"dist_min"`
	DistMax int `json:"dist_max" toml:"dist_max"`
	// RadiusMin and RadiusMax bound the disk radius, drawn from
	// [RadiusMin, RadiusMax).
	RadiusMin int `json:"radius_min" toml:"radius_min"`
	RadiusMax int `json:"radius_max" toml:"radius_max"`
	// ClusterProb is the probability that a candidate is moved next to an
	// existing disk instead of staying where it was drawn.
	ClusterProb float64 `json:"cluster_prob" toml:"cluster_prob"`
	// Size is the side of the square canvas. Zero means DefaultPackingSize.
	Size int `json:"size,omitempty" toml:"size"`
}

func (p DiskParams) size() int {
	if p.Size == 0 {
		return DefaultPackingSize
	}
	return p.Size
}

// Validate rejects parameters before any placement begins.
func (p DiskParams) Validate() error {
	if err := errors.ValidateCount("beads", p.Beads); err != nil {
		return err
	}
	if p.DistMin < 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "minimum distance must be at least 1, got %d", p.DistMin)
	}
	if err := errors.ValidateIntRange("distance", p.DistMin, p.DistMax); err != nil {
		return err
	}
	if p.RadiusMin < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "minimum radius must be non-negative, got %d", p.RadiusMin)
	}
	if err := errors.ValidateIntRange("radius", p.RadiusMin, p.RadiusMax); err != nil {
		return err
	}
	if err := errors.ValidateProbability("cluster probability", p.ClusterProb); err != nil {
		return err
	}
	return errors.ValidateDimensions(p.size(), p.size())
}

// Packing is the outcome of [DiskPacking].
type Packing struct {
	// Disks are the placed beads in placement order.
	Disks []raster.Disk `json:"disks"`
	// Skipped counts rejected attempts, including disks that pass the window
	// check but cover an occupied pixel, so it can exceed the window rejections.
	Skipped int `json:"skipped"`
	// Size is the side of the square canvas the disks live on.
	Size int `json:"size"`
}

// Centers returns the disk centres in placement order.
func (p Packing) Centers() []raster.Coordinate {
	out := make([]raster.Coordinate, len(p.Disks))
	for i, d := range p.Disks {
		out[i] = d.Center
	}
	return out
}

// Render draws the placed disks onto a fresh Size×Size canvas.
func (p Packing) Render() (*raster.Canvas, error) {
	return raster.RenderDisks(p.Disks, p.Size, p.Size)
}

// DiskPacking runs p.Beads sequential placement attempts. Each attempt:
//
//  1. draws d from [DistMin, DistMax) and a uniform candidate;
//  2. with probability ClusterProb, if anything is placed, moves the
//     candidate d pixels in a random compass direction from a random
//     occupied pixel;
//  3. rejects the candidate if its (2d-1)² window touches an occupied pixel;
//  4. draws r from [RadiusMin, RadiusMax) and rejects disks that leave the
//     canvas or cover an occupied pixel;
//  5. otherwise places the disk.
func DiskPacking(p DiskParams, rng *rand.Rand) (Packing, error) {
	if err := p.Validate(); err != nil {
		return Packing{}, err
	}

	size := p.size()
	occ := NewOccupancy(size, size)
	out := Packing{Size: size}

	for range p.Beads {
		candidate := raster.Coordinate{X: rng.IntN(size), Y: rng.IntN(size)}
		d := intIn(rng, p.DistMin, p.DistMax)

		if rng.Float64() < p.ClusterProb && !occ.Empty() {
			anchor := occ.Random(rng)
			dir := directions[rng.IntN(len(directions))]
			candidate = raster.Coordinate{X: anchor.X + dir.X*d, Y: anchor.Y + dir.Y*d}
		}

		if occ.AnyInWindow(candidate, d-1) {
			out.Skipped++
			continue
		}

		disk := raster.Disk{Center: candidate, Radius: intIn(rng, p.RadiusMin, p.RadiusMax)}
		if !disk.Inside(size, size) || occ.Overlaps(disk) {
			out.Skipped++
			continue
		}

		occ.Mark(disk)
		out.Disks = append(out.Disks, disk)
	}
	return out, nil
}
