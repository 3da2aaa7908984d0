package sample

import (
	"math/rand/v2"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// ClusterParams configures [UniformCluster].
type ClusterParams struct {
	// Parents is the number of cluster anchors N.
	Parents int `json:"parents" toml:"parents"`
	// ClusterMin and ClusterMax bound the children per parent, drawn from
	// [ClusterMin, ClusterMax). Equal bounds give a fixed cluster size.
	ClusterMin int `json:"cluster_min" toml:"cluster_min"`
	ClusterMax int `json:"cluster_max" toml:"cluster_max"`
	// Spread is the isotropic standard deviation of children around their
	// parent, in pixels. Zero stacks all children on the parent.
	Spread float64 `json:"spread" toml:"spread"`
	// Width and Height are the canvas dimensions children are clipped to.
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
	// RectangularParents draws parent x from [0, Width) and y from
	// [0, Height). When false both are drawn from [0, max(Width, Height)).
	RectangularParents bool `json:"rect_parents,omitempty" toml:"rect_parents"`
}

// Validate rejects parameters before any sampling begins.
func (p ClusterParams) Validate() error {
	if err := errors.ValidateCount("parents", p.Parents); err != nil {
		return err
	}
	if p.ClusterMin < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "cluster size must be non-negative, got %d", p.ClusterMin)
	}
	if err := errors.ValidateIntRange("cluster size", p.ClusterMin, p.ClusterMax); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("cluster spread", p.Spread); err != nil {
		return err
	}
	return errors.ValidateDimensions(p.Width, p.Height)
}

// UniformCluster draws p.Parents anchors and returns the clustered children
// of every anchor, in anchor order.
func UniformCluster(p ClusterParams, rng *rand.Rand) ([]raster.Coordinate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	parents := uniformParents(p, rng)

	var out []raster.Coordinate
	for _, parent := range parents {
		k := intIn(rng, p.ClusterMin, p.ClusterMax)
		for range k {
			x := float64(parent.X) + rng.NormFloat64()*p.Spread
			y := float64(parent.Y) + rng.NormFloat64()*p.Spread
			out = append(out, raster.Coordinate{
				X: int(clamp(x, 0, float64(p.Width-1))),
				Y: int(clamp(y, 0, float64(p.Height-1))),
			})
		}
	}
	return out, nil
}

func uniformParents(p ClusterParams, rng *rand.Rand) []raster.Coordinate {
	w, h := p.Width, p.Height
	if !p.RectangularParents {
		side := max(w, h)
		w, h = side, side
	}

	parents := make([]raster.Coordinate, p.Parents)
	for i := range parents {
		parents[i] = raster.Coordinate{X: rng.IntN(w), Y: rng.IntN(h)}
	}
	return parents
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
