package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/core/sample"
)

// Geometry is the sampled ground truth of a run. For the cluster policy only
// Points is set; for the pack policy Points holds the disk centres.
type Geometry struct {
	Policy  string              `json:"policy"`
	Width   int                 `json:"width"`
	Height  int                 `json:"height"`
	Points  []raster.Coordinate `json:"points"`
	Disks   []raster.Disk       `json:"disks,omitempty"`
	Skipped int                 `json:"skipped,omitempty"`
}

// Generate draws the geometry for opts without caching.
func Generate(opts Options) (Geometry, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return Geometry{}, err
	}
	rng := sample.NewRNG(opts.Seed)

	if opts.Policy == PolicyPack {
		p, err := sample.DiskPacking(opts.DiskParams(), rng)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{
			Policy:  PolicyPack,
			Width:   p.Size,
			Height:  p.Size,
			Points:  p.Centers(),
			Disks:   p.Disks,
			Skipped: p.Skipped,
		}, nil
	}

	points, err := sample.UniformCluster(opts.ClusterParams(), rng)
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Policy: PolicyCluster, Width: opts.Width, Height: opts.Height, Points: points}, nil
}

// RenderGeometry rasterizes g into a raw canvas: Gaussian PSF stamping for
// point sets, disk filling for packings.
func RenderGeometry(g Geometry, opts Options) (*raster.Canvas, raster.RenderStats, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, raster.RenderStats{}, err
	}
	if g.Policy == PolicyPack {
		c, err := raster.RenderDisks(g.Disks, g.Width, g.Height)
		if err != nil {
			return nil, raster.RenderStats{}, err
		}
		return c, raster.RenderStats{Rendered: len(g.Disks)}, nil
	}
	return raster.Render(g.Points, opts.RenderParams())
}

func marshalGeometry(g Geometry) ([]byte, error) { return json.Marshal(g) }

func unmarshalGeometry(data []byte) (Geometry, error) {
	var g Geometry
	err := json.Unmarshal(data, &g)
	return g, err
}
