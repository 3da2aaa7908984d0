package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/evsynth/pkg/errors"
)

// Center is the peak position of a patch in patch coordinates.
type Center struct {
	X, Y float64
}

// Patch is a square grid of kernel weights, row-major by y.
type Patch struct {
	Size    int       `json:"size"`
	Sigma   float64   `json:"sigma"`
	Weights []float64 `json:"weights"`
}

// Radius returns r for a patch of side 2r+1.
func (p Patch) Radius() int { return p.Size / 2 }

// At returns the weight at column x, row y.
func (p Patch) At(x, y int) float64 { return p.Weights[y*p.Size+x] }

// Sum returns the total weight of the patch.
func (p Patch) Sum() float64 { return floats.Sum(p.Weights) }

// Rows returns the weights as a slice of rows, for display and JSON output.
func (p Patch) Rows() [][]float64 {
	rows := make([][]float64, p.Size)
	for y := range rows {
		rows[y] = p.Weights[y*p.Size : (y+1)*p.Size]
	}
	return rows
}

// Gaussian returns a normalized size×size Gaussian patch with standard
// deviation sigma. A nil center places the peak at (size/2, size/2).
//
// The size must be odd and positive so the patch has a centre pixel; other
// sizes fail with DEGENERATE_KERNEL. Sigma must be positive.
func Gaussian(size int, sigma float64, center *Center) (Patch, error) {
	if err := errors.ValidateKernelSize(size); err != nil {
		return Patch{}, err
	}
	if err := errors.ValidatePositive("psf sigma", sigma); err != nil {
		return Patch{}, err
	}

	x0, y0 := float64(size/2), float64(size/2)
	if center != nil {
		x0, y0 = center.X, center.Y
	}

	w := make([]float64, size*size)
	denom := 2 * sigma * sigma
	for y := 0; y < size; y++ {
		dy := float64(y) - y0
		for x := 0; x < size; x++ {
			dx := float64(x) - x0
			w[y*size+x] = math.Exp(-(dx*dx + dy*dy) / denom)
		}
	}

	sum := floats.Sum(w)
	if sum == 0 || math.IsNaN(sum) {
		// A centre far outside the patch underflows every entry.
		return Patch{}, errors.New(errors.ErrCodeDegenerateKernel,
			"kernel of size %d with sigma %g has no mass around center (%g, %g)", size, sigma, x0, y0)
	}
	floats.Scale(1/sum, w)

	return Patch{Size: size, Sigma: sigma, Weights: w}, nil
}

// Preview returns the patch the rasterizer stamps for kernel radius r and
// PSF sigma: a centred Gaussian of side 2r+1.
func Preview(radius int, sigma float64) (Patch, error) {
	if radius < 0 {
		return Patch{}, errors.New(errors.ErrCodeInvalidParameter, "kernel radius must be non-negative, got %d", radius)
	}
	return Gaussian(2*radius+1, sigma, nil)
}
