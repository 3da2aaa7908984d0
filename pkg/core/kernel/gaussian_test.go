package kernel

import (
	"math"
	"testing"

	"github.com/matzehuels/evsynth/pkg/errors"
)

func TestGaussianSumsToOne(t *testing.T) {
	tests := []struct {
		size  int
		sigma float64
	}{
		{1, 1},
		{3, 0.5},
		{17, 3},
		{17, 0.1},
		{31, 8},
		{5, 100},
	}

	for _, tt := range tests {
		p, err := Gaussian(tt.size, tt.sigma, nil)
		if err != nil {
			t.Fatalf("Gaussian(%d, %g) error: %v", tt.size, tt.sigma, err)
		}
		if got := p.Sum(); math.Abs(got-1) > 1e-9 {
			t.Errorf("Gaussian(%d, %g) sum = %.12f, want 1", tt.size, tt.sigma, got)
		}
		if len(p.Weights) != tt.size*tt.size {
			t.Errorf("Gaussian(%d, %g) has %d weights, want %d", tt.size, tt.sigma, len(p.Weights), tt.size*tt.size)
		}
	}
}

func TestGaussianSizeOne(t *testing.T) {
	p, err := Gaussian(1, 2.5, nil)
	if err != nil {
		t.Fatalf("Gaussian(1) error: %v", err)
	}
	if len(p.Weights) != 1 || p.Weights[0] != 1.0 {
		t.Errorf("Gaussian(1) = %v, want [1]", p.Weights)
	}
}

func TestGaussianPeakAndSymmetry(t *testing.T) {
	p, err := Gaussian(9, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := p.Radius()
	peak := p.At(c, c)
	for y := 0; y < p.Size; y++ {
		for x := 0; x < p.Size; x++ {
			if v := p.At(x, y); v > peak {
				t.Fatalf("At(%d, %d) = %g exceeds centre %g", x, y, v, peak)
			}
			if p.At(x, y) != p.At(p.Size-1-x, y) || p.At(x, y) != p.At(y, x) {
				t.Fatalf("patch is not symmetric at (%d, %d)", x, y)
			}
		}
	}
}

func TestGaussianCustomCenter(t *testing.T) {
	p, err := Gaussian(5, 1, &Center{X: 0, Y: 4})
	if err != nil {
		t.Fatal(err)
	}
	best, mx, my := 0.0, -1, -1
	for y := 0; y < p.Size; y++ {
		for x := 0; x < p.Size; x++ {
			if v := p.At(x, y); v > best {
				best, mx, my = v, x, y
			}
		}
	}
	if mx != 0 || my != 4 {
		t.Errorf("peak at (%d, %d), want (0, 4)", mx, my)
	}
}

func TestGaussianRejects(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		sigma float64
		code  errors.Code
	}{
		{"even size", 4, 1, errors.ErrCodeDegenerateKernel},
		{"zero size", 0, 1, errors.ErrCodeDegenerateKernel},
		{"negative size", -1, 1, errors.ErrCodeDegenerateKernel},
		{"zero sigma", 3, 0, errors.ErrCodeInvalidParameter},
		{"negative sigma", 3, -2, errors.ErrCodeInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Gaussian(tt.size, tt.sigma, nil)
			if !errors.Is(err, tt.code) {
				t.Errorf("Gaussian(%d, %g) error = %v, want code %s", tt.size, tt.sigma, err, tt.code)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	p, err := Preview(8, 3)
	if err != nil {
		t.Fatal(err)
	}
	if p.Size != 17 {
		t.Errorf("Size = %d, want 17", p.Size)
	}
	if p.Radius() != 8 {
		t.Errorf("Radius() = %d, want 8", p.Radius())
	}

	want, _ := Gaussian(17, 3, nil)
	for i := range want.Weights {
		if p.Weights[i] != want.Weights[i] {
			t.Fatalf("Preview differs from Gaussian at %d", i)
		}
	}

	if _, err := Preview(-1, 3); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Preview(-1) error = %v, want INVALID_PARAMETER", err)
	}
}

func TestRows(t *testing.T) {
	p, _ := Gaussian(3, 1, nil)
	rows := p.Rows()
	if len(rows) != 3 || len(rows[0]) != 3 {
		t.Fatalf("Rows() shape = %dx%d, want 3x3", len(rows), len(rows[0]))
	}
	if rows[1][2] != p.At(2, 1) {
		t.Errorf("rows[1][2] = %g, want At(2,1) = %g", rows[1][2], p.At(2, 1))
	}
}
