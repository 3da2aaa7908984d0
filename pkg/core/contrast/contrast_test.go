package contrast

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

func TestPercentile(t *testing.T) {
	values := []float64{4, 1, 3, 2, 5}
	tests := []struct {
		pct  float64
		want float64
	}{
		{0, 1},
		{25, 2},
		{50, 3},
		{90, 4.6},
		{100, 5},
		{99.5, 4.98},
	}

	for _, tt := range tests {
		got, err := Percentile(values, tt.pct)
		if err != nil {
			t.Fatalf("Percentile(%g) error: %v", tt.pct, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Percentile(%g) = %v, want %v", tt.pct, got, tt.want)
		}
	}

	if !slices.Equal(values, []float64{4, 1, 3, 2, 5}) {
		t.Error("Percentile modified its input")
	}
}

func TestPercentileRejects(t *testing.T) {
	if _, err := Percentile(nil, 50); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty input: error = %v, want INVALID_INPUT", err)
	}
	for _, pct := range []float64{-1, 100.5, math.NaN()} {
		if _, err := Percentile([]float64{1}, pct); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("Percentile(%g) error = %v, want INVALID_PARAMETER", pct, err)
		}
	}
}

func canvasOf(w, h int, pix ...float64) *raster.Canvas {
	return &raster.Canvas{Width: w, Height: h, Pix: pix}
}

func TestRescaleRange(t *testing.T) {
	c := canvasOf(4, 1, 0, 1, 2, 4)
	out, err := Rescale(c, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.25, 0.5, 1}
	if !slices.Equal(out.Pix, want) {
		t.Errorf("Rescale() = %v, want %v", out.Pix, want)
	}
	if !slices.Equal(c.Pix, []float64{0, 1, 2, 4}) {
		t.Error("Rescale modified its input")
	}
}

func TestRescaleSaturates(t *testing.T) {
	// 200 zeros, one bright outlier: 99.5 percentile sits inside the zeros'
	// upper tail so the outlier saturates.
	pix := make([]float64, 201)
	pix[100] = 1000
	pix[50] = 10
	out, w, err := RescaleWindow(canvasOf(201, 1, pix...), DefaultLow, DefaultHigh)
	if err != nil {
		t.Fatal(err)
	}
	if w.Low != 0 {
		t.Errorf("window low = %v, want 0", w.Low)
	}
	if out.Pix[100] != 1 {
		t.Errorf("outlier = %v, want 1", out.Pix[100])
	}
	for i, v := range out.Pix {
		if v < 0 || v > 1 {
			t.Fatalf("pixel %d = %v outside [0,1]", i, v)
		}
	}
}

func TestRescaleIdempotent(t *testing.T) {
	c := canvasOf(3, 2, 0.3, 0, 7, 2.5, 1, 7)
	once, err := Rescale(c, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Rescale(once, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	for i := range once.Pix {
		if math.Abs(once.Pix[i]-twice.Pix[i]) > 1e-12 {
			t.Errorf("pixel %d: %v then %v", i, once.Pix[i], twice.Pix[i])
		}
	}
}

func TestRescaleFlat(t *testing.T) {
	out, err := Rescale(canvasOf(2, 2, 3, 3, 3, 3), 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out.Pix, []float64{0, 0, 0, 0}) {
		t.Errorf("flat canvas rescaled to %v, want zeros", out.Pix)
	}
}

func TestRescaleRejects(t *testing.T) {
	c := canvasOf(1, 1, 1)
	tests := []struct {
		name      string
		low, high float64
	}{
		{"low above high", 60, 40},
		{"negative", -1, 50},
		{"above hundred", 0, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Rescale(c, tt.low, tt.high); !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("Rescale() error = %v, want INVALID_PARAMETER", err)
			}
		})
	}
	if _, err := Rescale(nil, 0, 100); err == nil {
		t.Error("nil canvas accepted")
	}
}
