package sample

import (
	"slices"
	"testing"

	"github.com/matzehuels/evsynth/pkg/errors"
)

func TestUniformClusterEmpty(t *testing.T) {
	points, err := UniformCluster(ClusterParams{
		Parents: 0, ClusterMin: 10, ClusterMax: 20, Spread: 10, Width: 64, Height: 64,
	}, NewRNG(1))
	if err != nil {
		t.Fatalf("UniformCluster() error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("len(points) = %d, want 0", len(points))
	}
}

func TestUniformClusterFixedSize(t *testing.T) {
	points, err := UniformCluster(ClusterParams{
		Parents: 5, ClusterMin: 3, ClusterMax: 3, Spread: 0, Width: 100, Height: 100,
	}, NewRNG(7))
	if err != nil {
		t.Fatalf("UniformCluster() error: %v", err)
	}
	if len(points) != 15 {
		t.Fatalf("len(points) = %d, want 15", len(points))
	}
	for i, p := range points {
		if p.X < 0 || p.X > 99 || p.Y < 0 || p.Y > 99 {
			t.Errorf("points[%d] = %v outside [0,99]²", i, p)
		}
	}

	// With zero spread every child sits on its parent, so points come in
	// runs of three identical coordinates in parent order.
	for i := 0; i < len(points); i += 3 {
		if points[i] != points[i+1] || points[i] != points[i+2] {
			t.Errorf("cluster %d not contiguous: %v", i/3, points[i:i+3])
		}
	}
}

func TestUniformClusterSizesInRange(t *testing.T) {
	p := ClusterParams{Parents: 50, ClusterMin: 2, ClusterMax: 5, Spread: 0, Width: 1000, Height: 1000}
	points, err := UniformCluster(p, NewRNG(3))
	if err != nil {
		t.Fatal(err)
	}
	// Half-open draw: between 2 and 4 children per parent.
	if len(points) < 2*p.Parents || len(points) > 4*p.Parents {
		t.Errorf("len(points) = %d, want in [%d, %d]", len(points), 2*p.Parents, 4*p.Parents)
	}
}

func TestUniformClusterClipping(t *testing.T) {
	points, err := UniformCluster(ClusterParams{
		Parents: 40, ClusterMin: 20, ClusterMax: 21, Spread: 50, Width: 30, Height: 20,
	}, NewRNG(11))
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range points {
		if p.X < 0 || p.X > 29 || p.Y < 0 || p.Y > 19 {
			t.Fatalf("points[%d] = %v outside 30x20 canvas", i, p)
		}
	}
}

func TestUniformClusterDeterministic(t *testing.T) {
	p := ClusterParams{Parents: 100, ClusterMin: 10, ClusterMax: 20, Spread: 10, Width: 512, Height: 256}

	a, err := UniformCluster(p, NewRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	b, err := UniformCluster(p, NewRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a, b) {
		t.Error("same seed produced different point sets")
	}

	c, _ := UniformCluster(p, NewRNG(43))
	if slices.Equal(a, c) {
		t.Error("different seeds produced identical point sets")
	}
}

func TestUniformParentsSquareVersusRectangular(t *testing.T) {
	base := ClusterParams{Parents: 100, Width: 200, Height: 50}

	square := uniformParents(base, NewRNG(5))
	maxY := 0
	for _, p := range square {
		maxY = max(maxY, p.Y)
	}
	if maxY < 50 {
		t.Errorf("square parents: max y = %d, want draws beyond the 50px canvas height", maxY)
	}

	rect := base
	rect.RectangularParents = true
	for _, p := range uniformParents(rect, NewRNG(5)) {
		if p.X >= 200 || p.Y >= 50 {
			t.Fatalf("rectangular parent %v outside 200x50", p)
		}
	}
}

func TestClusterParamsValidate(t *testing.T) {
	valid := ClusterParams{Parents: 1, ClusterMin: 1, ClusterMax: 2, Spread: 1, Width: 10, Height: 10}
	tests := []struct {
		name   string
		mutate func(*ClusterParams)
	}{
		{"negative parents", func(p *ClusterParams) { p.Parents = -1 }},
		{"inverted range", func(p *ClusterParams) { p.ClusterMin, p.ClusterMax = 5, 4 }},
		{"negative cluster size", func(p *ClusterParams) { p.ClusterMin = -2 }},
		{"negative spread", func(p *ClusterParams) { p.Spread = -0.1 }},
		{"zero width", func(p *ClusterParams) { p.Width = 0 }},
		{"negative height", func(p *ClusterParams) { p.Height = -5 }},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if _, err := UniformCluster(p, NewRNG(1)); !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("UniformCluster() error = %v, want INVALID_PARAMETER", err)
			}
		})
	}
}

func TestIntIn(t *testing.T) {
	rng := NewRNG(9)
	for range 1000 {
		if v := intIn(rng, 3, 6); v < 3 || v >= 6 {
			t.Fatalf("intIn(3, 6) = %d", v)
		}
	}
	if v := intIn(rng, 4, 4); v != 4 {
		t.Errorf("intIn(4, 4) = %d, want 4", v)
	}
}
