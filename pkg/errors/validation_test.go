package errors

import (
	"math"
	"testing"
)

func TestValidateIntRange(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  int
		wantErr bool
	}{
		{"ordinary", 10, 20, false},
		{"equal bounds", 3, 3, false},
		{"zero", 0, 0, false},
		{"inverted", 5, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIntRange("cluster size", tt.lo, tt.hi)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIntRange(%d, %d) error = %v, wantErr %v", tt.lo, tt.hi, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidParameter) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidParameter)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"positive", 3, false},
		{"tiny", 1e-9, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("sigma", tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%g) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("spread", 0); err != nil {
		t.Errorf("zero should pass: %v", err)
	}
	if err := ValidateNonNegative("spread", -0.5); err == nil {
		t.Error("negative should fail")
	}
}

func TestValidateProbability(t *testing.T) {
	for _, p := range []float64{0, 0.5, 1} {
		if err := ValidateProbability("p", p); err != nil {
			t.Errorf("ValidateProbability(%g) unexpected error: %v", p, err)
		}
	}
	for _, p := range []float64{-0.1, 1.1, math.NaN()} {
		if err := ValidateProbability("p", p); err == nil {
			t.Errorf("ValidateProbability(%g) should fail", p)
		}
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		w, h    int
		wantErr bool
	}{
		{1024, 1024, false},
		{1, 1, false},
		{0, 10, true},
		{10, 0, true},
		{-1, 10, true},
	}

	for _, tt := range tests {
		err := ValidateDimensions(tt.w, tt.h)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
		}
	}
}

func TestValidatePercentiles(t *testing.T) {
	tests := []struct {
		name      string
		low, high float64
		wantErr   bool
	}{
		{"display default", 0, 99.5, false},
		{"full range", 0, 100, false},
		{"equal", 50, 50, false},
		{"low negative", -1, 50, true},
		{"high above 100", 0, 100.5, true},
		{"inverted", 60, 40, true},
		{"nan", math.NaN(), 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePercentiles(tt.low, tt.high)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePercentiles(%g, %g) error = %v, wantErr %v", tt.low, tt.high, err, tt.wantErr)
			}
		})
	}
}

func TestValidateKernelSize(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{1, false},
		{17, false},
		{0, true},
		{-3, true},
		{4, true},
	}

	for _, tt := range tests {
		err := ValidateKernelSize(tt.size)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateKernelSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeDegenerateKernel) {
			t.Errorf("ValidateKernelSize(%d) code = %v, want %v", tt.size, GetCode(err), ErrCodeDegenerateKernel)
		}
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/image", false},
		{"absolute", "/tmp/image", false},
		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"null byte", "foo\x00bar", true},
		{"directory", "out/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
