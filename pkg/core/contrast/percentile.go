package contrast

import (
	"math"
	"slices"

	"github.com/matzehuels/evsynth/pkg/errors"
)

// Percentile returns the pct-th percentile of values, pct in [0, 100].
// The rank h = (n-1)·pct/100 is interpolated linearly between the two
// neighbouring order statistics. values is not modified.
func Percentile(values []float64, pct float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "percentile of empty input")
	}
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "percentile must be in [0, 100], got %g", pct)
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, pct), nil
}

func percentileSorted(sorted []float64, pct float64) float64 {
	h := float64(len(sorted)-1) * pct / 100
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
