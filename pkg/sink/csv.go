package sink

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// RenderCSV writes one X,Y row per coordinate, in point-set order, under an
// X,Y header. There is no index column.
func RenderCSV(points []raster.Coordinate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"X", "Y"}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write csv header")
	}
	for _, p := range points {
		if err := w.Write([]string{strconv.Itoa(p.X), strconv.Itoa(p.Y)}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "flush csv")
	}
	return buf.Bytes(), nil
}
