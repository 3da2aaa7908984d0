package sink

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/evsynth/pkg/core/contrast"
	"github.com/matzehuels/evsynth/pkg/errors"
)

// Manifest describes one generated image for dataset bookkeeping. It carries
// everything needed to regenerate the same output: the policy, the seed and
// the full parameter set.
type Manifest struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Version   string          `json:"version,omitempty"`
	Policy    string          `json:"policy"`
	Seed      uint64          `json:"seed"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Points    int             `json:"points"`
	Disks     int             `json:"disks,omitempty"`
	Rendered  int             `json:"rendered"`
	Skipped   int             `json:"skipped"`
	Window    contrast.Window `json:"window"`
	Raw       Stats           `json:"raw"`
	Options   json.RawMessage `json:"options,omitempty"`
	Artifacts []string        `json:"artifacts,omitempty"`
}

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
}

// WithCompactJSON drops indentation.
func WithCompactJSON() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// RenderJSON encodes a run manifest. Output is indented unless
// [WithCompactJSON] is given.
func RenderJSON(m Manifest, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var (
		data []byte
		err  error
	)
	if r.compact {
		data, err = json.Marshal(m)
	} else {
		data, err = json.MarshalIndent(m, "", "  ")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	return data, nil
}
