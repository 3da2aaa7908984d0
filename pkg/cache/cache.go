// Package cache stores generated artifacts so repeated runs with identical
// options skip sampling and rendering.
//
// Every cache value is an opaque byte slice. Keys are built by a [Keyer] from
// a hash of the options that produced the value, so two runs share an entry
// only if they would produce identical bytes. Backends:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entries under a local directory, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	// TTLPoints applies to cached point sets and packings.
	TTLPoints = 7 * 24 * time.Hour
	// TTLArtifact applies to encoded output files.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// PointsKey identifies the sampled geometry of a run.
	PointsKey(policy, paramsHash string) string
	// ArtifactKey identifies one encoded output of a run.
	ArtifactKey(runHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the export settings that change artifact bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Scale   int     `json:"scale,omitempty"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Deflate bool    `json:"deflate,omitempty"`
	Marker  float64 `json:"marker,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PointsKey returns "points:<policy>:<hash>".
func (DefaultKeyer) PointsKey(policy, paramsHash string) string {
	return "points:" + policy + ":" + paramsHash
}

// ArtifactKey hashes the run hash together with the export settings.
func (DefaultKeyer) ArtifactKey(runHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", runHash, opts)
}

var _ Keyer = DefaultKeyer{}
