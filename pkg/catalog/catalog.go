// Package catalog records generated runs so a dataset can be audited and
// regenerated later.
//
// Each [Run] stores the full option set and seed of a pipeline run, which is
// enough to reproduce every artifact bit for bit. Two backends implement
// [Store]:
//
//   - SQLite (modernc.org/sqlite, pure Go): the default, one file per user
//   - MongoDB: shared catalogues for teams generating data on several hosts
//
// [Open] picks the backend from the DSN scheme.
package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/sink"
)

// DefaultLimit caps [Store.List] when the caller passes a non-positive limit.
const DefaultLimit = 50

// Run is one catalogue entry.
type Run struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Policy    string          `json:"policy"`
	Seed      uint64          `json:"seed"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Options   json.RawMessage `json:"options,omitempty"`
	Points    int             `json:"points"`
	Disks     int             `json:"disks"`
	Skipped   int             `json:"skipped"`
	Artifacts []string        `json:"artifacts,omitempty"`
}

// FromManifest builds a catalogue entry from a run manifest.
func FromManifest(m sink.Manifest) Run {
	return Run{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Policy:    m.Policy,
		Seed:      m.Seed,
		Width:     m.Width,
		Height:    m.Height,
		Options:   m.Options,
		Points:    m.Points,
		Disks:     m.Disks,
		Skipped:   m.Skipped,
		Artifacts: m.Artifacts,
	}
}

// Store persists runs. Recording an existing ID replaces the entry.
type Store interface {
	Record(ctx context.Context, run Run) error
	// Get returns a NOT_FOUND error for unknown IDs.
	Get(ctx context.Context, id string) (Run, error)
	// List returns the newest runs first.
	List(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// Backend kinds returned by ParseDSN.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// ParseDSN splits a catalogue DSN into a backend kind and the target the
// backend opens. Empty DSNs select the default SQLite file.
func ParseDSN(dsn string) (backend, target string, err error) {
	switch {
	case dsn == "":
		p, err := DefaultPath()
		if err != nil {
			return "", "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve catalogue path")
		}
		return BackendSQLite, p, nil
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return BackendMongo, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return BackendSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.Contains(dsn, "://"):
		return "", "", errors.New(errors.ErrCodeInvalidParameter, "unsupported catalogue DSN %q (use a file path, sqlite:// or mongodb://)", dsn)
	default:
		return BackendSQLite, dsn, nil
	}
}

// Open connects to the catalogue named by dsn.
func Open(ctx context.Context, dsn string) (Store, error) {
	backend, target, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if backend == BackendMongo {
		return OpenMongo(ctx, target)
	}
	return OpenSQLite(ctx, target)
}

// DefaultPath returns $XDG_DATA_HOME/evsynth/catalog.db or
// ~/.local/share/evsynth/catalog.db.
func DefaultPath() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "evsynth", "catalog.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "evsynth", "catalog.db"), nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "run %q not found", id)
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
