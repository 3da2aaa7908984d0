package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/evsynth/pkg/errors"
)

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	policy     TEXT    NOT NULL,
	seed       INTEGER NOT NULL,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	options    TEXT    NOT NULL DEFAULT '',
	points     INTEGER NOT NULL,
	disks      INTEGER NOT NULL,
	skipped    INTEGER NOT NULL,
	artifacts  TEXT    NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at DESC)`,
}

const sqliteUpsert = `
INSERT INTO runs (id, created_at, policy, seed, width, height, options, points, disks, skipped, artifacts)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at = excluded.created_at,
	policy     = excluded.policy,
	seed       = excluded.seed,
	width      = excluded.width,
	height     = excluded.height,
	options    = excluded.options,
	points     = excluded.points,
	disks      = excluded.disks,
	skipped    = excluded.skipped,
	artifacts  = excluded.artifacts`

const sqliteColumns = `id, created_at, policy, seed, width, height, options, points, disks, skipped, artifacts`

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA busy_timeout=5000;",
}

// SQLiteStore is a [Store] in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the catalogue file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create catalogue dir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open catalogue %s", path)
	}
	// One connection keeps the pragmas in force and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "apply %s", p)
		}
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create catalogue schema")
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Record inserts or replaces run.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "run has no id")
	}
	_, err := s.db.ExecContext(ctx, sqliteUpsert,
		run.ID,
		run.CreatedAt.UnixNano(),
		run.Policy,
		int64(run.Seed),
		run.Width,
		run.Height,
		string(run.Options),
		run.Points,
		run.Disks,
		run.Skipped,
		strings.Join(run.Artifacts, ","),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "record run %s", run.ID)
	}
	return nil
}

// Get looks up one run.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Run{}, notFound(id)
	}
	if err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "get run %s", id)
	}
	return run, nil
}

// List returns up to limit runs, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`, limitOrDefault(limit))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan run")
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		created   int64
		seed      int64
		options   string
		artifacts string
	)
	err := sc.Scan(&run.ID, &created, &run.Policy, &seed, &run.Width, &run.Height,
		&options, &run.Points, &run.Disks, &run.Skipped, &artifacts)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	run.Seed = uint64(seed)
	if options != "" {
		run.Options = []byte(options)
	}
	if artifacts != "" {
		run.Artifacts = strings.Split(artifacts, ",")
	}
	return run, nil
}
