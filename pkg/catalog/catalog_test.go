package catalog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/sink"
)

func testRun(id string, at time.Time) Run {
	return Run{
		ID:        id,
		CreatedAt: at,
		Policy:    "cluster",
		Seed:      42,
		Width:     64,
		Height:    32,
		Options:   json.RawMessage(`{"parents":5}`),
		Points:    50,
		Skipped:   3,
		Artifacts: []string{"png", "csv"},
	}
}

func openTemp(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "catalog.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRecordGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	want := testRun("run-1", at)
	if err := s.Record(ctx, want); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, at)
	}
	if got.Seed != 42 || got.Points != 50 || got.Skipped != 3 || got.Width != 64 {
		t.Errorf("Get() = %+v", got)
	}
	if string(got.Options) != `{"parents":5}` {
		t.Errorf("Options = %s", got.Options)
	}
	if !slices.Equal(got.Artifacts, []string{"png", "csv"}) {
		t.Errorf("Artifacts = %v", got.Artifacts)
	}
}

func TestSQLiteUpsert(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	run := testRun("run-1", time.Now().UTC())

	if err := s.Record(ctx, run); err != nil {
		t.Fatal(err)
	}
	run.Points = 99
	if err := s.Record(ctx, run); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Points != 99 {
		t.Errorf("List() after upsert = %+v", runs)
	}
}

func TestSQLiteListOrderAndLimit(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		if err := s.Record(ctx, testRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if !slices.Equal(ids, []string{"d", "c"}) {
		t.Errorf("List(2) ids = %v, want [d c]", ids)
	}
}

func TestSQLiteLargeSeed(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	run := testRun("big", time.Now())
	run.Seed = 1<<63 + 5

	if err := s.Record(ctx, run); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "big")
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != run.Seed {
		t.Errorf("Seed = %d, want %d", got.Seed, run.Seed)
	}
}

func TestSQLiteErrors(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(missing) error = %v, want NOT_FOUND", err)
	}
	if err := s.Record(ctx, Run{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Record(no id) error = %v, want INVALID_INPUT", err)
	}
}

func TestParseDSN(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	tests := []struct {
		dsn         string
		wantBackend string
		wantTarget  string
		wantErr     bool
	}{
		{"", BackendSQLite, filepath.Join("/data", "evsynth", "catalog.db"), false},
		{"runs.db", BackendSQLite, "runs.db", false},
		{"sqlite:///tmp/runs.db", BackendSQLite, "/tmp/runs.db", false},
		{"mongodb://localhost:27017/lab", BackendMongo, "mongodb://localhost:27017/lab", false},
		{"mongodb+srv://cluster.example.net", BackendMongo, "mongodb+srv://cluster.example.net", false},
		{"postgres://localhost/runs", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			backend, target, err := ParseDSN(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if backend != tt.wantBackend || target != tt.wantTarget {
				t.Errorf("ParseDSN() = (%q, %q), want (%q, %q)", backend, target, tt.wantBackend, tt.wantTarget)
			}
		})
	}
}

func TestOpenSQLiteByDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(context.Background(), "sqlite://"+path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Errorf("Open() = %T, want *SQLiteStore", store)
	}
}

func TestMongoDatabase(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017", "evsynth"},
		{"mongodb://localhost:27017/", "evsynth"},
		{"mongodb://user:pw@localhost:27017/lab?authSource=admin", "lab"},
	}
	for _, tt := range tests {
		if got := mongoDatabase(tt.uri); got != tt.want {
			t.Errorf("mongoDatabase(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestMongoDocumentRoundTrip(t *testing.T) {
	run := testRun("m-1", time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC))
	run.Seed = 1<<63 + 1

	got := toMongo(run).run()
	if got.Seed != run.Seed || string(got.Options) != string(run.Options) || !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("round trip = %+v, want %+v", got, run)
	}
}

func TestFromManifest(t *testing.T) {
	m := sink.Manifest{
		ID:        "id",
		Policy:    "pack",
		Seed:      3,
		Width:     128,
		Height:    128,
		Points:    10,
		Disks:     10,
		Skipped:   4,
		Artifacts: []string{"png"},
	}
	run := FromManifest(m)
	if run.ID != "id" || run.Disks != 10 || run.Skipped != 4 || run.Policy != "pack" {
		t.Errorf("FromManifest() = %+v", run)
	}
}
