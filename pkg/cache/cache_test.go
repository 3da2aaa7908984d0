package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%v, %v, %v), want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache reported a hit")
	}

	if err := c.Set(ctx, "a", []byte("alpha"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != "alpha" {
		t.Errorf("Get(a) = (%q, %v, %v), want alpha hit", data, hit, err)
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("deleted key still present")
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("x"), time.Minute)
	_ = c.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry file not removed")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("bad")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for i := range 5 {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0)
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Clear() = %d, want 5", n)
	}
	if _, hit, _ := c.Get(ctx, "k3"); hit {
		t.Error("entry survived Clear")
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs should hash differently")
	}
	if n := len(Hash(nil)); n != 64 {
		t.Errorf("hash length = %d, want 64", n)
	}

	type params struct{ A, B int }
	h1, _ := HashJSON(params{1, 2})
	h2, _ := HashJSON(params{1, 2})
	h3, _ := HashJSON(params{2, 1})
	if h1 != h2 || h1 == h3 {
		t.Error("HashJSON must follow value equality")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON accepted an unencodable value")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.PointsKey("cluster", "abc"); got != "points:cluster:abc" {
		t.Errorf("PointsKey = %q", got)
	}

	png := k.ArtifactKey("run", ArtifactKeyOpts{Format: "png", High: 99.5})
	tif := k.ArtifactKey("run", ArtifactKeyOpts{Format: "tiff", High: 99.5})
	png2 := k.ArtifactKey("run", ArtifactKeyOpts{Format: "png", High: 99})
	if png == tif || png == png2 {
		t.Error("artifact keys must depend on export settings")
	}
	if !strings.HasPrefix(png, "artifact:") {
		t.Errorf("ArtifactKey = %q, want artifact: prefix", png)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "tenant:a:")
	if got := scoped.PointsKey("pack", "h"); got != "tenant:a:points:pack:h" {
		t.Errorf("PointsKey = %q", got)
	}
	inner := NewDefaultKeyer().ArtifactKey("r", ArtifactKeyOpts{Format: "csv"})
	if got := scoped.ArtifactKey("r", ArtifactKeyOpts{Format: "csv"}); got != "tenant:a:"+inner {
		t.Errorf("ArtifactKey = %q", got)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || err.Error() != ErrNetwork.Error() || !errors.Is(err, ErrNetwork) {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}
	if IsRetryable(ErrClosed) {
		t.Error("plain error reported retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	backoff = time.Millisecond
	t.Cleanup(func() { backoff = 200 * time.Millisecond })
	ctx := context.Background()

	tests := []struct {
		name      string
		failUntil int
		fail      error
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, nil, 1, false},
		{"permanent", 99, ErrClosed, 1, true},
		{"transient then ok", 2, Retryable(ErrNetwork), 3, false},
		{"transient forever", 99, Retryable(ErrNetwork), 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failUntil {
					return tt.fail
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRedisClassify(t *testing.T) {
	tests := []struct {
		name      string
		in        error
		retryable bool
		is        error
	}{
		{"nil", nil, false, nil},
		{"miss", redis.Nil, false, redis.Nil},
		{"closed", redis.ErrClosed, false, ErrClosed},
		{"network", timeoutErr{}, true, ErrNetwork},
		{"deadline", context.DeadlineExceeded, true, ErrNetwork},
		{"server", errors.New("WRONGTYPE"), false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.in)
			if IsRetryable(got) != tt.retryable {
				t.Errorf("IsRetryable(classify(%v)) = %v, want %v", tt.in, !tt.retryable, tt.retryable)
			}
			if tt.is != nil && !errors.Is(got, tt.is) {
				t.Errorf("classify(%v) = %v, want wrapping %v", tt.in, got, tt.is)
			}
		})
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://not-redis"); err == nil {
		t.Error("non-redis URL accepted")
	}
}
