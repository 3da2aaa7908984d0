package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runRoot executes the root command with isolated config and cache
// directories and returns its stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"generate", "pack", "kernel", "tune", "serve", "catalog", "config", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestGenerateCommandWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	_, err := runRoot(t, "generate",
		"--width", "48", "--height", "32", "--parents", "3",
		"--kernel-radius", "3", "--psf-sigma", "1",
		"--format", "png,csv", "-o", filepath.Join(dir, "img"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, name := range []string{"img.png", "img.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestPackCommandBatch(t *testing.T) {
	dir := t.TempDir()
	_, err := runRoot(t, "pack",
		"--size", "64", "--beads", "30", "--seed", "5",
		"--format", "csv", "-o", filepath.Join(dir, "beads"),
		"--count", "3", "--jobs", "2", "--no-cache")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	for _, seed := range []string{"5", "6", "7"} {
		if _, err := os.Stat(filepath.Join(dir, "beads_"+seed+".csv")); err != nil {
			t.Errorf("missing output for seed %s: %v", seed, err)
		}
	}
}

func TestGenerateCommandRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"generate", "--format", "gif"}},
		{"zero count", []string{"generate", "--count", "0"}},
		{"inverted percentiles", []string{"generate", "--low", "90", "--high", "10"}},
		{"missing config", []string{"--config", "/nonexistent/evsynth.toml", "kernel"}},
		{"directory output", []string{"generate", "-o", "out/"}},
		{"control character output", []string{"pack", "-o", "img\x01name"}},
		{"tune directory output", []string{"tune", "-o", "out/"}},
		{"zero sigma", []string{"generate", "--psf-sigma", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runRoot(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.toml")
	if _, err := runRoot(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := runRoot(t, "config", "init", path); err == nil {
		t.Error("config init overwrote an existing file without --force")
	}

	out, err := runRoot(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[cluster]") || !strings.Contains(out, "[render]") {
		t.Errorf("config show output missing tables:\n%s", out)
	}
}

func TestCatalogCommands(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "runs.db")
	if _, err := runRoot(t, "generate",
		"--width", "32", "--height", "32", "--parents", "2", "--seed", "11",
		"--format", "csv", "-o", filepath.Join(dir, "run"), "--catalog", dsn); err != nil {
		t.Fatalf("generate: %v", err)
	}

	out, err := runRoot(t, "catalog", "list", "--dsn", dsn)
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	if !strings.Contains(out, "cluster") || !strings.Contains(out, "32×32") {
		t.Errorf("catalog list output:\n%s", out)
	}

	if _, err := runRoot(t, "catalog", "show", "no-such-run", "--dsn", dsn); err == nil {
		t.Error("catalog show accepted an unknown id")
	}
}

func TestKernelCommandJSON(t *testing.T) {
	out, err := runRoot(t, "kernel", "-r", "1", "-s", "1", "--json")
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}
	if !strings.Contains(out, `"size": 3`) {
		t.Errorf("kernel JSON output:\n%s", out)
	}
}
