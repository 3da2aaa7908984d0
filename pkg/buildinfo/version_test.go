package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	Version, Commit, Date = "v1.2.3", "abc123", "2025-01-01"
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })

	if got, want := String(), "v1.2.3 (abc123, 2025-01-01)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if tpl := Template(); !strings.Contains(tpl, "v1.2.3") || !strings.HasPrefix(tpl, "{{.Name}}") {
		t.Errorf("Template() = %q", tpl)
	}
}
