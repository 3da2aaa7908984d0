package cli

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/evsynth/pkg/pipeline"
)

func testTuneModel(policy string) tuneModel {
	opts := pipeline.DefaultOptions()
	opts.Policy = policy
	opts.Width, opts.Height = 64, 64
	opts.Parents = 4
	opts.Beads = 50
	return newTuneModel(context.Background(), pipeline.NewRunner(nil, nil, nil), opts, func(o pipeline.Options) string {
		return basePath("", o)
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tuneModel, msg tea.Msg) (tuneModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	tm, ok := next.(tuneModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return tm, cmd
}

func TestTuneCursor(t *testing.T) {
	m := testTuneModel(pipeline.PolicyCluster)

	m, _ = update(t, m, key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 at top", m.cursor)
	}
	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	for range 50 {
		m, _ = update(t, m, key("down"))
	}
	if m.cursor != len(m.params)-1 {
		t.Errorf("cursor = %d, want %d at bottom", m.cursor, len(m.params)-1)
	}
}

func TestTuneAdjust(t *testing.T) {
	m := testTuneModel(pipeline.PolicyCluster)
	parents := m.opts.Parents

	m, cmd := update(t, m, key("right"))
	if m.opts.Parents != parents+1 {
		t.Errorf("Parents = %d, want %d", m.opts.Parents, parents+1)
	}
	if cmd == nil || m.gen != 1 || !m.rendering {
		t.Error("adjusting should schedule a render")
	}

	m, _ = update(t, m, key("L"))
	if m.opts.Parents != parents+11 {
		t.Errorf("Parents after coarse step = %d, want %d", m.opts.Parents, parents+11)
	}

	for range 10 {
		m, _ = update(t, m, key("H"))
	}
	if m.opts.Parents != 0 {
		t.Errorf("Parents = %d, want clamp at 0", m.opts.Parents)
	}
}

func TestTuneParamsClamp(t *testing.T) {
	opts := pipeline.DefaultOptions()
	for _, p := range tuneParams(pipeline.PolicyPack) {
		for range 200 {
			p.adjust(&opts, -1, true)
		}
	}
	if opts.DistMin != 1 || opts.DistMax != 1 {
		t.Errorf("distance = [%d, %d], want clamp at 1", opts.DistMin, opts.DistMax)
	}
	if opts.ClusterProb != 0 || opts.Low != 0 || opts.High != 0 {
		t.Errorf("float params not clamped at 0: %+v", opts)
	}
	if opts.Seed != 0 {
		t.Errorf("Seed = %d, want 0", opts.Seed)
	}

	for _, p := range tuneParams(pipeline.PolicyPack) {
		if p.label == "cluster prob" {
			for range 200 {
				p.adjust(&opts, 1, true)
			}
		}
	}
	if opts.ClusterProb != 1 {
		t.Errorf("ClusterProb = %g, want clamp at 1", opts.ClusterProb)
	}
}

func TestTuneRender(t *testing.T) {
	m := testTuneModel(pipeline.PolicyCluster)
	msg, ok := m.Init()().(renderedMsg)
	if !ok {
		t.Fatal("Init command did not produce a render")
	}
	if msg.err != nil {
		t.Fatalf("render error: %v", msg.err)
	}
	if msg.thumb == nil {
		t.Fatal("render produced no thumbnail")
	}
	if b := msg.thumb.Bounds(); b.Dx() != m.thumbCols || b.Dy() != m.thumbCols/2 {
		t.Errorf("thumbnail = %dx%d, want %dx%d", b.Dx(), b.Dy(), m.thumbCols, m.thumbCols/2)
	}
	if msg.stats.Points == 0 {
		t.Error("render produced no points")
	}

	m, _ = update(t, m, msg)
	if m.thumb == nil {
		t.Error("current render was not applied")
	}
	if !strings.Contains(m.View(), "points") {
		t.Error("View() is missing the stats panel")
	}
}

func TestTuneIgnoresStaleRender(t *testing.T) {
	m := testTuneModel(pipeline.PolicyPack)
	m, _ = update(t, m, key("right"))

	stale := renderedMsg{gen: 0, thumb: image.NewGray(image.Rect(0, 0, 2, 2))}
	m, _ = update(t, m, stale)
	if m.thumb != nil {
		t.Error("stale render replaced the preview")
	}
	if !m.rendering {
		t.Error("stale render cleared the rendering flag")
	}
}

func TestTuneQuit(t *testing.T) {
	m := testTuneModel(pipeline.PolicyCluster)
	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestTuneSave(t *testing.T) {
	dir := t.TempDir()
	m := testTuneModel(pipeline.PolicyCluster)
	m.base = func(o pipeline.Options) string { return dir + "/tuned" }

	m, cmd := update(t, m, key("s"))
	msg, ok := cmd().(savedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("save = %+v", msg)
	}
	if len(msg.paths) != 3 {
		t.Errorf("saved %v, want png, csv and json", msg.paths)
	}
	m, _ = update(t, m, msg)
	if len(m.saved) != 3 || !strings.HasPrefix(m.status, "saved") {
		t.Errorf("status = %q, saved = %v", m.status, m.saved)
	}
}

func TestASCIIArt(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(1, 0, color.Gray{Y: 128})
	img.SetGray(2, 0, color.Gray{Y: 255})

	got := asciiArt(img)
	want := " +@\n   "
	if got != want {
		t.Errorf("asciiArt() = %q, want %q", got, want)
	}
}
