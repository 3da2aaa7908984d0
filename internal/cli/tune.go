package cli

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/evsynth/pkg/core/contrast"
	"github.com/matzehuels/evsynth/pkg/pipeline"
	"github.com/matzehuels/evsynth/pkg/sink"
)

// asciiRamp maps brightness to characters, darkest first.
const asciiRamp = " .:-=+*#%@"

var (
	tuneSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuneNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	tuneDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tunePreviewStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// tuneCommand opens the interactive parameter editor.
func (c *CLI) tuneCommand() *cobra.Command {
	var (
		pack   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Tune generation parameters with a live preview",
		Long: `Tune opens a terminal editor for the generation parameters. Every change
re-renders the image and shows an ASCII preview with raster statistics.
Press s to write the current image and its coordinates to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			opts := pipeline.DefaultOptions()
			c.Config().Apply(&opts)
			if pack {
				opts.Policy = pipeline.PolicyPack
				opts.Height = opts.Width
			}

			// The editor owns the terminal, so pipeline logs are dropped.
			runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))

			cfg := c.Config()
			m := newTuneModel(cmd.Context(), runner, opts, func(o pipeline.Options) string {
				return cfg.OutputPath(basePath(output, o))
			})
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(tuneModel); ok {
				for _, p := range fm.saved {
					printFile(p)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pack, "pack", false, "tune the disk-packing policy")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path for saved images (default <policy>_<seed>)")

	return cmd
}

// =============================================================================
// Parameters
// =============================================================================

// tuneParam is one editable option. adjust moves the value by one step in
// direction dir; coarse steps are ten times larger.
type tuneParam struct {
	label  string
	value  func(o *pipeline.Options) string
	adjust func(o *pipeline.Options, dir int, coarse bool)
}

func intStep(label string, field func(*pipeline.Options) *int, fine, floor int) tuneParam {
	return tuneParam{
		label: label,
		value: func(o *pipeline.Options) string { return fmt.Sprint(*field(o)) },
		adjust: func(o *pipeline.Options, dir int, coarse bool) {
			step := fine
			if coarse {
				step *= 10
			}
			*field(o) = max(*field(o)+dir*step, floor)
		},
	}
}

func floatStep(label string, field func(*pipeline.Options) *float64, fine, lo, hi float64) tuneParam {
	return tuneParam{
		label: label,
		value: func(o *pipeline.Options) string { return fmt.Sprintf("%.4g", *field(o)) },
		adjust: func(o *pipeline.Options, dir int, coarse bool) {
			step := fine
			if coarse {
				step *= 10
			}
			*field(o) = min(max(*field(o)+float64(dir)*step, lo), hi)
		},
	}
}

var seedParam = tuneParam{
	label: "seed",
	value: func(o *pipeline.Options) string { return fmt.Sprint(o.Seed) },
	adjust: func(o *pipeline.Options, dir int, coarse bool) {
		step := uint64(1)
		if coarse {
			step = 10
		}
		if dir < 0 {
			if o.Seed > step {
				o.Seed -= step
			} else {
				o.Seed = 0
			}
			return
		}
		o.Seed += step
	},
}

// tuneParams returns the editable parameters of a policy. Contrast and the
// seed apply to both.
func tuneParams(policy string) []tuneParam {
	var params []tuneParam
	if policy == pipeline.PolicyPack {
		params = []tuneParam{
			intStep("beads", func(o *pipeline.Options) *int { return &o.Beads }, 50, 0),
			intStep("dist min", func(o *pipeline.Options) *int { return &o.DistMin }, 1, 1),
			intStep("dist max", func(o *pipeline.Options) *int { return &o.DistMax }, 1, 1),
			intStep("radius min", func(o *pipeline.Options) *int { return &o.RadiusMin }, 1, 0),
			intStep("radius max", func(o *pipeline.Options) *int { return &o.RadiusMax }, 1, 0),
			floatStep("cluster prob", func(o *pipeline.Options) *float64 { return &o.ClusterProb }, 0.05, 0, 1),
		}
	} else {
		params = []tuneParam{
			intStep("parents", func(o *pipeline.Options) *int { return &o.Parents }, 1, 0),
			intStep("cluster min", func(o *pipeline.Options) *int { return &o.ClusterMin }, 1, 0),
			intStep("cluster max", func(o *pipeline.Options) *int { return &o.ClusterMax }, 1, 0),
			floatStep("spread", func(o *pipeline.Options) *float64 { return &o.Spread }, 0.5, 0, 1000),
			intStep("kernel radius", func(o *pipeline.Options) *int { return &o.KernelRadius }, 1, 0),
			floatStep("psf sigma", func(o *pipeline.Options) *float64 { return &o.PSFSigma }, 0.25, 0.25, 100),
		}
	}
	return append(params,
		floatStep("low %", func(o *pipeline.Options) *float64 { return &o.Low }, 0.5, 0, 100),
		floatStep("high %", func(o *pipeline.Options) *float64 { return &o.High }, 0.1, 0, 100),
		seedParam,
	)
}

// =============================================================================
// Model
// =============================================================================

// renderedMsg carries a finished preview. gen ties it to the parameter
// state that produced it so stale renders are dropped.
type renderedMsg struct {
	gen    int
	thumb  *image.Gray
	stats  pipeline.Stats
	window contrast.Window
	err    error
}

type savedMsg struct {
	paths []string
	err   error
}

// tuneModel is the bubbletea model for the parameter editor.
type tuneModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	opts   pipeline.Options
	params []tuneParam
	// base maps the current options to the output base path.
	base func(pipeline.Options) string

	cursor    int
	gen       int
	rendering bool
	thumbCols int

	thumb  *image.Gray
	stats  pipeline.Stats
	window contrast.Window
	err    error
	status string
	saved  []string
}

func newTuneModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, base func(pipeline.Options) string) tuneModel {
	return tuneModel{
		ctx:       ctx,
		runner:    runner,
		opts:      opts,
		base:      base,
		params:    tuneParams(opts.Policy),
		thumbCols: 64,
	}
}

func (m tuneModel) Init() tea.Cmd {
	return m.render()
}

// render runs the stages directly instead of Execute, so no artifact is
// encoded while tuning.
func (m tuneModel) render() tea.Cmd {
	opts, gen, runner, ctx := m.opts, m.gen, m.runner, m.ctx
	cols := m.thumbCols
	return func() tea.Msg {
		if err := opts.ValidateAndSetDefaults(); err != nil {
			return renderedMsg{gen: gen, err: err}
		}
		geom, err := runner.Generate(ctx, opts)
		if err != nil {
			return renderedMsg{gen: gen, err: err}
		}
		raw, rs, err := runner.Render(ctx, geom, opts)
		if err != nil {
			return renderedMsg{gen: gen, err: err}
		}
		display, window, err := contrast.RescaleWindow(raw, opts.Low, opts.High)
		if err != nil {
			return renderedMsg{gen: gen, err: err}
		}

		// Terminal cells are about twice as tall as wide.
		rows := max(cols*raw.Height/raw.Width/2, 1)
		thumb, err := sink.Resample(display, cols, rows)
		if err != nil {
			return renderedMsg{gen: gen, err: err}
		}

		stats := pipeline.Stats{
			Points:   len(geom.Points),
			Disks:    len(geom.Disks),
			Rendered: rs.Rendered,
			Skipped:  geom.Skipped + rs.Skipped,
			Raw:      sink.Summarize(raw),
		}
		return renderedMsg{gen: gen, thumb: thumb, stats: stats, window: window}
	}
}

// save runs the full pipeline and writes the image, coordinates and manifest.
func (m tuneModel) save() tea.Cmd {
	opts, runner, ctx, base := m.opts, m.runner, m.ctx, m.base
	return func() tea.Msg {
		opts.Formats = []string{pipeline.FormatPNG, pipeline.FormatCSV, pipeline.FormatJSON}
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			return savedMsg{err: err}
		}
		paths, err := writeArtifacts(base(opts), res.Artifacts, opts.Formats)
		return savedMsg{paths: paths, err: err}
	}
}

func (m tuneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.params)-1 {
				m.cursor++
			}
		case "left", "h", "right", "l", "H", "L", "shift+left", "shift+right":
			dir := 1
			if k := msg.String(); k == "left" || k == "h" || k == "H" || k == "shift+left" {
				dir = -1
			}
			coarse := msg.String() == "H" || msg.String() == "L" || strings.HasPrefix(msg.String(), "shift+")
			m.params[m.cursor].adjust(&m.opts, dir, coarse)
			m.gen++
			m.rendering = true
			m.status = ""
			return m, m.render()
		case "s":
			m.status = "saving…"
			return m, m.save()
		}

	case tea.WindowSizeMsg:
		cols := min(max(msg.Width-40, 16), 160)
		if cols != m.thumbCols {
			m.thumbCols = cols
			m.gen++
			return m, m.render()
		}

	case renderedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.rendering = false
		m.err = msg.err
		if msg.err == nil {
			m.thumb, m.stats, m.window = msg.thumb, msg.stats, msg.window
		}

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.saved = append(m.saved, msg.paths...)
		m.status = fmt.Sprintf("saved %s", strings.Join(msg.paths, ", "))
	}
	return m, nil
}

func (m tuneModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("evsynth tune · " + m.opts.Policy))
	b.WriteString("\n")
	b.WriteString(tuneDimStyle.Render("↑/↓ select  ←/→ adjust  H/L coarse  s save  q quit"))
	b.WriteString("\n\n")

	var left strings.Builder
	for i, p := range m.params {
		label := fmt.Sprintf("%-14s %s", p.label, p.value(&m.opts))
		if i == m.cursor {
			left.WriteString(tuneSelectedStyle.Render("▸ " + label))
		} else {
			left.WriteString(tuneNormalStyle.Render("  " + label))
		}
		left.WriteString("\n")
	}
	left.WriteString("\n")
	left.WriteString(m.statsView())

	preview := "rendering…"
	if m.thumb != nil {
		preview = asciiArt(m.thumb)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left.String(), "  ", tunePreviewStyle.Render(preview)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(StyleWarning.Render(m.err.Error()))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(StyleSuccess.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m tuneModel) statsView() string {
	s := m.stats
	lines := []string{
		fmt.Sprintf("points   %d", s.Points),
		fmt.Sprintf("rendered %d", s.Rendered),
		fmt.Sprintf("skipped  %d", s.Skipped),
		fmt.Sprintf("max      %.4g", s.Raw.Max),
		fmt.Sprintf("mean     %.4g", s.Raw.Mean),
		fmt.Sprintf("window   %.4g – %.4g", m.window.Low, m.window.High),
	}
	if m.opts.Policy == pipeline.PolicyPack {
		lines[0] = fmt.Sprintf("disks    %d", s.Disks)
	}
	if m.rendering {
		lines = append(lines, "rendering…")
	}
	return tuneDimStyle.Render(strings.Join(lines, "\n"))
}

// asciiArt draws a gray image with one character per pixel.
func asciiArt(img *image.Gray) string {
	b := img.Bounds()
	var sb strings.Builder
	sb.Grow((b.Dx() + 1) * b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := int(img.GrayAt(x, y).Y)
			sb.WriteByte(asciiRamp[v*len(asciiRamp)/256])
		}
		if y < b.Max.Y-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
