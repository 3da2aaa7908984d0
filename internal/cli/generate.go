package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/evsynth/pkg/catalog"
	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/pipeline"
)

// outputOpts holds the flags shared by generate and pack that do not change
// the generated data.
type outputOpts struct {
	output     string // output base path; format extensions are appended
	formats    string // comma-separated formats
	noCache    bool   // bypass the cache entirely
	catalogDSN string // record runs in this catalogue
	count      int    // number of images, seeds seed..seed+count-1
	jobs       int    // concurrent runs in batch mode
}

// flagFields copies one flag's value between option sets. Only flags the
// user changed are copied, so presets survive unset flags.
var flagFields = map[string]func(dst, src *pipeline.Options){
	"seed":          func(d, s *pipeline.Options) { d.Seed = s.Seed },
	"width":         func(d, s *pipeline.Options) { d.Width = s.Width },
	"height":        func(d, s *pipeline.Options) { d.Height = s.Height },
	"size":          func(d, s *pipeline.Options) { d.Width, d.Height = s.Width, s.Width },
	"parents":       func(d, s *pipeline.Options) { d.Parents = s.Parents },
	"cluster-min":   func(d, s *pipeline.Options) { d.ClusterMin = s.ClusterMin },
	"cluster-max":   func(d, s *pipeline.Options) { d.ClusterMax = s.ClusterMax },
	"spread":        func(d, s *pipeline.Options) { d.Spread = s.Spread },
	"rect-parents":  func(d, s *pipeline.Options) { d.RectParents = s.RectParents },
	"beads":         func(d, s *pipeline.Options) { d.Beads = s.Beads },
	"dist-min":      func(d, s *pipeline.Options) { d.DistMin = s.DistMin },
	"dist-max":      func(d, s *pipeline.Options) { d.DistMax = s.DistMax },
	"radius-min":    func(d, s *pipeline.Options) { d.RadiusMin = s.RadiusMin },
	"radius-max":    func(d, s *pipeline.Options) { d.RadiusMax = s.RadiusMax },
	"cluster-prob":  func(d, s *pipeline.Options) { d.ClusterProb = s.ClusterProb },
	"kernel-radius": func(d, s *pipeline.Options) { d.KernelRadius = s.KernelRadius },
	"psf-sigma":     func(d, s *pipeline.Options) { d.PSFSigma = s.PSFSigma },
	"workers":       func(d, s *pipeline.Options) { d.Workers = s.Workers },
	"low":           func(d, s *pipeline.Options) { d.Low = s.Low },
	"high":          func(d, s *pipeline.Options) { d.High = s.High },
	"scale":         func(d, s *pipeline.Options) { d.Scale = s.Scale },
	"deflate":       func(d, s *pipeline.Options) { d.Deflate = s.Deflate },
	"marker-radius": func(d, s *pipeline.Options) { d.MarkerRadius = s.MarkerRadius },
	"refresh":       func(d, s *pipeline.Options) { d.Refresh = s.Refresh },
}

// resolveOptions layers defaults, the preset and explicitly set flags.
func (c *CLI) resolveOptions(cmd *cobra.Command, policy string, flags *pipeline.Options, out *outputOpts) pipeline.Options {
	opts := pipeline.DefaultOptions()
	c.Config().Apply(&opts)
	opts.Policy = policy

	for name, apply := range flagFields {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			apply(&opts, flags)
		}
	}
	if cmd.Flags().Changed("format") {
		opts.Formats = pipeline.ParseFormats(out.formats)
	}
	if policy == pipeline.PolicyPack {
		opts.Height = opts.Width
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	return opts
}

func addOutputFlags(cmd *cobra.Command, flags *pipeline.Options, out *outputOpts) {
	cmd.Flags().Uint64Var(&flags.Seed, "seed", flags.Seed, "random seed; equal seeds give identical images")
	cmd.Flags().Float64Var(&flags.Low, "low", flags.Low, "low contrast percentile")
	cmd.Flags().Float64Var(&flags.High, "high", flags.High, "high contrast percentile")
	cmd.Flags().StringVarP(&out.output, "output", "o", "", "output base path (default <policy>_<seed>)")
	cmd.Flags().StringVarP(&out.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated, default png)")
	cmd.Flags().IntVar(&flags.Scale, "scale", flags.Scale, "nearest-neighbour upscale factor for png and overlay")
	cmd.Flags().BoolVar(&flags.Deflate, "deflate", false, "deflate-compress tiff output")
	cmd.Flags().Float64Var(&flags.MarkerRadius, "marker-radius", flags.MarkerRadius, "overlay marker radius in pixels")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "ignore cached results and regenerate")
	cmd.Flags().BoolVar(&out.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&out.catalogDSN, "catalog", "", "record runs in this catalogue (file path, sqlite:// or mongodb://)")
	cmd.Flags().IntVarP(&out.count, "count", "n", 1, "number of images, with consecutive seeds")
	cmd.Flags().IntVarP(&out.jobs, "jobs", "j", 1, "images generated concurrently with --count")
}

// generateCommand creates the uniform+cluster command.
func (c *CLI) generateCommand() *cobra.Command {
	flags := pipeline.DefaultOptions()
	var out outputOpts

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"cluster"},
		Short:   "Generate clustered point emitters blurred by a Gaussian PSF",
		Long: `Generate scatters parent positions uniformly, places a cluster of children
around each parent with Gaussian spread, and stamps a normalized Gaussian PSF
at every child that fits on the canvas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.resolveOptions(cmd, pipeline.PolicyCluster, &flags, &out)
			return c.runGenerate(cmd.Context(), opts, out)
		},
	}

	cmd.Flags().IntVar(&flags.Width, "width", flags.Width, "canvas width in pixels")
	cmd.Flags().IntVar(&flags.Height, "height", flags.Height, "canvas height in pixels")
	cmd.Flags().IntVar(&flags.Parents, "parents", flags.Parents, "number of cluster parents")
	cmd.Flags().IntVar(&flags.ClusterMin, "cluster-min", flags.ClusterMin, "minimum children per parent")
	cmd.Flags().IntVar(&flags.ClusterMax, "cluster-max", flags.ClusterMax, "maximum children per parent (exclusive)")
	cmd.Flags().Float64Var(&flags.Spread, "spread", flags.Spread, "standard deviation of children around their parent")
	cmd.Flags().BoolVar(&flags.RectParents, "rect-parents", false, "draw parents over the full rectangle instead of a width×width square")
	cmd.Flags().IntVar(&flags.KernelRadius, "kernel-radius", flags.KernelRadius, "PSF kernel radius r; the patch is (2r+1)²")
	cmd.Flags().Float64Var(&flags.PSFSigma, "psf-sigma", flags.PSFSigma, "PSF standard deviation")
	cmd.Flags().IntVar(&flags.Workers, "workers", 0, "render bands in parallel (0 = one per CPU, 1 = sequential)")
	addOutputFlags(cmd, &flags, &out)

	return cmd
}

// packCommand creates the disk-packing command.
func (c *CLI) packCommand() *cobra.Command {
	flags := pipeline.DefaultOptions()
	var out outputOpts

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Generate non-overlapping disks with neighbour bias",
		Long: `Pack runs sequential placement attempts on a square canvas. Each candidate is
either uniform or, with probability --cluster-prob, moved next to an existing
disk. Candidates near occupied pixels or overflowing the canvas are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.resolveOptions(cmd, pipeline.PolicyPack, &flags, &out)
			return c.runGenerate(cmd.Context(), opts, out)
		},
	}

	cmd.Flags().IntVar(&flags.Width, "size", flags.Width, "side of the square canvas in pixels")
	cmd.Flags().IntVar(&flags.Beads, "beads", flags.Beads, "number of placement attempts")
	cmd.Flags().IntVar(&flags.DistMin, "dist-min", flags.DistMin, "minimum neighbour distance")
	cmd.Flags().IntVar(&flags.DistMax, "dist-max", flags.DistMax, "maximum neighbour distance (exclusive)")
	cmd.Flags().IntVar(&flags.RadiusMin, "radius-min", flags.RadiusMin, "minimum disk radius")
	cmd.Flags().IntVar(&flags.RadiusMax, "radius-max", flags.RadiusMax, "maximum disk radius (exclusive)")
	cmd.Flags().Float64Var(&flags.ClusterProb, "cluster-prob", flags.ClusterProb, "probability of placing next to an existing disk")
	addOutputFlags(cmd, &flags, &out)

	return cmd
}

// runGenerate executes one run, or a batch of runs with consecutive seeds,
// and writes every artifact to disk.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, out outputOpts) error {
	logger := loggerFromContext(ctx)
	if out.count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", out.count)
	}
	if err := checkOutput(out.output); err != nil {
		return err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, out.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := c.openCatalog(ctx, out.catalogDSN)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	base := c.Config().OutputPath(basePath(out.output, opts))
	prog := newProgress(logger)

	if out.count == 1 {
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			return err
		}
		paths, err := writeArtifacts(base, res.Artifacts, opts.Formats)
		if err != nil {
			return err
		}
		recordRun(ctx, logger, store, res)

		printSuccess("Generated %s", opts.String())
		printRunStats(res.Stats, opts.Policy, res.CacheInfo.ExportHit)
		if opts.Policy == pipeline.PolicyCluster && res.Stats.Points > 0 && res.Stats.Rendered == 0 && !res.CacheInfo.ExportHit {
			printWarning("every point was skipped; the kernel radius leaves no room on the canvas")
		}
		for _, p := range paths {
			printFile(p)
		}
		if store != nil && res.Manifest.ID != "" {
			printNextStep("Inspect the run", "evsynth catalog show "+res.Manifest.ID)
		}
		return nil
	}

	return c.runBatch(ctx, runner, store, opts, out, base, prog)
}

// runBatch generates count images concurrently. Per-run pipeline logs are
// demoted to debug so the spinner stays readable.
func (c *CLI) runBatch(ctx context.Context, runner *pipeline.Runner, store catalog.Store, opts pipeline.Options, out outputOpts, base string, prog *progress) error {
	logger := loggerFromContext(ctx)
	quiet := logger.With()
	if logger.GetLevel() > log.DebugLevel {
		quiet.SetLevel(log.WarnLevel)
	}

	var done atomic.Int64
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating 0/%d", out.count))
	spinner.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(out.jobs, 1))
	for i := range out.count {
		run := opts
		run.Seed = opts.Seed + uint64(i)
		run.Logger = quiet
		g.Go(func() error {
			res, err := runner.Execute(gctx, run)
			if err != nil {
				return fmt.Errorf("seed %d: %w", run.Seed, err)
			}
			if _, err := writeArtifacts(fmt.Sprintf("%s_%d", base, run.Seed), res.Artifacts, run.Formats); err != nil {
				return err
			}
			recordRun(gctx, quiet, store, res)
			spinner.SetMessage(fmt.Sprintf("Generating %d/%d", done.Add(1), out.count))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		spinner.StopWithError("Batch failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Generated %d images", out.count))
	printSuccess("Wrote %s_<seed>.* for seeds %d..%d", base, opts.Seed, opts.Seed+uint64(out.count)-1)
	return nil
}

func recordRun(ctx context.Context, logger *log.Logger, store catalog.Store, res *pipeline.Result) {
	if store == nil || res.Manifest.ID == "" {
		return
	}
	if err := store.Record(ctx, catalog.FromManifest(res.Manifest)); err != nil {
		logger.Warn("catalogue write failed", "run", res.ID, "err", err)
	}
}

// basePath derives the output base path. Without --output it is
// <policy>_<seed>; a trailing format extension on --output is stripped.
// checkOutput validates an --output value. Empty means the default name.
func checkOutput(output string) error {
	if output == "" {
		return nil
	}
	return errors.ValidateOutputPath(output)
}

func basePath(output string, opts pipeline.Options) string {
	if output == "" {
		return fmt.Sprintf("%s_%d", opts.Policy, opts.Seed)
	}
	exts := make([]string, 0, len(pipeline.FormatExtensions))
	for _, ext := range pipeline.FormatExtensions {
		exts = append(exts, ext)
	}
	// ".overlay.png" must win over ".png".
	slices.SortFunc(exts, func(a, b string) int { return len(b) - len(a) })
	for _, ext := range exts {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// writeArtifacts writes each format to base+extension, in format order.
func writeArtifacts(base string, artifacts map[string][]byte, formats []string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return nil, fmt.Errorf("missing %s artifact", format)
		}
		path := base + pipeline.FormatExtensions[format]
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths, nil
}
