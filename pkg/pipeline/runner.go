package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/evsynth/pkg/buildinfo"
	"github.com/matzehuels/evsynth/pkg/cache"
	"github.com/matzehuels/evsynth/pkg/core/contrast"
	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/observability"
	"github.com/matzehuels/evsynth/pkg/sink"
)

// runNamespace seeds the name-based run IDs.
var runNamespace = uuid.MustParse("6f1c2a44-3a0e-4c55-9a5e-2f0f4b1d7e21")

// RunID derives the stable run ID for a run hash.
func RunID(runHash string) string {
	return uuid.NewSHA1(runNamespace, []byte(runHash)).String()
}

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// the default keyer and a nil logger uses the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs generate → render → rescale → export. When every requested
// artifact is cached the render and rescale stages are skipped.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	runHash := opts.RunHash()
	result := &Result{ID: RunID(runHash), RunHash: runHash}

	// Stage 1: Generate
	start := time.Now()
	geom, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Geometry = geom
	result.CacheInfo.GeometryHit = hit
	result.Stats.SampleTime = time.Since(start)
	result.Stats.Points = len(geom.Points)
	result.Stats.Disks = len(geom.Disks)
	result.Stats.Skipped = geom.Skipped

	logger.Info("sampled geometry",
		"policy", opts.Policy,
		"points", len(geom.Points),
		"cached", hit,
		"duration", result.Stats.SampleTime)
	if geom.Skipped > 0 {
		logger.Debug("rejected placements", "skipped", geom.Skipped)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Full artifact hit: nothing left to compute.
	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, runHash, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.ExportHit = true
			result.Manifest = r.cachedManifest(ctx, runHash, opts, artifacts)
			logger.Info("artifacts from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 2: Render
	start = time.Now()
	raw, rs, err := r.Render(ctx, geom, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Raw = raw
	result.Stats.RenderTime = time.Since(start)
	result.Stats.Rendered = rs.Rendered
	if geom.Policy == PolicyCluster {
		result.Stats.Skipped = rs.Skipped
	}
	result.Stats.Raw = sink.Summarize(raw)

	logger.Info("rendered canvas",
		"width", raw.Width,
		"height", raw.Height,
		"rendered", rs.Rendered,
		"skipped", result.Stats.Skipped,
		"duration", result.Stats.RenderTime)

	// Stage 3: Rescale
	display, window, err := contrast.RescaleWindow(raw, opts.Low, opts.High)
	if err != nil {
		return nil, fmt.Errorf("rescale: %w", err)
	}
	result.Display = display
	result.Window = window
	result.Manifest = r.manifest(result, opts)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Export
	start = time.Now()
	artifacts, err := r.Export(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(start)

	logger.Info("exported outputs",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// GenerateWithCacheInfo samples the geometry, consulting the cache first.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (Geometry, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return Geometry{}, false, err
	}

	key := r.Keyer.PointsKey(opts.Policy, opts.GenerationHash())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := unmarshalGeometry(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "geometry")
				return g, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "geometry")
	}

	hooks := observability.Pipeline()
	hooks.OnSampleStart(ctx, opts.Policy)
	start := time.Now()
	g, err := Generate(opts)
	hooks.OnSampleComplete(ctx, opts.Policy, len(g.Points), g.Skipped, time.Since(start), err)
	if err != nil {
		return Geometry{}, false, err
	}

	if data, err := marshalGeometry(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLPoints); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "geometry", len(data))
		}
	}
	return g, false, nil
}

// Generate is GenerateWithCacheInfo without the hit flag.
func (r *Runner) Generate(ctx context.Context, opts Options) (Geometry, error) {
	g, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return g, err
}

// Render rasterizes g. Raw canvases are not cached: they are large and
// cheap to recompute from cached geometry.
func (r *Runner) Render(ctx context.Context, g Geometry, opts Options) (*raster.Canvas, raster.RenderStats, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, g.Width, g.Height)
	start := time.Now()
	c, stats, err := RenderGeometry(g, opts)
	hooks.OnRenderComplete(ctx, stats.Rendered, stats.Skipped, time.Since(start), err)
	return c, stats, err
}

// Export encodes the artifacts of a rendered result and caches each one.
func (r *Runner) Export(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	if res.Display == nil {
		return nil, fmt.Errorf("export: result has no display canvas")
	}
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := Export(res.Geometry, res.Display, res.Manifest, opts)
	hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(res.RunHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	// The manifest is always cached so a later full artifact hit can still
	// report which run produced the bytes.
	if _, ok := artifacts[FormatJSON]; !ok {
		if data, err := sink.RenderJSON(res.Manifest, sink.WithCompactJSON()); err == nil {
			key := r.Keyer.ArtifactKey(res.RunHash, opts.ArtifactKeyOpts(FormatJSON))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
				opts.Logger.Warn("cache write failed", "format", FormatJSON, "err", err)
			}
		}
	}
	return artifacts, nil
}

// cachedManifest decodes the run manifest from the JSON artifact, fetching
// it from the cache when it was not requested.
func (r *Runner) cachedManifest(ctx context.Context, runHash string, opts Options, artifacts map[string][]byte) sink.Manifest {
	var m sink.Manifest
	data, ok := artifacts[FormatJSON]
	if !ok {
		var err error
		data, ok, err = r.Cache.Get(ctx, r.Keyer.ArtifactKey(runHash, opts.ArtifactKeyOpts(FormatJSON)))
		if err != nil || !ok {
			return m
		}
	}
	_ = json.Unmarshal(data, &m)
	return m
}

// cachedArtifacts returns every requested artifact, or false if any is missing.
func (r *Runner) cachedArtifacts(ctx context.Context, runHash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(runHash, opts.ArtifactKeyOpts(format)))
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		artifacts[format] = data
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return artifacts, true
}

func (r *Runner) manifest(res *Result, opts Options) sink.Manifest {
	optsJSON, _ := json.Marshal(opts)
	return sink.Manifest{
		ID:        res.ID,
		CreatedAt: time.Now().UTC(),
		Version:   buildinfo.Version,
		Policy:    opts.Policy,
		Seed:      opts.Seed,
		Width:     res.Geometry.Width,
		Height:    res.Geometry.Height,
		Points:    len(res.Geometry.Points),
		Disks:     len(res.Geometry.Disks),
		Rendered:  res.Stats.Rendered,
		Skipped:   res.Stats.Skipped,
		Window:    res.Window,
		Raw:       res.Stats.Raw,
		Options:   optsJSON,
		Artifacts: opts.Formats,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger != nil {
		return
	}
	opts.Logger = r.Logger
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
}
