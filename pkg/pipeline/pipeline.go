// Package pipeline runs the complete sample → render → rescale → export
// pipeline shared by the CLI, the TUI and the HTTP API.
//
// # Architecture
//
// A run has four stages:
//
//  1. Generate: draw a point set (cluster policy) or a disk packing (pack policy)
//  2. Render: rasterize the geometry into a raw float canvas
//  3. Rescale: map the raw canvas into [0, 1] with percentile contrast
//  4. Export: encode the requested formats (png, tiff, csv, json, overlay)
//
// Every run is fully determined by its [Options], seed included, so the
// geometry and the encoded artifacts are cached by a hash of the options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Seed = 7
//	opts.Formats = []string{pipeline.FormatPNG, pipeline.FormatCSV}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts[pipeline.FormatPNG]
//
// Stages can also be run one at a time, which the TUI does to re-render
// after every parameter change without touching the cache:
//
//	geom, _, err := runner.Generate(ctx, opts)
//	raw, stats, err := runner.Render(ctx, geom, opts)
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/evsynth/pkg/cache"
	"github.com/matzehuels/evsynth/pkg/core/contrast"
	"github.com/matzehuels/evsynth/pkg/core/raster"
	"github.com/matzehuels/evsynth/pkg/core/sample"
	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI and API
// =============================================================================

// Generation policies.
const (
	PolicyCluster = "cluster"
	PolicyPack    = "pack"
)

const (
	DefaultPolicy = PolicyCluster
	DefaultSeed   = uint64(42)
	DefaultWidth  = 1024
	DefaultHeight = 1024

	DefaultParents    = 100
	DefaultClusterMin = 10
	DefaultClusterMax = 20
	DefaultSpread     = 10.0

	DefaultBeads       = 2000
	DefaultDistMin     = 4
	DefaultDistMax     = 12
	DefaultRadiusMin   = 2
	DefaultRadiusMax   = 8
	DefaultClusterProb = 0.5

	DefaultKernelRadius = 8
	DefaultPSFSigma     = 3.0

	DefaultLow  = contrast.DefaultLow
	DefaultHigh = contrast.DefaultHigh

	DefaultScale        = 1
	DefaultMarkerRadius = 3.0
)

// Output formats.
const (
	FormatPNG     = "png"
	FormatTIFF    = "tiff"
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatOverlay = "overlay"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:     true,
	FormatTIFF:    true,
	FormatCSV:     true,
	FormatJSON:    true,
	FormatOverlay: true,
}

// ValidPolicies is the set of supported generation policies.
var ValidPolicies = map[string]bool{
	PolicyCluster: true,
	PolicyPack:    true,
}

// FormatExtensions maps each format to its file extension.
var FormatExtensions = map[string]string{
	FormatPNG:     ".png",
	FormatTIFF:    ".tiff",
	FormatCSV:     ".csv",
	FormatJSON:    ".json",
	FormatOverlay: ".overlay.png",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options holds every parameter of a run. It is JSON-encodable for API
// requests and run manifests.
//
// Numeric fields are never defaulted by [Options.ValidateAndSetDefaults]: a
// zero is taken literally and rejected where it is illegal (PSF sigma, canvas
// dimensions). Start from [DefaultOptions] to get the standard values.
type Options struct {
	Policy string `json:"policy,omitempty"`
	Seed   uint64 `json:"seed"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Cluster policy
	Parents     int     `json:"parents"`
	ClusterMin  int     `json:"cluster_min"`
	ClusterMax  int     `json:"cluster_max"`
	Spread      float64 `json:"spread"`
	RectParents bool    `json:"rect_parents,omitempty"`

	// Pack policy; the canvas is Width×Width and Height must match.
	Beads       int     `json:"beads"`
	DistMin     int     `json:"dist_min"`
	DistMax     int     `json:"dist_max"`
	RadiusMin   int     `json:"radius_min"`
	RadiusMax   int     `json:"radius_max"`
	ClusterProb float64 `json:"cluster_prob"`

	// Render options (cluster policy)
	KernelRadius int     `json:"kernel_radius"`
	PSFSigma     float64 `json:"psf_sigma"`
	Workers      int     `json:"workers,omitempty"`

	// Contrast window, in percent
	Low  float64 `json:"low"`
	High float64 `json:"high"`

	// Export options
	Formats      []string `json:"formats,omitempty"`
	Scale        int      `json:"scale,omitempty"`
	Deflate      bool     `json:"deflate,omitempty"`
	MarkerRadius float64  `json:"marker_radius,omitempty"`
	Refresh      bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options with every parameter at its standard value.
func DefaultOptions() Options {
	return Options{
		Policy:       DefaultPolicy,
		Seed:         DefaultSeed,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Parents:      DefaultParents,
		ClusterMin:   DefaultClusterMin,
		ClusterMax:   DefaultClusterMax,
		Spread:       DefaultSpread,
		Beads:        DefaultBeads,
		DistMin:      DefaultDistMin,
		DistMax:      DefaultDistMax,
		RadiusMin:    DefaultRadiusMin,
		RadiusMax:    DefaultRadiusMax,
		ClusterProb:  DefaultClusterProb,
		KernelRadius: DefaultKernelRadius,
		PSFSigma:     DefaultPSFSigma,
		Low:          DefaultLow,
		High:         DefaultHigh,
		Formats:      []string{FormatPNG},
		Scale:        DefaultScale,
		MarkerRadius: DefaultMarkerRadius,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies the run. Identical options give identical IDs.
	ID string

	// RunHash is the content hash of the generation parameters.
	RunHash string

	// Geometry is the sampled point set or packing.
	Geometry Geometry

	// Raw is the rendered canvas before contrast, nil when every artifact
	// came from the cache.
	Raw *raster.Canvas

	// Display is the rescaled canvas in [0, 1], nil when Raw is nil.
	Display *raster.Canvas

	// Window is the intensity window used for Display.
	Window contrast.Window

	// Manifest describes the run.
	Manifest sink.Manifest

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Points     int
	Disks      int
	Rendered   int
	Skipped    int
	Raw        sink.Stats
	SampleTime time.Duration
	RenderTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	GeometryHit bool // geometry came from cache
	ExportHit   bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePolicy checks that a policy is supported.
func ValidatePolicy(policy string) error {
	if !ValidPolicies[policy] {
		return errors.New(errors.ErrCodeInvalidPolicy, "invalid policy: %q (must be one of: cluster, pack)", policy)
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the full run.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetGenerateDefaults fills the policy, the only field whose zero value is
// never meant literally. Every numeric field is taken as given, so callers
// start from [DefaultOptions].
func (o *Options) SetGenerateDefaults() {
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
}

// ValidateForGenerate applies generation defaults and checks the sampling
// parameters of the selected policy.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	if err := ValidatePolicy(o.Policy); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if o.Policy == PolicyPack {
		if o.Width != o.Height {
			return errors.New(errors.ErrCodeInvalidParameter, "pack policy needs a square canvas, got %dx%d", o.Width, o.Height)
		}
		return o.DiskParams().Validate()
	}
	return o.ClusterParams().Validate()
}

// ValidateForRender checks render and contrast parameters. A zero PSF
// sigma or canvas dimension is rejected, never replaced.
func (o *Options) ValidateForRender() error {
	o.SetGenerateDefaults()
	if o.Policy == PolicyCluster {
		if err := o.RenderParams().Validate(); err != nil {
			return err
		}
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "workers must be non-negative, got %d", o.Workers)
	}
	return errors.ValidatePercentiles(o.Low, o.High)
}

// SetExportDefaults fills export defaults.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.MarkerRadius == 0 {
		o.MarkerRadius = DefaultMarkerRadius
	}
}

// ValidateForExport applies export defaults and checks formats.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	if o.Scale < 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "scale must be at least 1, got %d", o.Scale)
	}
	if err := errors.ValidatePositive("marker radius", o.MarkerRadius); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// ClusterParams returns the cluster-policy sampler parameters.
func (o *Options) ClusterParams() sample.ClusterParams {
	return sample.ClusterParams{
		Parents:            o.Parents,
		ClusterMin:         o.ClusterMin,
		ClusterMax:         o.ClusterMax,
		Spread:             o.Spread,
		Width:              o.Width,
		Height:             o.Height,
		RectangularParents: o.RectParents,
	}
}

// DiskParams returns the pack-policy sampler parameters.
func (o *Options) DiskParams() sample.DiskParams {
	return sample.DiskParams{
		Beads:       o.Beads,
		DistMin:     o.DistMin,
		DistMax:     o.DistMax,
		RadiusMin:   o.RadiusMin,
		RadiusMax:   o.RadiusMax,
		ClusterProb: o.ClusterProb,
		Size:        o.Width,
	}
}

// RenderParams returns the rasterizer parameters.
func (o *Options) RenderParams() raster.RenderParams {
	return raster.RenderParams{
		Radius:  o.KernelRadius,
		Sigma:   o.PSFSigma,
		Width:   o.Width,
		Height:  o.Height,
		Workers: o.Workers,
	}
}

// generationKey lists every field that changes the sampled geometry.
type generationKey struct {
	Policy  string                `json:"policy"`
	Seed    uint64                `json:"seed"`
	Cluster *sample.ClusterParams `json:"cluster,omitempty"`
	Disk    *sample.DiskParams    `json:"disk,omitempty"`
}

// renderKey lists every field that changes the raw canvas.
type renderKey struct {
	Geometry string  `json:"geometry"`
	Radius   int     `json:"radius,omitempty"`
	Sigma    float64 `json:"sigma,omitempty"`
}

// GenerationHash hashes the parameters that determine the geometry.
func (o *Options) GenerationHash() string {
	k := generationKey{Policy: o.Policy, Seed: o.Seed}
	if o.Policy == PolicyPack {
		d := o.DiskParams()
		k.Disk = &d
	} else {
		c := o.ClusterParams()
		k.Cluster = &c
	}
	h, _ := cache.HashJSON(k)
	return h
}

// RunHash hashes the parameters that determine the raw canvas. Worker
// count is excluded: banded rendering is bit-identical to sequential.
func (o *Options) RunHash() string {
	k := renderKey{Geometry: o.GenerationHash()}
	if o.Policy == PolicyCluster {
		k.Radius, k.Sigma = o.KernelRadius, o.PSFSigma
	}
	h, _ := cache.HashJSON(k)
	return h
}

// ArtifactKeyOpts returns the export settings that change the bytes of format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		k.Scale, k.Low, k.High = o.Scale, o.Low, o.High
	case FormatTIFF:
		k.Low, k.High, k.Deflate = o.Low, o.High, o.Deflate
	case FormatOverlay:
		k.Scale, k.Low, k.High, k.Marker = o.Scale, o.Low, o.High, o.MarkerRadius
	case FormatJSON:
		k.Low, k.High = o.Low, o.High
	}
	return k
}

// String is a short human description used in log lines.
func (o *Options) String() string {
	if o.Policy == PolicyPack {
		return fmt.Sprintf("pack %dx%d beads=%d seed=%d", o.Width, o.Width, o.Beads, o.Seed)
	}
	return fmt.Sprintf("cluster %dx%d parents=%d seed=%d", o.Width, o.Height, o.Parents, o.Seed)
}
