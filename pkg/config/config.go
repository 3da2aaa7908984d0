// Package config loads TOML presets for evsynth runs.
//
// A preset names parameters the way the CLI flags do, grouped in tables:
//
//	seed = 7
//	policy = "cluster"
//	width = 512
//	height = 512
//
//	[cluster]
//	parents = 40
//	spread = 6.5
//
//	[render]
//	psf_sigma = 2.0
//
//	[output]
//	formats = ["png", "csv"]
//
// Only keys present in the file override [pipeline.Options]; everything else
// keeps its default. The CLI applies a preset first and explicit flags last.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/pipeline"
)

const (
	appName  = "evsynth"
	fileName = "config.toml"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

const (
	DefaultAddr    = ":8080"
	DefaultTimeout = 60 * time.Second
)

// Config is a decoded preset file.
type Config struct {
	Policy string `toml:"policy"`
	Seed   uint64 `toml:"seed"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	Cluster  ClusterConfig  `toml:"cluster"`
	Disk     DiskConfig     `toml:"disk"`
	Render   RenderConfig   `toml:"render"`
	Contrast ContrastConfig `toml:"contrast"`
	Output   OutputConfig   `toml:"output"`
	Cache    CacheConfig    `toml:"cache"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Server   ServerConfig   `toml:"server"`

	// meta records which keys the file defined. A Config built in code has
	// no metadata and applies every field.
	meta *toml.MetaData
}

type ClusterConfig struct {
	Parents     int     `toml:"parents"`
	ClusterMin  int     `toml:"cluster_min"`
	ClusterMax  int     `toml:"cluster_max"`
	Spread      float64 `toml:"spread"`
	RectParents bool    `toml:"rect_parents"`
}

type DiskConfig struct {
	Beads       int     `toml:"beads"`
	DistMin     int     `toml:"dist_min"`
	DistMax     int     `toml:"dist_max"`
	RadiusMin   int     `toml:"radius_min"`
	RadiusMax   int     `toml:"radius_max"`
	ClusterProb float64 `toml:"cluster_prob"`
}

type RenderConfig struct {
	KernelRadius int     `toml:"kernel_radius"`
	PSFSigma     float64 `toml:"psf_sigma"`
	Workers      int     `toml:"workers"`
}

type ContrastConfig struct {
	Low  float64 `toml:"low"`
	High float64 `toml:"high"`
}

type OutputConfig struct {
	Formats      []string `toml:"formats"`
	Scale        int      `toml:"scale"`
	Deflate      bool     `toml:"deflate"`
	MarkerRadius float64  `toml:"marker_radius"`
	// Dir is prepended to relative output paths.
	Dir string `toml:"dir"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

// CatalogConfig points at the run catalogue. An empty DSN disables it.
type CatalogConfig struct {
	DSN string `toml:"dsn"`
}

type ServerConfig struct {
	Addr    string   `toml:"addr"`
	Timeout Duration `toml:"timeout"`
	// APIKeys, when non-empty, restricts the API to these keys and scopes
	// cache entries per key.
	APIKeys []string `toml:"api_keys"`
}

// Duration decodes TOML strings such as "90s" or "2m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a preset carrying the standard pipeline parameters.
func Default() *Config {
	o := pipeline.DefaultOptions()
	return &Config{
		Policy: o.Policy,
		Seed:   o.Seed,
		Width:  o.Width,
		Height: o.Height,
		Cluster: ClusterConfig{
			Parents:    o.Parents,
			ClusterMin: o.ClusterMin,
			ClusterMax: o.ClusterMax,
			Spread:     o.Spread,
		},
		Disk: DiskConfig{
			Beads:       o.Beads,
			DistMin:     o.DistMin,
			DistMax:     o.DistMax,
			RadiusMin:   o.RadiusMin,
			RadiusMax:   o.RadiusMax,
			ClusterProb: o.ClusterProb,
		},
		Render: RenderConfig{
			KernelRadius: o.KernelRadius,
			PSFSigma:     o.PSFSigma,
		},
		Contrast: ContrastConfig{Low: o.Low, High: o.High},
		Output: OutputConfig{
			Formats:      o.Formats,
			Scale:        o.Scale,
			MarkerRadius: o.MarkerRadius,
		},
		Cache:  CacheConfig{Backend: CacheFile},
		Server: ServerConfig{Addr: DefaultAddr, Timeout: Duration{DefaultTimeout}},
	}
}

// Path returns the default preset location, $XDG_CONFIG_HOME/evsynth/config.toml
// or ~/.config/evsynth/config.toml.
func Path() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads a preset. With an empty path it reads the default location and
// returns [Default] when no file exists there; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes a preset from TOML text. Unknown keys are rejected so a typo
// does not silently fall back to a default.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
	}
	c.meta = &md
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the non-pipeline settings. Pipeline parameters are checked
// when the run starts.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidParameter, "redis cache needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidParameter, "invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Server.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "server timeout must be non-negative, got %s", c.Server.Timeout)
	}
	return pipeline.ValidateFormats(c.Output.Formats)
}

func (c *Config) defined(key ...string) bool {
	return c.meta == nil || c.meta.IsDefined(key...)
}

// Apply copies every preset value onto opts. For a loaded file only the keys
// it defined are copied.
func (c *Config) Apply(opts *pipeline.Options) {
	if c.defined("policy") {
		opts.Policy = c.Policy
	}
	if c.defined("seed") {
		opts.Seed = c.Seed
	}
	if c.defined("width") {
		opts.Width = c.Width
	}
	if c.defined("height") {
		opts.Height = c.Height
	}

	if c.defined("cluster", "parents") {
		opts.Parents = c.Cluster.Parents
	}
	if c.defined("cluster", "cluster_min") {
		opts.ClusterMin = c.Cluster.ClusterMin
	}
	if c.defined("cluster", "cluster_max") {
		opts.ClusterMax = c.Cluster.ClusterMax
	}
	if c.defined("cluster", "spread") {
		opts.Spread = c.Cluster.Spread
	}
	if c.defined("cluster", "rect_parents") {
		opts.RectParents = c.Cluster.RectParents
	}

	if c.defined("disk", "beads") {
		opts.Beads = c.Disk.Beads
	}
	if c.defined("disk", "dist_min") {
		opts.DistMin = c.Disk.DistMin
	}
	if c.defined("disk", "dist_max") {
		opts.DistMax = c.Disk.DistMax
	}
	if c.defined("disk", "radius_min") {
		opts.RadiusMin = c.Disk.RadiusMin
	}
	if c.defined("disk", "radius_max") {
		opts.RadiusMax = c.Disk.RadiusMax
	}
	if c.defined("disk", "cluster_prob") {
		opts.ClusterProb = c.Disk.ClusterProb
	}

	if c.defined("render", "kernel_radius") {
		opts.KernelRadius = c.Render.KernelRadius
	}
	if c.defined("render", "psf_sigma") {
		opts.PSFSigma = c.Render.PSFSigma
	}
	if c.defined("render", "workers") {
		opts.Workers = c.Render.Workers
	}

	if c.defined("contrast", "low") {
		opts.Low = c.Contrast.Low
	}
	if c.defined("contrast", "high") {
		opts.High = c.Contrast.High
	}

	if c.defined("output", "formats") {
		opts.Formats = append([]string(nil), c.Output.Formats...)
	}
	if c.defined("output", "scale") {
		opts.Scale = c.Output.Scale
	}
	if c.defined("output", "deflate") {
		opts.Deflate = c.Output.Deflate
	}
	if c.defined("output", "marker_radius") {
		opts.MarkerRadius = c.Output.MarkerRadius
	}
}

// OutputPath joins a relative output path onto Output.Dir.
func (c *Config) OutputPath(path string) string {
	if c.Output.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Output.Dir, path)
}

// Encode writes the preset as TOML, used by "evsynth config init".
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
