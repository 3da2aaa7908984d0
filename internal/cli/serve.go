package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/evsynth/pkg/config"
	"github.com/matzehuels/evsynth/pkg/observability"
	"github.com/matzehuels/evsynth/pkg/server"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		timeout    time.Duration
		maxPixels  int
		maxPoints  int
		maxRadius  int
		catalogDSN string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generator over HTTP",
		Long: `Serve exposes generation over HTTP. Images, coordinates and kernels are
available as GET routes driven by query parameters, and POST /v1/generate
takes a JSON options document.

Address, timeout and API keys default to the [server] table of the preset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config().Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout.Duration = timeout
			}

			store, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			cat, err := c.openCatalog(ctx, catalogDSN)
			if err != nil {
				return err
			}
			if cat != nil {
				defer cat.Close()
			}

			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			defer observability.Reset()

			srv := server.New(server.Config{
				Cache:           store,
				Catalog:         cat,
				Logger:          c.Logger,
				Timeout:         cfg.Timeout.Duration,
				MaxPixels:       maxPixels,
				MaxPoints:       maxPoints,
				MaxKernelRadius: maxRadius,
				APIKeys:         cfg.APIKeys,
			})

			if cfg.Addr == "" {
				cfg.Addr = config.DefaultAddr
			}
			c.Logger.Debug("server config", "cache", c.Config().Cache.Backend, "catalog", cat != nil, "auth", len(cfg.APIKeys) > 0)
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from preset, then :8080)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout (default from preset, then 60s)")
	cmd.Flags().IntVar(&maxPixels, "max-pixels", server.DefaultMaxPixels, "largest width×height a request may ask for")
	cmd.Flags().IntVar(&maxPoints, "max-points", server.DefaultMaxPoints, "most points a request may sample")
	cmd.Flags().IntVar(&maxRadius, "max-kernel-radius", server.DefaultMaxKernelRadius, "largest kernel radius a request may ask for")
	cmd.Flags().StringVar(&catalogDSN, "catalog", "", "record runs in this catalogue (sqlite path or mongodb:// URI)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
