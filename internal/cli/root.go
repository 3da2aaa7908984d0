package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/evsynth/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The preset named by --config is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "evsynth generates synthetic point-emitter images",
		Long: `evsynth generates synthetic fluorescence-style images for training and testing
detection models: clustered point emitters blurred by a Gaussian PSF, or packed
non-overlapping disks, with the ground-truth coordinates alongside every image.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "preset file (default $XDG_CONFIG_HOME/evsynth/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.packCommand())
	root.AddCommand(c.kernelCommand())
	root.AddCommand(c.tuneCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
