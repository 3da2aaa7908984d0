package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/evsynth/pkg/core/kernel"
	"github.com/matzehuels/evsynth/pkg/pipeline"
)

// kernelCommand prints the PSF patch the rasterizer stamps at every point.
func (c *CLI) kernelCommand() *cobra.Command {
	var (
		radius    int
		sigma     float64
		asJSON    bool
		precision int
	)

	cmd := &cobra.Command{
		Use:   "kernel",
		Short: "Print the normalized PSF kernel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.DefaultOptions()
			c.Config().Apply(&opts)
			if cmd.Flags().Changed("radius") {
				opts.KernelRadius = radius
			}
			if cmd.Flags().Changed("sigma") {
				opts.PSFSigma = sigma
			}

			patch, err := kernel.Preview(opts.KernelRadius, opts.PSFSigma)
			if err != nil {
				return err
			}
			if asJSON {
				return writeKernelJSON(cmd.OutOrStdout(), patch)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKernelTable(patch, precision))
			printDetail("size %d×%d · sigma %g · sum %.6f", patch.Size, patch.Size, patch.Sigma, patch.Sum())
			return nil
		},
	}

	cmd.Flags().IntVarP(&radius, "radius", "r", pipeline.DefaultKernelRadius, "kernel radius r; the patch is (2r+1)²")
	cmd.Flags().Float64VarP(&sigma, "sigma", "s", pipeline.DefaultPSFSigma, "PSF standard deviation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the weights as JSON")
	cmd.Flags().IntVar(&precision, "precision", 4, "decimal places in the table")

	return cmd
}

func writeKernelJSON(w io.Writer, patch kernel.Patch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Size    int         `json:"size"`
		Sigma   float64     `json:"sigma"`
		Weights [][]float64 `json:"weights"`
	}{patch.Size, patch.Sigma, patch.Rows()})
}

// renderKernelTable lays the weights out as a bordered table with the peak
// row and column highlighted.
func renderKernelTable(patch kernel.Patch, precision int) string {
	centre := patch.Radius()

	headers := make([]string, patch.Size+1)
	for x := range patch.Size {
		headers[x+1] = strconv.Itoa(x - centre)
	}

	rows := make([][]string, patch.Size)
	for y, weights := range patch.Rows() {
		row := make([]string, patch.Size+1)
		row[0] = strconv.Itoa(y - centre)
		for x, w := range weights {
			row[x+1] = strconv.FormatFloat(w, 'f', precision, 64)
		}
		rows[y] = row
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1 || col == 0:
				return StyleHeader
			case row == centre && col == centre+1:
				return StyleHighlight.Bold(true)
			case row == centre || col == centre+1:
				return StyleValue
			default:
				return StyleDim
			}
		}).
		Render()
}
