package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/evsynth/pkg/catalog"
)

// catalogCommand groups the run catalogue subcommands.
func (c *CLI) catalogCommand() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"runs"},
		Short:   "Inspect recorded runs",
		Long: `Catalog lists runs recorded by generate, pack and serve. The catalogue is a
SQLite file or a MongoDB database, chosen by --dsn or the [catalog] table of
the preset.`,
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "catalogue location (sqlite path or mongodb:// URI)")

	cmd.AddCommand(c.catalogListCommand(&dsn))
	cmd.AddCommand(c.catalogShowCommand(&dsn))

	return cmd
}

func (c *CLI) catalogListCommand(dsn *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openCatalogOrDefault(cmd, *dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRunTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")

	return cmd
}

func (c *CLI) catalogShowCommand(dsn *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openCatalogOrDefault(cmd, *dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeRunJSON(cmd.OutOrStdout(), run)
			}

			printKeyValue("ID", run.ID)
			printKeyValue("Created", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printKeyValue("Policy", run.Policy)
			printKeyValue("Seed", strconv.FormatUint(run.Seed, 10))
			printKeyValue("Size", fmt.Sprintf("%d×%d", run.Width, run.Height))
			printKeyValue("Points", strconv.Itoa(run.Points))
			if run.Disks > 0 {
				printKeyValue("Disks", strconv.Itoa(run.Disks))
			}
			printKeyValue("Skipped", strconv.Itoa(run.Skipped))
			printKeyValue("Artifacts", strings.Join(run.Artifacts, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run with its options as JSON")

	return cmd
}

// openCatalogOrDefault opens the catalogue named by the flag or preset, and
// falls back to the default SQLite file.
func (c *CLI) openCatalogOrDefault(cmd *cobra.Command, dsn string) (catalog.Store, error) {
	store, err := c.openCatalog(cmd.Context(), dsn)
	if err != nil || store != nil {
		return store, err
	}
	path, err := catalog.DefaultPath()
	if err != nil {
		return nil, err
	}
	sq, err := catalog.OpenSQLite(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	return sq, nil
}

func writeRunJSON(w io.Writer, run catalog.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// renderRunTable lays out runs one per row.
func renderRunTable(runs []catalog.Run) string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		count := r.Points
		if r.Disks > 0 {
			count = r.Disks
		}
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Policy,
			strconv.FormatUint(r.Seed, 10),
			fmt.Sprintf("%d×%d", r.Width, r.Height),
			strconv.Itoa(count),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "CREATED", "POLICY", "SEED", "SIZE", "COUNT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return StyleHeader.Padding(0, 1)
			}
			if col == 0 {
				return StyleHighlight.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		String()
}
