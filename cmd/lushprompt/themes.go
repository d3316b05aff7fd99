package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/berrym/lush/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Inspect registered themes",
}

var themesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered themes",
	RunE:  runThemesList,
}

func init() {
	themesCmd.AddCommand(themesListCmd)
	rootCmd.AddCommand(themesCmd)
}

func runThemesList(cmd *cobra.Command, args []string) error {
	registry := theme.NewRegistry(theme.Powerline())

	names := registry.Names()
	sort.Strings(names)

	rows := make([]theme.Theme, 0, len(names))
	for _, name := range names {
		th, ok := registry.Get(name)
		if !ok {
			continue
		}
		rows = append(rows, th)
	}
	return writeThemeTable(cmd.OutOrStdout(), rows)
}

// writeThemeTable prints th's name/style/PS1 format/enabled-segment list as
// a tab-aligned table, one theme per row. It exists because the CLI only
// ever renders this one fixed-shape listing — a generic N-column table
// builder would be solving a problem this command doesn't have.
func writeThemeTable(w io.Writer, themes []theme.Theme) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTYLE\tPS1 FORMAT\tENABLED SEGMENTS")
	for _, th := range themes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			th.Name, th.Layout.Style, th.Layout.PS1Format, strings.Join(th.Enabled, ","))
	}
	return tw.Flush()
}
