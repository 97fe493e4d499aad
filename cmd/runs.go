package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/segeodata/deso-cli/internal/export"
	"github.com/segeodata/deso-cli/internal/model"
	"github.com/segeodata/deso-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect classification run history",
	Long:  "Commands for listing saved runs and re-exporting their results.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs results --

var runsResultsCmd = &cobra.Command{
	Use:   "results <run-id>",
	Short: "Re-export the classified results of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		formatStr, _ := cmd.Flags().GetString("format")
		if formatStr == "" {
			formatStr = cfg.Export.Format
		}
		format, err := export.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		outputPath, _ := cmd.Flags().GetString("output")

		records, err := st.GetResults(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs results")
		}
		if len(records) == 0 {
			return eris.Errorf("no results for run %s", args[0])
		}

		return export.WriteFile(outputPath, format, records)
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (running, complete, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsResultsCmd.Flags().String("format", "", "output format: csv, table, or xlsx (overrides config)")
	runsResultsCmd.Flags().String("output", "", "output file path (default: stdout)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsResultsCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tYEARS\tMETHOD\tSTATUS\tAREAS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t------\t-----\t-------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			truncateID(r.ID),
			formatYears(r.Years),
			r.Method,
			r.Status,
			r.AreaCount,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatYears renders a year list compactly, e.g. "2020-2023" or "2021,2023".
func formatYears(years []int) string {
	if len(years) == 0 {
		return "-"
	}
	contiguous := true
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous && len(years) > 1 {
		return fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
	}

	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return strings.Join(parts, ",")
}
