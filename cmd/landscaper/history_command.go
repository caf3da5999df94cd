package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"landscaper/internal/journal"
	"landscaper/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int
	var listRuns bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled pair outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return services.Wrap(services.ErrConfiguration, "cli", "history", "journal is disabled (journal.enabled=false)", nil)
			}
			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if listRuns {
				runs, err := store.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRuns(runs))
				return nil
			}

			var entries []journal.Entry
			runID = strings.TrimSpace(runID)
			if runID != "" {
				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if run == nil {
					return services.Wrap(services.ErrNotFound, "cli", "history", fmt.Sprintf("run %s not found", runID), nil)
				}
				entries, err = store.ForRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No journal entries")
				return nil
			}
			fmt.Fprintln(out, renderEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show only entries for this run ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of rows")
	cmd.Flags().BoolVar(&listRuns, "runs", false, "List runs instead of pair entries")
	cmd.MarkFlagsMutuallyExclusive("run", "runs")
	return cmd
}

func renderEntries(entries []journal.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		result := titleize(e.DispositionStatus)
		if e.Error != "" {
			result = result + ": " + truncate(e.Error, 60)
		}
		rows = append(rows, []string{
			formatWhen(e.CreatedAt),
			shortID(e.RunID),
			e.Directory,
			filepath.Base(e.First) + " + " + filepath.Base(e.Second),
			titleize(e.Transform),
			titleize(e.Disposition),
			result,
		})
	}
	return renderTable(
		[]string{"When", "Run", "Directory", "Pair", "Montage", "Disposition", "Result"},
		rows,
		nil,
	)
}

func renderRuns(runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			formatWhen(r.StartedAt),
			titleize(r.Mode),
			titleize(string(r.Status)),
			r.Root,
			strconv.Itoa(r.Totals.Matched),
			strconv.Itoa(r.Totals.Composed),
			strconv.Itoa(r.Totals.Failures),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Mode", "Status", "Root", "Matched", "Composed", "Failures"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
