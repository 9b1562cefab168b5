package cli

import (
	"strings"
	"time"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/model"
	"github.com/spf13/cobra"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List time entries",
	Long: `List recorded time entries, optionally filtered by project and date range.

Examples:
  ironbill entries
  ironbill entries --project website
  ironbill entries --from 2024-01-01 --to 2024-01-31`,
	Args: cobra.NoArgs,
	RunE: runEntries,
}

var (
	entriesProject string
	entriesFrom    string
	entriesTo      string
)

func init() {
	entriesCmd.Flags().StringVarP(&entriesProject, "project", "P", "", "Filter by project")
	entriesCmd.Flags().StringVar(&entriesFrom, "from", "", "First day (YYYY-MM-DD)")
	entriesCmd.Flags().StringVar(&entriesTo, "to", "", "Last day (YYYY-MM-DD)")
}

func runEntries(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var entries []model.TimeEntry
	if entriesFrom != "" || entriesTo != "" {
		start := time.Time{}
		end := time.Date(9999, 12, 31, 0, 0, 0, 0, time.Local)
		if entriesFrom != "" {
			if start, err = parseDate(entriesFrom); err != nil {
				return err
			}
		}
		if entriesTo != "" {
			if end, err = parseDate(entriesTo); err != nil {
				return err
			}
		}
		entries = a.tracker.Entries.ListByDateRange(start, billing.EndOfDay(end))
	} else {
		entries = a.tracker.Entries.List()
	}

	if entriesProject != "" {
		p, err := a.tracker.Entities.FindProject(entriesProject)
		if err != nil {
			return err
		}
		var filtered []model.TimeEntry
		for _, e := range entries {
			if e.ProjectID == p.ID {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if len(entries) == 0 {
		a.printf("No time entries found. Start the timer with: ironbill start\n")
		return nil
	}

	a.printf("\n  %-8s  %-10s  %-11s  %-20s  %8s  %s\n", "ID", "Date", "Time", "Project", "Hours", "Notes")
	a.printf("%s\n", strings.Repeat("─", 90))

	var total int64
	for _, e := range entries {
		total += e.Duration
		span := e.StartTime.Local().Format(clockLayout) + "-"
		if e.EndTime != nil {
			span += e.EndTime.Local().Format(clockLayout)
		}
		a.printf("  %-8s  %-10s  %-11s  %-20s  %8s  %s\n",
			shortID(e.ID), e.StartTime.Local().Format(dateLayout), span,
			truncate(a.projectName(e.ProjectID), 20), formatHours(e.Duration), truncate(e.Notes, 30))
	}

	a.printf("%s\n", strings.Repeat("─", 90))
	a.printf("  %d entries, %s\n\n", len(entries), formatHours(total))
	return nil
}
