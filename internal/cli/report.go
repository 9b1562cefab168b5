package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize tracked hours and earnings",
	Long: `Summarize hours and earnings for a month (daily breakdown) or a year
(monthly breakdown). Earnings use each project's current rate.

Examples:
  ironbill report
  ironbill report --month 2024-01 --client acme
  ironbill report --year 2024`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var (
	reportMonth   string
	reportYear    int
	reportProject string
	reportClient  string
)

func init() {
	reportCmd.Flags().StringVarP(&reportMonth, "month", "m", "", "Month to report (YYYY-MM, default: this month)")
	reportCmd.Flags().IntVarP(&reportYear, "year", "y", 0, "Year to report, broken down by month")
	reportCmd.Flags().StringVarP(&reportProject, "project", "P", "", "Only this project")
	reportCmd.Flags().StringVarP(&reportClient, "client", "c", "", "Only this client's projects")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var f billing.ReportFilter
	var title string
	switch {
	case reportYear > 0:
		f.Start = time.Date(reportYear, time.January, 1, 0, 0, 0, 0, time.Local)
		f.End = time.Date(reportYear, time.December, 31, 0, 0, 0, 0, time.Local)
		f.Granularity = billing.GroupMonthly
		title = strconv.Itoa(reportYear)
	default:
		month := a.tracker.Now()
		if reportMonth != "" {
			if month, err = parseMonth(reportMonth); err != nil {
				return err
			}
		}
		f.Start, f.End = billing.MonthRange(month)
		f.Granularity = billing.GroupDaily
		title = month.Format("January 2006")
	}

	if reportProject != "" {
		p, err := a.tracker.Entities.FindProject(reportProject)
		if err != nil {
			return err
		}
		f.ProjectID = p.ID
		title += " · " + p.Name
	}
	if reportClient != "" {
		c, err := a.tracker.Entities.FindClient(reportClient)
		if err != nil {
			return err
		}
		f.ClientID = c.ID
		title += " · " + c.Name
	}

	s := a.tracker.Summarize(f)

	a.printf("\n📊 %s\n\n", title)
	a.printf("   Total:    %.2fh  %s\n", s.TotalHours, a.money(s.TotalEarnings))
	a.printf("   Entries:  %d\n", s.EntryCount)
	a.printf("   Average:  %.2fh/day\n", s.AvgHoursPerDay)

	if len(s.Projects) > 0 {
		a.printf("\n   %-24s  %8s  %12s\n", "Project", "Hours", "Earnings")
		for _, p := range s.Projects {
			a.printf("   %-24s  %8.2f  %12s\n", truncate(p.Name, 24), p.Hours, a.money(p.Earnings))
		}
	}

	var peak float64
	for _, b := range s.Buckets {
		if b.Hours > peak {
			peak = b.Hours
		}
	}
	if peak > 0 {
		a.printf("\n")
		for _, b := range s.Buckets {
			if b.Hours == 0 && f.Granularity == billing.GroupDaily {
				continue
			}
			bar := strings.Repeat("█", int(b.Hours/peak*30+0.5))
			a.printf("   %-9s %6.2fh %s\n", b.Label, b.Hours, bar)
		}
	}
	a.printf("\n")
	return nil
}
