package cli

import (
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log [project]",
	Short: "Record time worked without the timer",
	Long: `Record a finished stretch of work. Without a project the current context is used.

Examples:
  ironbill log --from 09:00 --to 17:00
  ironbill log website --date 2024-01-10 --from 13:30 --to 15:00 --notes "client call"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

var (
	logDate  string
	logFrom  string
	logTo    string
	logNotes string
)

func init() {
	logCmd.Flags().StringVarP(&logDate, "date", "d", "today", "Day worked (YYYY-MM-DD, today, yesterday)")
	logCmd.Flags().StringVar(&logFrom, "from", "", "Start time (HH:MM)")
	logCmd.Flags().StringVar(&logTo, "to", "", "End time (HH:MM)")
	logCmd.Flags().StringVarP(&logNotes, "notes", "n", "", "What was done")
	_ = logCmd.MarkFlagRequired("from")
	_ = logCmd.MarkFlagRequired("to")
}

func runLog(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	p, err := a.project(ref)
	if err != nil {
		return err
	}

	day, err := parseDate(logDate)
	if err != nil {
		return err
	}
	start, err := atClock(day, logFrom)
	if err != nil {
		return err
	}
	end, err := atClock(day, logTo)
	if err != nil {
		return err
	}

	entry, err := a.tracker.Timer.AddManualEntry(a.ctx, p.ID, start, end, logNotes)
	if err := a.check(err); err != nil {
		return err
	}

	a.printf("✓ Logged %s on %s, %s (%s)\n",
		formatHours(entry.Duration), p.Name, start.Format("Mon Jan 2"), a.money(entry.Hours()*p.HourlyRate))
	return nil
}
