package cli

import (
	"strings"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/model"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [project]",
	Short: "Start the timer",
	Long: `Start timing work on a project. Without an argument the current context is used.

Examples:
  ironbill start
  ironbill start website --notes "homepage layout"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running timer",
	Args:  cobra.NoArgs,
	RunE:  runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused timer",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and record a time entry",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the timer and overall totals",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var noteCmd = &cobra.Command{
	Use:   "note [text]",
	Short: "Set notes on the running session",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNote,
}

var startNotes string

func init() {
	startCmd.Flags().StringVarP(&startNotes, "notes", "n", "", "Notes for the session")
}

func runStart(cmd *cobra.Command, args []string) error {
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

	if _, err := a.tracker.Timer.Start(a.ctx, p.ID); a.check(err) != nil {
		return err
	}
	if startNotes != "" {
		if err := a.check(a.tracker.Timer.SetNotes(a.ctx, startNotes)); err != nil {
			return err
		}
	}

	a.printf("▶️  Timer started on %s (%s/h)\n", p.Name, a.money(p.HourlyRate))
	return nil
}

func runPause(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.tracker.Timer.Pause(a.ctx); a.check(err) != nil {
		return err
	}

	a.printf("⏸️  Paused at %s\n", formatClock(a.tracker.Timer.Elapsed()))
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.tracker.Timer.Resume(a.ctx); a.check(err) != nil {
		return err
	}

	a.printf("▶️  Resumed at %s\n", formatClock(a.tracker.Timer.Elapsed()))
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.tracker.Timer.Stop(a.ctx)
	if err := a.check(err); err != nil {
		return err
	}

	p, _ := a.tracker.Entities.GetProject(entry.ProjectID)
	a.printf("⏹️  Recorded %s on %s (%s)\n",
		formatHours(entry.Duration), p.Name, a.money(entry.Hours()*p.HourlyRate))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tm := a.tracker.Timer
	switch tm.State() {
	case billing.TimerIdle:
		a.printf("⏹️  No timer running\n")
	default:
		active := tm.Active()
		icon := "▶️ "
		if tm.State() == billing.TimerPaused {
			icon = "⏸️ "
		}
		a.printf("%s %s  %s  %s\n", icon, tm.State(), a.projectName(active.ProjectID), formatClock(tm.Elapsed()))
		if active.Notes != "" {
			a.printf("   📝 %s\n", active.Notes)
		}
	}

	s := a.tracker.Summarize(billing.ReportFilter{})
	active := a.tracker.Entities.ListProjectsByStatus(model.ProjectActive)
	a.printf("\n📊 All time: %.2fh tracked, %s earned, %d active project(s)\n",
		s.TotalHours, a.money(s.TotalEarnings), len(active))
	return nil
}

func runNote(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.check(a.tracker.Timer.SetNotes(a.ctx, strings.Join(args, " "))); err != nil {
		return err
	}
	a.printf("📝 Notes saved\n")
	return nil
}
