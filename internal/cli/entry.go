package cli

import (
	"github.com/existflow/ironbill/internal/billing"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Edit or remove a time entry",
}

var entryEditCmd = &cobra.Command{
	Use:   "edit [entry-id]",
	Short: "Change a time entry",
	Long: `Change a time entry. Changing the times recomputes its duration.
Invoices already generated keep their own copy and are not affected.

Examples:
  ironbill entry edit 3f2a91c0 --to 17:30
  ironbill entry edit 3f2a91c0 --notes "design review"`,
	Args: cobra.ExactArgs(1),
	RunE: runEntryEdit,
}

var entryRmCmd = &cobra.Command{
	Use:     "rm [entry-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a time entry",
	Args:    cobra.ExactArgs(1),
	RunE:    runEntryRm,
}

var (
	entryProject string
	entryDate    string
	entryFrom    string
	entryTo      string
	entryNotes   string
	entryForce   bool
)

func init() {
	entryEditCmd.Flags().StringVarP(&entryProject, "project", "P", "", "Move to another project")
	entryEditCmd.Flags().StringVarP(&entryDate, "date", "d", "", "Day of the times given (default: the entry's day)")
	entryEditCmd.Flags().StringVar(&entryFrom, "from", "", "New start time (HH:MM)")
	entryEditCmd.Flags().StringVar(&entryTo, "to", "", "New end time (HH:MM)")
	entryEditCmd.Flags().StringVarP(&entryNotes, "notes", "n", "", "New notes")
	entryRmCmd.Flags().BoolVarP(&entryForce, "force", "f", false, "Do not ask for confirmation")

	entryCmd.AddCommand(entryEditCmd)
	entryCmd.AddCommand(entryRmCmd)
}

func runEntryEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.tracker.Entries.Find(args[0])
	if err != nil {
		return err
	}

	var patch billing.EntryPatch
	if cmd.Flags().Changed("project") {
		p, err := a.tracker.Entities.FindProject(entryProject)
		if err != nil {
			return err
		}
		patch.ProjectID = &p.ID
	}
	if cmd.Flags().Changed("notes") {
		patch.Notes = &entryNotes
	}

	day := e.StartTime.Local()
	if cmd.Flags().Changed("date") {
		if day, err = parseDate(entryDate); err != nil {
			return err
		}
		if !cmd.Flags().Changed("from") {
			entryFrom = e.StartTime.Local().Format(clockLayout)
		}
		if !cmd.Flags().Changed("to") && e.EndTime != nil {
			entryTo = e.EndTime.Local().Format(clockLayout)
		}
	}
	if entryFrom != "" {
		start, err := atClock(day, entryFrom)
		if err != nil {
			return err
		}
		patch.StartTime = &start
	}
	if entryTo != "" {
		end, err := atClock(day, entryTo)
		if err != nil {
			return err
		}
		patch.EndTime = &end
	}

	e, err = a.tracker.Entries.Update(a.ctx, e.ID, patch)
	if err := a.check(err); err != nil {
		return err
	}

	a.printf("✓ Updated entry %s: %s on %s\n", shortID(e.ID), formatHours(e.Duration), a.projectName(e.ProjectID))
	return nil
}

func runEntryRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.tracker.Entries.Find(args[0])
	if err != nil {
		return err
	}
	if !a.confirm(entryForce, "Delete %s entry on %s?", formatHours(e.Duration), a.projectName(e.ProjectID)) {
		return nil
	}

	if err := a.check(a.tracker.Entries.Delete(a.ctx, e.ID)); err != nil {
		return err
	}

	a.printf("🗑️  Deleted entry %s\n", shortID(e.ID))
	return nil
}
