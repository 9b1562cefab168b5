package cli

import (
	"fmt"

	"github.com/existflow/ironbill/internal/db"
	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage the default project",
	Long: `Set or view the current project context.

When a context is set, 'start', 'log' and 'invoice create' use that project
unless another one is given.

Examples:
  ironbill context              # Show current context
  ironbill context ls           # List active projects
  ironbill context set website  # Work on the 'Website' project
  ironbill context clear        # Forget the default project`,
	RunE: runContextShow,
}

var contextLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List active projects",
	RunE:    runContextList,
}

var contextSetCmd = &cobra.Command{
	Use:   "set [project]",
	Short: "Set the current project context",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextSet,
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the current context",
	RunE:  runContextClear,
}

func init() {
	contextCmd.AddCommand(contextLsCmd)
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextClearCmd)
}

func (a *app) setContext(projectID string) error {
	return a.db.SetSetting(a.ctx, db.SettingCurrentProject, projectID)
}

func (a *app) clearContext() error {
	return a.db.DeleteSetting(a.ctx, db.SettingCurrentProject)
}

func runContextShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id := a.currentProject()
	if id == "" {
		a.printf("📥 No context set\n")
		return nil
	}

	p, err := a.tracker.Entities.GetProject(id)
	if err != nil {
		a.printf("⚠️  Context set to '%s' but project not found\n", shortID(id))
		return nil
	}

	a.printf("📁 Current context: %s (%s, %s/h)\n", p.Name, a.clientName(p.ClientID), a.money(p.HourlyRate))
	return nil
}

func runContextList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	current := a.currentProject()

	a.printf("\n")
	for _, p := range a.tracker.Entities.ListProjects() {
		if !p.IsActive() && p.ID != current {
			continue
		}
		marker := "  "
		if p.ID == current {
			marker = "❯ "
		}
		a.printf("%s%-8s  %-22s  %s\n", marker, shortID(p.ID), truncate(p.Name, 22), a.clientName(p.ClientID))
	}
	a.printf("\nUse 'ironbill context set <project>' to switch context\n")
	return nil
}

func runContextSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.tracker.Entities.FindProject(args[0])
	if err != nil {
		return err
	}

	if err := a.setContext(p.ID); err != nil {
		return fmt.Errorf("failed to set context: %w", err)
	}

	a.printf("📁 Switched to: %s\n", p.Name)
	return nil
}

func runContextClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.clearContext(); err != nil {
		return fmt.Errorf("failed to clear context: %w", err)
	}
	a.printf("📥 Context cleared\n")
	return nil
}
