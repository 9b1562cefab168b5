package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/model"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create, list, and manage the client projects you track time against.`,
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Long: `Create a new project for a client.

Examples:
  ironbill project new "Website Redesign" --client acme --rate 75
  ironbill project new "Logo" --client acme --rate 85 --status on-hold`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProjectNew,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE:    runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show a project with its tracked totals",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectShow,
}

var projectEditCmd = &cobra.Command{
	Use:   "edit [project]",
	Short: "Change a project's name, rate, status or client",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectEdit,
}

var projectDeleteCmd = &cobra.Command{
	Use:     "rm [project]",
	Aliases: []string{"delete"},
	Short:   "Delete a project without time entries",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectDelete,
}

var (
	projectClient string
	projectRate   float64
	projectStatus string
	projectDesc   string
	projectName   string
	projectForce  bool

	listClient string
	listStatus string
)

func init() {
	projectNewCmd.Flags().StringVarP(&projectClient, "client", "c", "", "Client name or id (required)")
	projectNewCmd.Flags().Float64VarP(&projectRate, "rate", "r", 0, "Hourly rate")
	projectNewCmd.Flags().StringVarP(&projectStatus, "status", "s", string(model.ProjectActive), "Status (active, on-hold, completed)")
	projectNewCmd.Flags().StringVarP(&projectDesc, "desc", "d", "", "Description")
	_ = projectNewCmd.MarkFlagRequired("client")

	projectListCmd.Flags().StringVarP(&listClient, "client", "c", "", "Only projects of this client")
	projectListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Only projects in this status")

	projectEditCmd.Flags().StringVar(&projectName, "name", "", "New name")
	projectEditCmd.Flags().StringVarP(&projectClient, "client", "c", "", "Move to another client")
	projectEditCmd.Flags().Float64VarP(&projectRate, "rate", "r", 0, "New hourly rate")
	projectEditCmd.Flags().StringVarP(&projectStatus, "status", "s", "", "New status")
	projectEditCmd.Flags().StringVarP(&projectDesc, "desc", "d", "", "New description")

	projectDeleteCmd.Flags().BoolVarP(&projectForce, "force", "f", false, "Do not ask for confirmation")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.tracker.Entities.FindClient(projectClient)
	if err != nil {
		return err
	}

	p, err := a.tracker.Entities.AddProject(a.ctx, model.Project{
		ClientID:    client.ID,
		Name:        strings.Join(args, " "),
		Status:      model.ProjectStatus(projectStatus),
		HourlyRate:  projectRate,
		Description: projectDesc,
	})
	if err := a.check(err); err != nil {
		return err
	}

	a.printf("✓ Created project: %s for %s at %s/h (id: %s)\n", p.Name, client.Name, a.money(p.HourlyRate), shortID(p.ID))
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	projects := a.tracker.Entities.ListProjects()
	if listStatus != "" {
		status := model.ProjectStatus(listStatus)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", listStatus)
		}
		projects = a.tracker.Entities.ListProjectsByStatus(status)
	}
	if listClient != "" {
		client, err := a.tracker.Entities.FindClient(listClient)
		if err != nil {
			return err
		}
		var filtered []model.Project
		for _, p := range projects {
			if p.ClientID == client.ID {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}

	if len(projects) == 0 {
		a.printf("No projects found.\n")
		return nil
	}

	current := a.currentProject()
	a.printf("\n  %-8s  %-22s  %-18s  %-10s  %10s  %9s\n", "ID", "Name", "Client", "Status", "Rate", "Hours")
	a.printf("%s\n", strings.Repeat("─", 90))

	var totalSeconds int64
	for _, p := range projects {
		var seconds int64
		for _, e := range a.tracker.Entries.ListByProject(p.ID) {
			seconds += e.Duration
		}
		totalSeconds += seconds

		marker := "  "
		if p.ID == current {
			marker = "❯ "
		}
		a.printf("%s%-8s  %-22s  %-18s  %-10s  %10s  %9s\n",
			marker, shortID(p.ID), truncate(p.Name, 22), truncate(a.clientName(p.ClientID), 18),
			p.Status, a.money(p.HourlyRate), formatHours(seconds))
	}

	a.printf("%s\n", strings.Repeat("─", 90))
	a.printf("  %d projects, %s tracked\n\n", len(projects), formatHours(totalSeconds))
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
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

	s := a.tracker.Summarize(billing.ReportFilter{ProjectID: p.ID})

	a.printf("\n📁 %s\n", p.Name)
	a.printf("   ID:       %s\n", p.ID)
	a.printf("   Client:   %s\n", a.clientName(p.ClientID))
	a.printf("   Status:   %s\n", p.Status)
	a.printf("   Rate:     %s/h\n", a.money(p.HourlyRate))
	if p.Description != "" {
		a.printf("   About:    %s\n", p.Description)
	}
	a.printf("   Entries:  %d\n", s.EntryCount)
	a.printf("   Tracked:  %.2fh (%s)\n\n", s.TotalHours, a.money(s.TotalEarnings))
	return nil
}

func runProjectEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.tracker.Entities.FindProject(args[0])
	if err != nil {
		return err
	}

	var patch billing.ProjectPatch
	if cmd.Flags().Changed("name") {
		patch.Name = &projectName
	}
	if cmd.Flags().Changed("client") {
		client, err := a.tracker.Entities.FindClient(projectClient)
		if err != nil {
			return err
		}
		patch.ClientID = &client.ID
	}
	if cmd.Flags().Changed("rate") {
		patch.HourlyRate = &projectRate
	}
	if cmd.Flags().Changed("status") {
		status := model.ProjectStatus(projectStatus)
		patch.Status = &status
	}
	if cmd.Flags().Changed("desc") {
		patch.Description = &projectDesc
	}

	p, err = a.tracker.Entities.UpdateProject(a.ctx, p.ID, patch)
	if err := a.check(err); err != nil {
		return err
	}

	a.printf("✓ Updated project: %s (%s, %s/h)\n", p.Name, p.Status, a.money(p.HourlyRate))
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.tracker.Entities.FindProject(args[0])
	if err != nil {
		return err
	}
	if !a.confirm(projectForce, "Delete project %s?", p.Name) {
		return nil
	}

	ok, err := a.tracker.Entities.DeleteProject(a.ctx, p.ID)
	if err := a.check(err); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("project %s has time entries or a running timer; it was not deleted", p.Name)
	}

	if a.currentProject() == p.ID {
		_ = a.clearContext()
	}

	a.printf("🗑️  Deleted project: %s\n", p.Name)
	return nil
}
