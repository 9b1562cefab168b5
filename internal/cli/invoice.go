package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/model"
	"github.com/spf13/cobra"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"inv"},
	Short:   "Generate and track invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate an invoice from tracked time",
	Long: `Generate a draft invoice from the project's time entries in a date range.
The entries and the project's rate are frozen into the invoice.

Defaults: the project is the current context, the client is the project's
client, and the range is the current month.

Examples:
  ironbill invoice create
  ironbill invoice create --project website --from 2024-01-01 --to 2024-01-31`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List invoices",
	Args:    cobra.NoArgs,
	RunE:    runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show [invoice]",
	Short: "Show an invoice and its entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceStatusCmd = &cobra.Command{
	Use:   "status [invoice] [status]",
	Short: "Set the status of an invoice",
	Long: `Set the status of an invoice: draft, sent, paid or overdue.

Examples:
  ironbill invoice status INV-3f2a91 sent`,
	Args: cobra.ExactArgs(2),
	RunE: runInvoiceStatus,
}

var (
	invClient  string
	invProject string
	invFrom    string
	invTo      string
	invNotes   string
	invStatus  string
)

func init() {
	invoiceCreateCmd.Flags().StringVarP(&invClient, "client", "c", "", "Client billed (default: the project's client)")
	invoiceCreateCmd.Flags().StringVarP(&invProject, "project", "P", "", "Project billed (default: current context)")
	invoiceCreateCmd.Flags().StringVar(&invFrom, "from", "", "First day (default: start of this month)")
	invoiceCreateCmd.Flags().StringVar(&invTo, "to", "", "Last day (default: end of this month)")
	invoiceCreateCmd.Flags().StringVarP(&invNotes, "notes", "n", "", "Notes printed on the invoice")
	invoiceListCmd.Flags().StringVarP(&invStatus, "status", "s", "", "Filter by status")

	invoiceCmd.AddCommand(invoiceCreateCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceShowCmd)
	invoiceCmd.AddCommand(invoiceStatusCmd)
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.project(invProject)
	if err != nil {
		return err
	}

	clientID := p.ClientID
	if invClient != "" {
		c, err := a.tracker.Entities.FindClient(invClient)
		if err != nil {
			return err
		}
		clientID = c.ID
	}

	start, end := billing.MonthRange(a.tracker.Now())
	if invFrom != "" {
		if start, err = parseDate(invFrom); err != nil {
			return err
		}
	}
	if invTo != "" {
		if end, err = parseDate(invTo); err != nil {
			return err
		}
	}

	inv, err := a.tracker.Invoices.Generate(a.ctx, billing.GenerateParams{
		ClientID:  clientID,
		ProjectID: p.ID,
		StartDate: start,
		EndDate:   end,
		Notes:     invNotes,
	})
	if err := a.check(err); err != nil {
		return err
	}

	a.printf("✓ Created %s for %s: %d entries, %.2fh × %s = %s\n",
		inv.Number(), p.Name, len(inv.Entries), inv.TotalHours, a.money(inv.HourlyRate), a.money(inv.TotalAmount))
	if len(inv.Entries) == 0 {
		a.printf("  No time was tracked between %s and %s\n", start.Format(dateLayout), end.Format(dateLayout))
	}
	return nil
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	status := model.InvoiceStatus(strings.ToLower(invStatus))
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown status %q", invStatus)
	}

	var invoices []model.Invoice
	for _, inv := range a.tracker.Invoices.List() {
		if status == "" || inv.Status == status {
			invoices = append(invoices, inv)
		}
	}

	if len(invoices) == 0 {
		a.printf("No invoices found. Create one with: ironbill invoice create\n")
		return nil
	}

	a.printf("\n  %-10s  %-18s  %-18s  %-23s  %12s  %s\n", "Number", "Client", "Project", "Period", "Amount", "Status")
	a.printf("%s\n", strings.Repeat("─", 100))

	var outstanding float64
	for _, inv := range invoices {
		if inv.Status != model.InvoicePaid {
			outstanding += inv.TotalAmount
		}
		a.printf("  %-10s  %-18s  %-18s  %s → %s  %12s  %s\n",
			inv.Number(), truncate(a.clientName(inv.ClientID), 18), truncate(a.projectName(inv.ProjectID), 18),
			inv.StartDate.Local().Format(dateLayout), inv.EndDate.Local().Format(dateLayout),
			a.money(inv.TotalAmount), statusIcon(inv.Status))
	}

	a.printf("%s\n", strings.Repeat("─", 100))
	a.printf("  %d invoices, %s outstanding\n\n", len(invoices), a.money(outstanding))
	return nil
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	inv, err := a.tracker.Invoices.Find(args[0])
	if err != nil {
		return err
	}

	a.printf("\n🧾 %s  %s\n", inv.Number(), statusIcon(inv.Status))
	a.printf("   Client:  %s\n", a.clientName(inv.ClientID))
	a.printf("   Project: %s\n", a.projectName(inv.ProjectID))
	a.printf("   Period:  %s → %s\n", inv.StartDate.Local().Format(dateLayout), inv.EndDate.Local().Format(dateLayout))
	a.printf("   Created: %s\n", inv.CreatedAt.Local().Format("2006-01-02 15:04"))
	if inv.Notes != "" {
		a.printf("   Notes:   %s\n", inv.Notes)
	}

	if len(inv.Entries) > 0 {
		a.printf("\n   %-10s  %-11s  %8s  %s\n", "Date", "Time", "Hours", "Notes")
		for _, e := range inv.Entries {
			span := e.StartTime.Local().Format(clockLayout) + "-"
			if e.EndTime != nil {
				span += e.EndTime.Local().Format(clockLayout)
			}
			a.printf("   %-10s  %-11s  %8.2f  %s\n",
				e.StartTime.Local().Format(dateLayout), span, e.Hours(), truncate(e.Notes, 40))
		}
	}

	a.printf("\n   %.2fh × %s = %s\n\n", inv.TotalHours, a.money(inv.HourlyRate), a.money(inv.TotalAmount))
	return nil
}

func runInvoiceStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	inv, err := a.tracker.Invoices.Find(args[0])
	if err != nil {
		return err
	}

	inv, err = a.tracker.Invoices.UpdateStatus(a.ctx, inv.ID, model.InvoiceStatus(strings.ToLower(args[1])))
	if err := a.check(err); err != nil {
		return err
	}

	a.printf("✓ %s is now %s\n", inv.Number(), statusIcon(inv.Status))
	return nil
}

func statusIcon(s model.InvoiceStatus) string {
	switch s {
	case model.InvoiceDraft:
		return "📝 draft"
	case model.InvoiceSent:
		return "📤 sent"
	case model.InvoicePaid:
		return "✅ paid"
	case model.InvoiceOverdue:
		return "⏰ overdue"
	}
	return string(s)
}
