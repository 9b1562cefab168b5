package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/model"
	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients",
	Long:  `Create, list, edit and remove the clients you bill.`,
}

var clientAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a client",
	Long: `Add a client.

Examples:
  ironbill client add "Acme Corp" --email contact@acmecorp.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClientAdd,
}

var clientListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List clients",
	RunE:    runClientList,
}

var clientEditCmd = &cobra.Command{
	Use:   "edit [client]",
	Short: "Change a client's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientEdit,
}

var clientRmCmd = &cobra.Command{
	Use:     "rm [client]",
	Aliases: []string{"delete"},
	Short:   "Remove a client without projects",
	Args:    cobra.ExactArgs(1),
	RunE:    runClientRm,
}

var (
	clientName    string
	clientEmail   string
	clientPhone   string
	clientAddress string
	clientForce   bool
)

func init() {
	for _, c := range []*cobra.Command{clientAddCmd, clientEditCmd} {
		c.Flags().StringVar(&clientEmail, "email", "", "Email address")
		c.Flags().StringVar(&clientPhone, "phone", "", "Phone number")
		c.Flags().StringVar(&clientAddress, "address", "", "Postal address")
	}
	clientEditCmd.Flags().StringVar(&clientName, "name", "", "New name")
	clientRmCmd.Flags().BoolVarP(&clientForce, "force", "f", false, "Do not ask for confirmation")

	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientEditCmd)
	clientCmd.AddCommand(clientRmCmd)
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.tracker.Entities.AddClient(a.ctx, model.Client{
		Name:    strings.Join(args, " "),
		Email:   clientEmail,
		Phone:   clientPhone,
		Address: clientAddress,
	})
	if err := a.check(err); err != nil {
		return err
	}

	a.printf("✓ Added client: %s (id: %s)\n", c.Name, shortID(c.ID))
	return nil
}

func runClientList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	clients := a.tracker.Entities.ListClients()
	if len(clients) == 0 {
		a.printf("No clients yet. Add one with: ironbill client add \"Name\"\n")
		return nil
	}

	a.printf("\n  %-8s  %-24s  %-28s  %s\n", "ID", "Name", "Email", "Projects")
	a.printf("%s\n", strings.Repeat("─", 74))
	for _, c := range clients {
		n := len(a.tracker.Entities.ListProjectsByClient(c.ID))
		a.printf("  %-8s  %-24s  %-28s  %d\n", shortID(c.ID), truncate(c.Name, 24), truncate(c.Email, 28), n)
	}
	a.printf("%s\n  %d clients\n\n", strings.Repeat("─", 74), len(clients))
	return nil
}

func runClientEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.tracker.Entities.FindClient(args[0])
	if err != nil {
		return err
	}

	var patch billing.ClientPatch
	if cmd.Flags().Changed("name") {
		patch.Name = &clientName
	}
	if cmd.Flags().Changed("email") {
		patch.Email = &clientEmail
	}
	if cmd.Flags().Changed("phone") {
		patch.Phone = &clientPhone
	}
	if cmd.Flags().Changed("address") {
		patch.Address = &clientAddress
	}

	c, err = a.tracker.Entities.UpdateClient(a.ctx, c.ID, patch)
	if err := a.check(err); err != nil {
		return err
	}

	a.printf("✓ Updated client: %s\n", c.Name)
	return nil
}

func runClientRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.tracker.Entities.FindClient(args[0])
	if err != nil {
		return err
	}
	if !a.confirm(clientForce, "Delete client %s?", c.Name) {
		return nil
	}

	ok, err := a.tracker.Entities.DeleteClient(a.ctx, c.ID)
	if err := a.check(err); err != nil {
		return err
	}
	if !ok {
		n := len(a.tracker.Entities.ListProjectsByClient(c.ID))
		return fmt.Errorf("client %s still has %d project(s); remove them first", c.Name, n)
	}

	a.printf("🗑️  Deleted client: %s\n", c.Name)
	return nil
}
