package cli

import (
	"fmt"

	"github.com/existflow/ironbill/internal/sync"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage your account on the backup server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the backup server",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the backup server",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the backup server",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the logged in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var authUsername string

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVarP(&authUsername, "username", "u", "", "Account username")
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient()
	if err != nil {
		return err
	}
	p := newPrompter(cmd)

	username := authUsername
	if username == "" {
		username = p.line("Username: ")
	}
	password := p.password("Password: ")
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Logging in...")
	if err := client.Login(cmd.Context(), username, password); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient()
	if err != nil {
		return err
	}

	if !client.IsLoggedIn() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Logging out...")
	if err := client.Logout(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient()
	if err != nil {
		return err
	}
	p := newPrompter(cmd)

	username := p.line("Username: ")
	email := p.line("Email: ")
	password := p.password("Password: ")
	confirm := p.password("Confirm Password: ")

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Creating account...")
	if err := client.Register(cmd.Context(), username, email, password); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Account created and logged in!")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient()
	if err != nil {
		return err
	}

	s := client.Status()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Server: %s\n", s.ServerURL)
	if !s.LoggedIn {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(out, "User:   %s (%s)\n", s.Username, s.UserID)
	return nil
}
