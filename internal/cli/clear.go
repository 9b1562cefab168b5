package cli

import (
	"fmt"

	"github.com/existflow/ironbill/internal/sync"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all billing data",
	Long: `Clear clients, projects, time entries, invoices and the timer from the local
database or/and the backup server.
By default, it only clears the local database unless --remote or --all is specified.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

var (
	clearLocal  bool
	clearRemote bool
	clearAll    bool
	clearForce  bool
)

func init() {
	clearCmd.Flags().BoolVar(&clearLocal, "local", true, "Clear local data (default)")
	clearCmd.Flags().BoolVar(&clearRemote, "remote", false, "Clear remote data on the backup server")
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "Clear both local and remote data")
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	local, remote := clearLocal, clearRemote
	if clearAll {
		local, remote = true, true
	} else if remote && !cmd.Flags().Changed("local") {
		local = false
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.confirm(clearForce, "Are you sure you want to clear data?") {
		return nil
	}

	if local {
		a.printf("🧹 Clearing local data...\n")
		if err := a.db.Clear(a.ctx); err != nil {
			return fmt.Errorf("failed to clear local data: %w", err)
		}
		_ = a.clearContext()
		a.printf("Local data cleared.\n")
	}

	if remote {
		client, err := sync.NewClient()
		if err != nil {
			return err
		}
		if !client.IsLoggedIn() {
			a.printf("Skipping remote clear: not logged in.\n")
			return nil
		}
		a.printf("🌐 Clearing remote data...\n")
		if err := client.ClearRemote(a.ctx); err != nil {
			return fmt.Errorf("failed to clear remote data: %w", err)
		}
		a.printf("Remote data cleared.\n")
	}

	return nil
}
