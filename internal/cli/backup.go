package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/existflow/ironbill/internal/db"
	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/sync"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up your data to the server, end-to-end encrypted",
	Long: `Back up clients, projects, time entries, invoices and the running timer
to the backup server. Data is encrypted with a key derived from your
encryption password before it leaves this machine.`,
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload local data, replacing the server copy",
	Args:  cobra.NoArgs,
	RunE:  runBackupPush,
}

var backupPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download the server copy, replacing local data",
	Args:  cobra.NoArgs,
	RunE:  runBackupPull,
}

var backupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local and remote backup state",
	Args:  cobra.NoArgs,
	RunE:  runBackupStatus,
}

var backupConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or set the backup server",
	Long: `Show or set the backup server URL.

Examples:
  ironbill backup config
  ironbill backup config --server https://backup.example.com`,
	Args: cobra.NoArgs,
	RunE: runBackupConfig,
}

var backupKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Set up the encryption key",
	Long: `Set up the encryption key from a password. A fresh salt is generated unless
--salt is given; copy the salt printed here to other devices so they derive
the same key.

Examples:
  ironbill backup key
  ironbill backup key --salt 3q2+7w...==
  ironbill backup key --show`,
	Args: cobra.NoArgs,
	RunE: runBackupKey,
}

var (
	backupForce   bool
	backupServer  string
	backupKeySalt string
	backupKeyShow bool
)

func init() {
	backupPullCmd.Flags().BoolVarP(&backupForce, "force", "f", false, "Do not ask for confirmation")
	backupConfigCmd.Flags().StringVar(&backupServer, "server", "", "Backup server URL")
	backupKeyCmd.Flags().StringVar(&backupKeySalt, "salt", "", "Salt exported from another device")
	backupKeyCmd.Flags().BoolVar(&backupKeyShow, "show", false, "Show the current key fingerprint and salt")

	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupPullCmd)
	backupCmd.AddCommand(backupStatusCmd)
	backupCmd.AddCommand(backupConfigCmd)
	backupCmd.AddCommand(backupKeyCmd)
}

func runBackupPush(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := sync.NewClient()
	if err != nil {
		return err
	}
	if !client.IsLoggedIn() {
		return sync.ErrNotLoggedIn
	}

	crypto, err := client.GetCrypto(newPrompter(cmd).password("Encryption password: "))
	if err != nil {
		return err
	}

	a.printf("🔄 Pushing to %s...\n", client.Status().ServerURL)
	res, err := client.Push(a.ctx, a.db, crypto)
	if err != nil {
		return err
	}
	a.stamp(db.SettingLastPush)

	a.printf("✅ Pushed %d collections (%d bytes): %s\n", len(res.Collections), res.Bytes, strings.Join(res.Collections, ", "))
	return nil
}

func runBackupPull(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := sync.NewClient()
	if err != nil {
		return err
	}
	if !client.IsLoggedIn() {
		return sync.ErrNotLoggedIn
	}

	p := newPrompter(cmd)
	crypto, err := client.GetCrypto(p.password("Encryption password: "))
	if err != nil {
		return err
	}

	if !backupForce && a.cfg.ConfirmDelete {
		if strings.ToLower(p.line("Local data will be replaced by the server copy. Continue? (y/N): ")) != "y" {
			a.printf("Aborted.\n")
			return nil
		}
	}

	a.printf("🔄 Pulling from %s...\n", client.Status().ServerURL)
	res, err := client.Pull(a.ctx, a.db, crypto)
	if err != nil {
		return err
	}
	a.stamp(db.SettingLastPull)

	a.tracker.Reload(a.ctx)
	for _, w := range a.tracker.Warnings() {
		a.warn(w)
	}

	a.printf("✅ Pulled %d collections (%d bytes): %s\n", len(res.Collections), res.Bytes, strings.Join(res.Collections, ", "))
	a.printf("   %d clients, %d projects, %d entries, %d invoices\n",
		len(a.tracker.Entities.ListClients()), len(a.tracker.Entities.ListProjects()),
		len(a.tracker.Entries.List()), len(a.tracker.Invoices.List()))
	return nil
}

func runBackupStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := sync.NewClient()
	if err != nil {
		return err
	}
	s := client.Status()

	a.printf("Server:     %s\n", s.ServerURL)
	if s.LoggedIn {
		a.printf("Account:    %s\n", s.Username)
	} else {
		a.printf("Account:    not logged in\n")
	}
	if s.HasKey {
		a.printf("Key:        %s\n", client.GetEncryptionKey())
	} else {
		a.printf("Key:        not set (run 'ironbill backup key')\n")
	}
	a.printf("Last push:  %s\n", a.setting(db.SettingLastPush))
	a.printf("Last pull:  %s\n", a.setting(db.SettingLastPull))

	local, err := a.db.Collections(a.ctx)
	if err != nil {
		return err
	}
	a.printf("\n  %-10s  %8s  %8s  %s\n", "Local", "Version", "Bytes", "Updated")
	for _, c := range local {
		a.printf("  %-10s  %8d  %8d  %s\n", c.Collection, c.Version, c.Size, c.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	if !s.LoggedIn {
		return nil
	}
	remote, err := client.Remote(a.ctx)
	if err != nil {
		a.warn(err)
		return nil
	}
	a.printf("\n  %-10s  %8s  %s\n", "Remote", "Version", "Updated")
	for _, r := range remote {
		a.printf("  %-10s  %8d  %s\n", r.Collection, r.Version, r.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runBackupConfig(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient()
	if err != nil {
		return err
	}
	if backupServer == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Server: %s\n", client.Status().ServerURL)
		return nil
	}
	if err := client.SetServer(backupServer); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Backup server set to %s\n", client.Status().ServerURL)
	return nil
}

func runBackupKey(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if backupKeyShow {
		if client.Salt() == "" {
			fmt.Fprintln(out, "No encryption key configured.")
			return nil
		}
		fmt.Fprintf(out, "Fingerprint: %s\nSalt:        %s\n", client.GetEncryptionKey(), client.Salt())
		return nil
	}

	p := newPrompter(cmd)
	password := p.password("Encryption password: ")
	if len(password) < 8 {
		return fmt.Errorf("encryption password must be at least 8 characters")
	}
	if backupKeySalt == "" && p.password("Confirm password: ") != password {
		return fmt.Errorf("passwords do not match")
	}

	var fingerprint string
	if backupKeySalt != "" {
		fingerprint, err = client.SetEncryptionKey(password, backupKeySalt)
	} else {
		fingerprint, err = client.GenerateEncryptionKey(password)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "🔑 Encryption key set\nFingerprint: %s\nSalt:        %s\n", fingerprint, client.Salt())
	if backupKeySalt == "" {
		fmt.Fprintln(out, "Use 'ironbill backup key --salt <salt>' with the same password on other devices.")
	}
	return nil
}

// stamp records the current time under key
func (a *app) stamp(key string) {
	if err := a.db.SetSetting(a.ctx, key, time.Now().Format(time.RFC3339)); err != nil {
		logger.Warn("Failed to record backup time", logger.F("key", key), logger.F("error", err))
	}
}

func (a *app) setting(key string) string {
	v, _ := a.db.GetSetting(a.ctx, key)
	if v == "" {
		return "never"
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Local().Format("2006-01-02 15:04")
	}
	return v
}
