package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/config"
	"github.com/existflow/ironbill/internal/db"
	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/model"
	"github.com/spf13/cobra"
)

// app bundles what a command needs: the database and the tracker loaded from it
type app struct {
	ctx     context.Context
	db      *db.DB
	tracker *billing.Tracker
	cfg     *config.Config
	out     io.Writer
	in      io.Reader
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg := appConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	path := cfg.DBPath
	if path == "" {
		var err error
		if path, err = db.DefaultDBPath(); err != nil {
			return nil, err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		logger.Error("Failed to open database", logger.F("error", err), logger.F("path", path))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &app{
		ctx: cmd.Context(),
		db:  database,
		cfg: cfg,
		out: cmd.OutOrStdout(),
		in:  cmd.InOrStdin(),
	}
	a.tracker = billing.Open(a.ctx, database)
	for _, w := range a.tracker.Warnings() {
		a.warn(w)
	}
	return a, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) warn(err error) {
	a.printf("⚠️  %v\n", err)
}

// check prints a persistence warning and swallows it; other errors pass through
func (a *app) check(err error) error {
	if billing.IsWarning(err) {
		a.warn(err)
		return nil
	}
	return err
}

func (a *app) money(v float64) string {
	return a.cfg.FormatMoney(v)
}

// confirm asks a yes/no question unless force is set or confirmations are off
func (a *app) confirm(force bool, format string, args ...interface{}) bool {
	if force || !a.cfg.ConfirmDelete {
		return true
	}
	a.printf(format+" (y/N): ", args...)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	if strings.ToLower(strings.TrimSpace(line)) != "y" {
		a.printf("Aborted.\n")
		return false
	}
	return true
}

// currentProject returns the project id stored as the default context
func (a *app) currentProject() string {
	id, err := a.db.GetSetting(a.ctx, db.SettingCurrentProject)
	if err != nil {
		logger.Warn("Failed to read context", logger.F("error", err))
	}
	return id
}

// project resolves ref, falling back to the current context when ref is empty
func (a *app) project(ref string) (model.Project, error) {
	if ref == "" {
		ref = a.currentProject()
		if ref == "" {
			return model.Project{}, fmt.Errorf("no project given and no context set (see 'ironbill context set')")
		}
	}
	return a.tracker.Entities.FindProject(ref)
}

func (a *app) projectName(id string) string {
	if p, err := a.tracker.Entities.GetProject(id); err == nil {
		return p.Name
	}
	return "Unknown Project"
}

func (a *app) clientName(id string) string {
	if c, err := a.tracker.Entities.GetClient(id); err == nil {
		return c.Name
	}
	return "Unknown Client"
}
