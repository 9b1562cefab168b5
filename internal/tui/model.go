package tui

import (
	"context"
	"sort"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/config"
	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/model"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneMain
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeNotes
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	ctx     context.Context
	tracker *billing.Tracker
	cfg     *config.Config

	projects []model.Project
	entries  []model.TimeEntry // selected project, newest first
	invoices []model.Invoice

	// UI state
	width        int
	height       int
	pane         Pane
	mode         Mode
	projCursor   int
	listCursor   int
	showInvoices bool

	// Input
	input textinput.Model

	message string
}

// NewModel creates a new TUI model over tracker
func NewModel(ctx context.Context, tracker *billing.Tracker, cfg *config.Config) Model {
	logger.Info("Initializing TUI model")

	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	ti := textinput.New()
	ti.Placeholder = "What are you working on?"
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		ctx:     ctx,
		tracker: tracker,
		cfg:     cfg,
		pane:    PaneSidebar,
		mode:    ModeNormal,
		input:   ti,
	}

	m.loadData()

	// Select the project of a running session
	if a := tracker.Timer.Active(); a != nil {
		for i, p := range m.projects {
			if p.ID == a.ProjectID {
				m.projCursor = i
				m.loadData()
				break
			}
		}
	}

	logger.Debug("TUI model initialized",
		logger.F("projects", len(m.projects)),
		logger.F("invoices", len(m.invoices)))
	return m
}

func (m *Model) loadData() {
	m.projects = m.tracker.Entities.ListProjects()

	// Active projects first, then by name
	rank := map[model.ProjectStatus]int{model.ProjectActive: 0, model.ProjectOnHold: 1, model.ProjectCompleted: 2}
	sort.SliceStable(m.projects, func(i, j int) bool {
		ri, rj := rank[m.projects[i].Status], rank[m.projects[j].Status]
		if ri != rj {
			return ri < rj
		}
		return m.projects[i].Name < m.projects[j].Name
	})

	if m.projCursor >= len(m.projects) {
		m.projCursor = 0
	}

	m.entries = nil
	if p := m.currentProject(); p != nil {
		m.entries = m.tracker.Entries.ListByProject(p.ID)
		for i, j := 0, len(m.entries)-1; i < j; i, j = i+1, j-1 {
			m.entries[i], m.entries[j] = m.entries[j], m.entries[i]
		}
	}
	m.invoices = m.tracker.Invoices.List()

	if n := m.listLen(); m.listCursor >= n {
		m.listCursor = max(n-1, 0)
	}
}

func (m *Model) listLen() int {
	if m.showInvoices {
		return len(m.invoices)
	}
	return len(m.entries)
}

func (m *Model) currentProject() *model.Project {
	if m.projCursor < len(m.projects) {
		return &m.projects[m.projCursor]
	}
	return nil
}

func (m *Model) currentInvoice() *model.Invoice {
	if m.showInvoices && m.listCursor < len(m.invoices) {
		return &m.invoices[m.listCursor]
	}
	return nil
}

func (m *Model) projectName(id string) string {
	if p, err := m.tracker.Entities.GetProject(id); err == nil {
		return p.Name
	}
	return "Unknown Project"
}
