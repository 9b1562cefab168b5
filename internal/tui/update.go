package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/logger"
)

// tickMsg is sent every second to refresh the elapsed time
type tickMsg time.Time

// Init initializes the model with a tick command
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// The clock is redrawn from Timer.Elapsed on every render
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeNotes:
			return m.updateInput(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneSidebar {
			m.pane = PaneMain
		} else {
			m.pane = PaneSidebar
		}

	case key.Matches(msg, keys.Left):
		m.pane = PaneSidebar

	case key.Matches(msg, keys.Right):
		m.pane = PaneMain

	case key.Matches(msg, keys.Up):
		m.handleUp()

	case key.Matches(msg, keys.Down):
		m.handleDown()

	case key.Matches(msg, keys.Start):
		m.handleStart()

	case key.Matches(msg, keys.Pause):
		m.handlePause()

	case key.Matches(msg, keys.Stop):
		m.handleStop()

	case key.Matches(msg, keys.Notes):
		return m.startNotes()

	case key.Matches(msg, keys.Invoices):
		m.showInvoices = !m.showInvoices
		m.listCursor = 0
		m.pane = PaneMain

	case key.Matches(msg, keys.Cycle):
		m.handleCycleStatus()

	case key.Matches(msg, keys.Escape):
		m.message = ""

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) handleUp() {
	if m.pane == PaneSidebar {
		if m.projCursor > 0 {
			m.projCursor--
			m.listCursor = 0
			m.loadData()
		}
	} else if m.listCursor > 0 {
		m.listCursor--
	}
}

func (m *Model) handleDown() {
	if m.pane == PaneSidebar {
		if m.projCursor < len(m.projects)-1 {
			m.projCursor++
			m.listCursor = 0
			m.loadData()
		}
	} else if m.listCursor < m.listLen()-1 {
		m.listCursor++
	}
}

func (m *Model) handleStart() {
	p := m.currentProject()
	if p == nil {
		m.message = "No project selected. Create one with 'ironbill project new'"
		return
	}
	if !p.IsActive() {
		m.message = fmt.Sprintf("%s is %s, only active projects can be timed", p.Name, p.Status)
		return
	}

	_, err := m.tracker.Timer.Start(m.ctx, p.ID)
	m.report(err, "▶ Started "+p.Name)
}

func (m *Model) handlePause() {
	switch m.tracker.Timer.State() {
	case billing.TimerRunning:
		_, err := m.tracker.Timer.Pause(m.ctx)
		m.report(err, "⏸ Paused at "+formatClock(m.tracker.Timer.Elapsed()))
	case billing.TimerPaused:
		_, err := m.tracker.Timer.Resume(m.ctx)
		m.report(err, "▶ Resumed")
	default:
		m.message = "No timer running. Press 's' to start"
	}
}

func (m *Model) handleStop() {
	entry, err := m.tracker.Timer.Stop(m.ctx)
	if errors.Is(err, billing.ErrInvalidState) {
		m.message = "No timer running"
		return
	}
	m.report(err, fmt.Sprintf("■ Stopped: %s on %s", formatHours(entry.Duration), m.projectName(entry.ProjectID)))
	m.loadData()
}

func (m *Model) handleCycleStatus() {
	inv := m.currentInvoice()
	if inv == nil {
		if !m.showInvoices {
			m.message = "Press 'i' to show invoices first"
		}
		return
	}

	updated, err := m.tracker.Invoices.UpdateStatus(m.ctx, inv.ID, inv.Status.Next())
	m.report(err, fmt.Sprintf("%s is now %s", updated.Number(), updated.Status))
	m.loadData()
}

func (m Model) startNotes() (tea.Model, tea.Cmd) {
	a := m.tracker.Timer.Active()
	if a == nil {
		m.message = "Start a timer before adding notes"
		return m, nil
	}

	m.mode = ModeNotes
	m.input.SetValue(a.Notes)
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		m.report(m.tracker.Timer.SetNotes(m.ctx, m.input.Value()), "Notes saved")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// report shows the outcome of an action in the status bar. A persistence
// warning still counts as done.
func (m *Model) report(err error, done string) {
	switch {
	case err == nil:
		m.message = done
	case billing.IsWarning(err):
		logger.Warn("TUI action not saved", logger.F("error", err))
		m.message = done + " (⚠ " + err.Error() + ")"
	default:
		m.message = "Error: " + err.Error()
	}
}
