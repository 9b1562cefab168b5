package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/ironbill/internal/billing"
)

const sidebarWidth = 26

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	pane := m.renderMain()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, pane)

	if m.mode == ModeNotes {
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) renderSidebar() string {
	var s string
	rule := lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", sidebarWidth-4))

	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("IronBill") + "\n"
	s += HelpStyle.Render(m.tracker.Now().Format("Mon Jan 2 15:04")) + "\n"
	s += rule + "\n\n"

	if len(m.projects) == 0 {
		s += HelpStyle.Render("No projects yet") + "\n"
	}

	active := m.tracker.Timer.Active()
	for i, p := range m.projects {
		cursor := "  "
		style := ItemStyle
		if i == m.projCursor {
			cursor = "❯ "
			if m.pane == PaneSidebar {
				style = ItemSelectedStyle
			}
		}
		marker := " "
		if active != nil && active.ProjectID == p.ID {
			marker = "⏱"
		}

		line := fmt.Sprintf("%s%s %-12s %s", cursor, FormatProjectStatus(p.Status), truncate(p.Name, 12), marker)
		s += style.Render(line) + "\n"
		s += HelpStyle.Render(fmt.Sprintf("     %s/h", m.cfg.FormatMoney(p.HourlyRate))) + "\n"
	}

	total := m.tracker.Summarize(billing.ReportFilter{})
	s += "\n" + rule + "\n"
	s += HelpStyle.Render(fmt.Sprintf("All time %.1fh", total.TotalHours)) + "\n"
	s += HelpStyle.Render(m.cfg.FormatMoney(total.TotalEarnings))

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(s)
}

func (m Model) renderMain() string {
	width := m.width - sidebarWidth - 2
	var s string

	s += m.renderTimer(width-4) + "\n\n"
	if m.showInvoices {
		s += m.renderInvoices(width - 4)
	} else {
		s += m.renderEntries(width - 4)
	}

	return MainStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderTimer(width int) string {
	state := m.tracker.Timer.State()
	a := m.tracker.Timer.Active()

	color := Idle
	label := "IDLE"
	switch state {
	case billing.TimerRunning:
		color, label = Running, "RUNNING"
	case billing.TimerPaused:
		color, label = Paused, "PAUSED"
	}

	clock := ClockStyle.Foreground(color).Render(formatClock(m.tracker.Timer.Elapsed()))
	head := lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)

	var body string
	if a == nil {
		body = fmt.Sprintf("%s  %s\n%s", head, clock, HelpStyle.Render("Select an active project and press 's' to start"))
	} else {
		body = fmt.Sprintf("%s  %s  %s", head, clock, m.projectName(a.ProjectID))
		if a.Notes != "" {
			body += "\n" + HelpStyle.Render(truncate(a.Notes, width-6))
		}
	}

	return TimerStyle.BorderForeground(color).Width(width).Render(body)
}

func (m Model) renderEntries(width int) string {
	var s string

	proj := m.currentProject()
	if proj == nil {
		return HelpStyle.Render("No project selected")
	}

	var seconds int64
	for _, e := range m.entries {
		seconds += e.Duration
	}
	header := fmt.Sprintf("%s  %d entries, %s", proj.Name, len(m.entries), formatHours(seconds))
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(header) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width)) + "\n"

	if len(m.entries) == 0 {
		s += HelpStyle.Render("  No time tracked yet.")
	}

	for i, e := range m.entries {
		cursor := "  "
		style := ItemStyle
		if i == m.listCursor && m.pane == PaneMain {
			cursor = "❯ "
			style = ItemSelectedStyle
		}

		span := e.StartTime.Local().Format("15:04") + "-"
		if e.EndTime != nil {
			span += e.EndTime.Local().Format("15:04")
		}
		line := fmt.Sprintf("%s%s  %s  %7s  %s",
			cursor, e.StartTime.Local().Format("2006-01-02"), span, formatHours(e.Duration), truncate(e.Notes, width-44))
		s += style.Render(line) + "\n"
	}

	return s
}

func (m Model) renderInvoices(width int) string {
	var s string

	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(fmt.Sprintf("Invoices (%d)", len(m.invoices))) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width)) + "\n"

	if len(m.invoices) == 0 {
		s += HelpStyle.Render("  No invoices. Create one with 'ironbill invoice create'.")
	}

	for i, inv := range m.invoices {
		cursor := "  "
		style := ItemStyle
		if i == m.listCursor && m.pane == PaneMain {
			cursor = "❯ "
			style = ItemSelectedStyle
		}

		line := fmt.Sprintf("%s%-10s  %-16s  %s → %s  %12s  ",
			cursor, inv.Number(), truncate(m.projectName(inv.ProjectID), 16),
			inv.StartDate.Local().Format("2006-01-02"), inv.EndDate.Local().Format("2006-01-02"),
			m.cfg.FormatMoney(inv.TotalAmount))
		s += style.Render(line) + InvoiceStatusStyle(inv.Status).Render(string(inv.Status)) + "\n"
	}

	return s
}

func (m Model) renderStatusBar() string {
	help := "s:start  space:pause  x:stop  n:notes  i:invoices  c:status  ?:help  q:quit"
	if m.message != "" {
		help = m.message
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	title := "Timer notes"
	if a := m.tracker.Timer.Active(); a != nil {
		title = fmt.Sprintf("Notes for: %s", m.projectName(a.ProjectID))
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  h/l    Switch pane      │
│  Tab    Switch pane      │
│                          │
│  Timer                   │
│  ─────                   │
│  s       Start           │
│  space   Pause/resume    │
│  x       Stop            │
│  n       Edit notes      │
│                          │
│  Invoices                │
│  ────────                │
│  i       Toggle view     │
│  c       Cycle status    │
│                          │
│  Other                   │
│  ─────                   │
│  ?       Toggle help     │
│  q       Quit            │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}
