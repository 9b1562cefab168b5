package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/ironbill/internal/model"
)

// Color palette based on TUI design
var (
	// Timer colors
	Running = lipgloss.Color("#95E1A3") // Green
	Paused  = lipgloss.Color("#FFE66D") // Yellow
	Idle    = lipgloss.Color("#6C757D") // Gray

	// Invoice status colors
	Draft   = lipgloss.Color("#888888")
	Sent    = lipgloss.Color("#4ECDC4")
	Paid    = lipgloss.Color("#95E1A3")
	Overdue = lipgloss.Color("#FF6B6B")

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Warning   = lipgloss.Color("#FFB347")
)

// Styles
var (
	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			Width(20).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Main pane
	MainStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Timer header
	TimerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	ClockStyle = lipgloss.NewStyle().
			Bold(true)

	// List items
	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	ItemMutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// InvoiceStatusStyle returns the style for an invoice status
func InvoiceStatusStyle(s model.InvoiceStatus) lipgloss.Style {
	switch s {
	case model.InvoiceSent:
		return lipgloss.NewStyle().Foreground(Sent)
	case model.InvoicePaid:
		return lipgloss.NewStyle().Foreground(Paid)
	case model.InvoiceOverdue:
		return lipgloss.NewStyle().Foreground(Overdue).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(Draft)
	}
}

// FormatProjectStatus returns a short badge for a project status
func FormatProjectStatus(s model.ProjectStatus) string {
	switch s {
	case model.ProjectActive:
		return lipgloss.NewStyle().Foreground(Running).Render("●")
	case model.ProjectOnHold:
		return lipgloss.NewStyle().Foreground(Paused).Render("◐")
	default:
		return lipgloss.NewStyle().Foreground(Idle).Render("○")
	}
}
