package tui

import "github.com/charmbracelet/lipgloss"

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06b6d4"))
	styleDimmed  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	stylePatient = lipgloss.NewStyle().Foreground(lipgloss.Color("#a855f7"))
	stylePartial = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#9ca3af"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))

	styleConnected    = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	styleConnecting   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	styleDisconnected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "connected":
		return styleConnected
	case "connecting":
		return styleConnecting
	default:
		return styleDisconnected
	}
}
