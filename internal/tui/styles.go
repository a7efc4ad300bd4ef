package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/taskcentral/internal/view"
)

type styles struct {
	page    lipgloss.Style
	title   lipgloss.Style
	card    lipgloss.Style
	form    lipgloss.Style
	focus   lipgloss.Style
	dialog  lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

// newStyles тема применяется ко всей странице
func newStyles(theme string) styles {
	fg, bg, accent := lipgloss.Color("#222222"), lipgloss.Color("#fafafa"), lipgloss.Color("#3b6ea5")
	if theme == view.ThemeDark {
		fg, bg, accent = lipgloss.Color("#e6e6e6"), lipgloss.Color("#1e1e1e"), lipgloss.Color("#8ab4f8")
	}

	return styles{
		page:    lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(1, 2),
		title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		card:    lipgloss.NewStyle().Foreground(lipgloss.Color("#222222")).Padding(0, 1),
		form:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		focus:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		dialog:  lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#c0392b")).Padding(0, 2),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#2e7d32")).Bold(true),
		muted:   lipgloss.NewStyle().Faint(true),
	}
}
