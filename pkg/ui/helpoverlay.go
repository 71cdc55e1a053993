package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlayModel shows keyboard shortcuts help
type HelpOverlayModel struct {
	visible bool
	width   int
	height  int
	theme   Theme
}

// NewHelpOverlayModel creates a new help overlay
func NewHelpOverlayModel(theme Theme) HelpOverlayModel {
	return HelpOverlayModel{
		theme: theme,
	}
}

// Show makes the help overlay visible
func (m *HelpOverlayModel) Show() {
	m.visible = true
}

// Hide makes the help overlay invisible
func (m *HelpOverlayModel) Hide() {
	m.visible = false
}

// Toggle toggles visibility
func (m *HelpOverlayModel) Toggle() {
	m.visible = !m.visible
}

// IsVisible returns true if overlay is showing
func (m HelpOverlayModel) IsVisible() bool {
	return m.visible
}

// SetSize sets dimensions
func (m *HelpOverlayModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles input
func (m HelpOverlayModel) Update(msg tea.Msg) (HelpOverlayModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg.(type) {
	case tea.KeyMsg:
		// Any key closes help
		m.visible = false
	}

	return m, nil
}

// View renders the help overlay
func (m HelpOverlayModel) View() string {
	if !m.visible {
		return ""
	}

	var b strings.Builder

	titleStyle := m.theme.Renderer.NewStyle().
		Bold(true).
		Foreground(m.theme.Primary).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("nihontowatch help"))
	b.WriteString("\n\n")

	sectionStyle := m.theme.Renderer.NewStyle().Bold(true).Foreground(m.theme.Secondary)
	keyStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.Primary).Width(12)
	descStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.Subtext)

	// Navigation section
	b.WriteString(sectionStyle.Render("NAVIGATION") + "\n")
	shortcuts := []struct{ key, desc string }{
		{"j/↓", "Move down"},
		{"k/↑", "Move up"},
		{"g", "Go to top"},
		{"G", "Go to bottom"},
		{"ctrl+d/u", "Half page down / up"},
		{"Enter", "Open quick view"},
		{"Tab", "Focus filter sidebar"},
	}
	for _, s := range shortcuts {
		b.WriteString("  " + keyStyle.Render(s.key) + descStyle.Render(s.desc) + "\n")
	}
	b.WriteString("\n")

	// Search and filters section
	b.WriteString(sectionStyle.Render("SEARCH & FILTERS") + "\n")
	filters := []struct{ key, desc string }{
		{"/", "Search as you type"},
		{"s", "Cycle sort order"},
		{"o", "Toggle open listings only"},
		{"Space/Enter", "Pick facet values (in sidebar)"},
		{"h/l, H/L", "Nudge slider handles (in sidebar)"},
		{"x", "Clear filter under cursor"},
		{"c", "Clear all filters"},
	}
	for _, f := range filters {
		b.WriteString("  " + keyStyle.Render(f.key) + descStyle.Render(f.desc) + "\n")
	}
	b.WriteString("\n")

	// Quick view section
	b.WriteString(sectionStyle.Render("QUICK VIEW") + "\n")
	quick := []struct{ key, desc string }{
		{"n/p", "Next / previous listing"},
		{"r", "Refresh detail"},
		{"o", "Open dealer page"},
		{"y", "Copy share link"},
		{"Esc", "Close"},
	}
	for _, q := range quick {
		b.WriteString("  " + keyStyle.Render(q.key) + descStyle.Render(q.desc) + "\n")
	}
	b.WriteString("\n")

	// Actions section
	b.WriteString(sectionStyle.Render("ACTIONS") + "\n")
	actions := []struct{ key, desc string }{
		{"y", "Copy share link"},
		{"a", "Save search as alert"},
		{"E", "Export snapshot card"},
		{"U", "Open release page when an update is shown"},
		{"r", "Re-run search"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}
	for _, a := range actions {
		b.WriteString("  " + keyStyle.Render(a.key) + descStyle.Render(a.desc) + "\n")
	}

	b.WriteString("\n")
	hintStyle := m.theme.Renderer.NewStyle().Faint(true).Italic(true)
	b.WriteString(hintStyle.Render("[Press any key to close]"))

	// Wrap in box
	boxStyle := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(1, 2)

	return boxStyle.Render(b.String())
}
