package ui

import "github.com/charmbracelet/lipgloss"

// Theme carries the renderer and palette threaded through every view.
// One theme is built at startup; headless tests construct their own
// with a plain renderer.
type Theme struct {
	Renderer *lipgloss.Renderer
	Base     lipgloss.Style

	Primary   lipgloss.AdaptiveColor // headings, selection
	Secondary lipgloss.AdaptiveColor // section labels
	Subtext   lipgloss.AdaptiveColor // de-emphasized text
	Border    lipgloss.AdaptiveColor

	Open   lipgloss.AdaptiveColor // available listings
	Hold   lipgloss.AdaptiveColor // on-hold listings
	Sold   lipgloss.AdaptiveColor
	Accent lipgloss.AdaptiveColor // prices, active filters
	Danger lipgloss.AdaptiveColor
}

// DefaultTheme returns the standard palette bound to the given renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Renderer:  r,
		Base:      r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#282A36", Dark: "#F8F8F2"}),
		Primary:   lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#4C566A", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#44475A"},
		Open:      lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#50FA7B"},
		Hold:      lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FFB86C"},
		Sold:      lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF5555"},
		Accent:    lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#8BE9FD"},
		Danger:    lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF5555"},
	}
}
