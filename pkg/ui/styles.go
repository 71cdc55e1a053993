package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired with listing-status semantics
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Base colors
	ColorBg          = lipgloss.Color("#282A36")
	ColorBgHighlight = lipgloss.Color("#44475A")
	ColorText        = lipgloss.Color("#F8F8F2")
	ColorMuted       = lipgloss.Color("#6272A4")

	// Accent colors
	ColorPrimary = lipgloss.Color("#BD93F9")
	ColorInfo    = lipgloss.Color("#8BE9FD")
	ColorSuccess = lipgloss.Color("#50FA7B")
	ColorWarning = lipgloss.Color("#FFB86C")
	ColorDanger  = lipgloss.Color("#FF5555")
	ColorPink    = lipgloss.Color("#FF79C6")

	// Listing status colors
	ColorStatusAvailable = lipgloss.Color("#50FA7B")
	ColorStatusOnHold    = lipgloss.Color("#FFB86C")
	ColorStatusSold      = lipgloss.Color("#FF5555")
	ColorStatusArchived  = lipgloss.Color("#6272A4")

	// Status background colors (for badges)
	ColorStatusAvailableBg = lipgloss.Color("#1A3D2A")
	ColorStatusOnHoldBg    = lipgloss.Color("#3D2A1A")
	ColorStatusSoldBg      = lipgloss.Color("#3D1A1A")
	ColorStatusArchivedBg  = lipgloss.Color("#2A2A3D")
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// RenderStatusBadge returns a styled listing-status badge.
func RenderStatusBadge(status model.Status) string {
	var fg, bg lipgloss.Color
	var label string

	switch status {
	case model.StatusAvailable:
		fg, bg, label = ColorStatusAvailable, ColorStatusAvailableBg, "AVBL"
	case model.StatusOnHold:
		fg, bg, label = ColorStatusOnHold, ColorStatusOnHoldBg, "HOLD"
	case model.StatusSold:
		fg, bg, label = ColorStatusSold, ColorStatusSoldBg, "SOLD"
	case model.StatusArchived:
		fg, bg, label = ColorStatusArchived, ColorStatusArchivedBg, "ARCH"
	default:
		fg, bg, label = ColorMuted, ColorBgHighlight, "????"
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Render(label)
}

// CertificationColor maps a certification onto the palette by prestige:
// national designations pink, juyo-level purple, society papers cyan,
// everything unranked muted.
func CertificationColor(cert string) lipgloss.Color {
	rank, ok := facet.CertificationRank(facet.Canonical(cert))
	if !ok {
		return ColorMuted
	}
	switch {
	case rank <= 2:
		return ColorPink
	case rank <= 4:
		return ColorPrimary
	default:
		return ColorInfo
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// METRIC VISUALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// RenderMiniBar renders a mini horizontal bar for a value between 0 and 1
func RenderMiniBar(value float64, width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(t.Secondary).Render(bar)
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND TIME
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}

// FormatTimeRel formats a timestamp as a compact age for table columns:
// "now", "35m", "6h", "4d", "3w", then the month for anything older.
func FormatTimeRel(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	d := time.Since(ts)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return formatUnits(int(d.Minutes()), "m")
	case d < 24*time.Hour:
		return formatUnits(int(d.Hours()), "h")
	case d < 14*24*time.Hour:
		return formatUnits(int(d.Hours()/24), "d")
	case d < 90*24*time.Hour:
		return formatUnits(int(d.Hours()/(24*7)), "w")
	}
	return ts.Format("Jan 06")
}

func formatUnits(n int, unit string) string {
	if n < 1 {
		n = 1
	}
	return strconv.Itoa(n) + unit
}
