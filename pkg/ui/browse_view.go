package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/0raclide/nihontowatch-sub000/pkg/query"
	"github.com/0raclide/nihontowatch-sub000/pkg/stats"
	"github.com/0raclide/nihontowatch-sub000/pkg/window"
)

const sidebarWidth = 30

// View implements tea.Model.
func (m *BrowseModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}

	switch m.focus {
	case focusQuickView:
		return m.overlayScreen(m.quick.View())
	case focusPicker:
		return m.overlayScreen(m.picker.View())
	case focusAlert:
		return m.overlayScreen(m.alert.View())
	case focusHelp:
		return m.overlayScreen(m.help.View())
	}

	tableW := m.width - m.tableLeft()
	right := renderColumnHeader(tableW, m.theme) + "\n" + m.renderRows(tableW)

	var mainArea string
	if m.sidebarOpen {
		mainArea = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), right)
	} else {
		// No live tracks to hit while the sidebar is hidden.
		m.priceTrack, m.nagasaTrack = trackRect{}, trackRect{}
		mainArea = right
	}

	parts := []string{m.renderTitleBar(), m.renderSearchLine()}
	if m.alertBanner != nil {
		parts = append(parts, m.renderAlertBanner())
	}
	parts = append(parts, mainArea, m.renderStatusBar())
	return strings.Join(parts, "\n")
}

// overlayScreen centers an overlay on a blank screen, keeping the alert
// banner visible above the quick view.
func (m *BrowseModel) overlayScreen(body string) string {
	h := m.height
	var top string
	if m.alertBanner != nil && m.focus == focusQuickView {
		top = m.renderAlertBanner() + "\n"
		h--
	}
	return top + lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, body)
}

func (m *BrowseModel) renderTitleBar() string {
	t := m.theme
	name := t.Renderer.NewStyle().
		Foreground(ColorBg).
		Background(t.Primary).
		Bold(true).
		Padding(0, 1).
		Render("nihontowatch")

	count := humanize.Comma(int64(m.total))
	if m.truncated {
		count += "+"
	}
	left := name + t.Renderer.NewStyle().Foreground(t.Subtext).
		Render(fmt.Sprintf(" %s listings", count))
	if m.searching {
		left += " " + m.spin.View()
	}

	rightParts := []string{fmt.Sprintf("sort %s", sortLabel(m.sort))}
	if m.elapsedMs > 0 {
		rightParts = append(rightParts, fmt.Sprintf("%dms", m.elapsedMs))
	}
	right := t.Renderer.NewStyle().Foreground(t.Subtext).
		Render(strings.Join(rightParts, " · "))
	if m.updateTag != "" {
		right += t.Renderer.NewStyle().Foreground(t.Hold).Bold(true).
			Render(" · " + m.updateTag + " available")
	}

	return joinEdges(m.width, left, right)
}

func (m *BrowseModel) renderSearchLine() string {
	t := m.theme
	left := m.queryInput.View()

	var info []string
	if n := m.activeFilterCount(); n > 0 {
		info = append(info, strconv.Itoa(n)+" filters")
	}
	if m.filters.OpenOnly {
		info = append(info, "open only")
	}
	right := t.Renderer.NewStyle().Foreground(t.Accent).
		Render(strings.Join(info, " · "))
	return joinEdges(m.width, left, right)
}

func (m *BrowseModel) renderAlertBanner() string {
	ac := m.alertBanner
	text := fmt.Sprintf(" alert %q · %d of %d matches loaded · esc dismisses ",
		ac.SearchName, m.nav.Len(), ac.TotalMatches)
	return m.theme.Renderer.NewStyle().
		Foreground(ColorBg).
		Background(m.theme.Hold).
		Bold(true).
		Render(padLine(text, m.width))
}

// renderRows renders the visible slice of the listing table, padded to
// the viewport height.
func (m *BrowseModel) renderRows(tableW int) string {
	vh := m.tableHeight()
	t := m.theme

	if len(m.listings) == 0 {
		msg := "no listings match · c clears filters"
		if m.searching {
			msg = m.spin.View() + " searching..."
		} else if m.searchErr != "" {
			msg = t.Renderer.NewStyle().Foreground(t.Danger).
				Render("search failed: " + m.searchErr)
		}
		return lipgloss.Place(tableW, vh, lipgloss.Center, lipgloss.Center, msg)
	}

	w := window.Compute(window.Params{
		ScrollTop:      m.scrollTop,
		ViewportHeight: vh,
		ItemHeight:     1,
		ItemCount:      len(m.listings),
	})

	lines := make([]string, 0, vh)
	for i := w.Start; i < w.End; i++ {
		lines = append(lines, renderListingRow(m.listings[i], i == m.cursor, tableW, t))
	}
	if m.pager.Loading() && len(lines) < vh {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Subtext).
			Render("  loading more..."))
	}
	for len(lines) < vh {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderSidebar renders the filter column and records the slider track
// hit boxes for mouse routing.
func (m *BrowseModel) renderSidebar() string {
	t := m.theme
	w := sidebarWidth - 2
	trackW := w - 2
	focused := m.focus == focusFilters
	sidebarY := m.tableTop() - 1

	sub := t.Renderer.NewStyle().Foreground(t.Subtext)
	head := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	sel := t.Renderer.NewStyle().Foreground(t.Accent).Bold(true)

	var lines []string
	add := func(s string) {
		lines = append(lines, " "+padLine(s, w)+" ")
	}
	marker := func(row int) string {
		if focused && m.filterRow == row {
			return sel.Render("▸ ")
		}
		return "  "
	}

	add(head.Render("Filters"))
	for i, dim := range sidebarDims {
		count := "·"
		if s := m.filterSlice(dim); s != nil && len(*s) > 0 {
			count = strconv.Itoa(len(*s))
		}
		label := sidebarLabel(dim)
		gap := w - 2 - lipgloss.Width(label) - lipgloss.Width(count)
		if gap < 1 {
			gap = 1
		}
		add(marker(i) + label + strings.Repeat(" ", gap) + sub.Render(count))
	}

	add(RenderDivider(w))
	add(marker(rowPrice) + "Price  " +
		sub.Render(sliderRangeLabel(m.priceSlider, formatYenCompact)))
	add("  " + sparkline(m.priceHist, m.priceSlider.VisibleCount(), trackW, t))
	m.priceTrack = trackRect{x: 3, y: sidebarY + len(lines), w: trackW}
	add("  " + renderTrackLine(m.priceSlider, trackW, focused && m.filterRow == rowPrice, t))

	add(marker(rowNagasa) + "Nagasa " +
		sub.Render(sliderRangeLabel(m.nagasaSlider, formatCM)))
	add("  " + sparkline(m.nagasaHist, m.nagasaSlider.VisibleCount(), trackW, t))
	m.nagasaTrack = trackRect{x: 3, y: sidebarY + len(lines), w: trackW}
	add("  " + renderTrackLine(m.nagasaSlider, trackW, focused && m.filterRow == rowNagasa, t))

	add(RenderDivider(w))
	add(head.Render("Market"))
	for _, s := range m.statsLines() {
		add(sub.Render(s))
	}

	height := m.tableHeight() + 1
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", sidebarWidth))
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// statsLines summarizes the loaded rows for the sidebar market panel.
func (m *BrowseModel) statsLines() []string {
	if len(m.listings) == 0 {
		return []string{"no rows loaded"}
	}
	sum := stats.Summarize(m.listings)
	lines := []string{
		fmt.Sprintf("%d rows · %d open · %d sold", sum.Total, sum.Open, sum.Sold),
	}
	if sum.Price.Count > 0 {
		lines = append(lines,
			fmt.Sprintf("median %s · mean %s",
				formatYenCompact(sum.Price.Median), formatYenCompact(sum.Price.Mean)),
			fmt.Sprintf("IQR %s-%s",
				formatYenCompact(sum.Price.P25), formatYenCompact(sum.Price.P75)),
		)
	}
	if sum.Unpriced > 0 {
		lines = append(lines, fmt.Sprintf("%d price on ask", sum.Unpriced))
	}
	if sum.MeanNagasa > 0 {
		lines = append(lines, fmt.Sprintf("papered %d · mean %.1fcm", sum.Certified, sum.MeanNagasa))
	} else if sum.Certified > 0 {
		lines = append(lines, fmt.Sprintf("papered %d", sum.Certified))
	}
	return lines
}

func (m *BrowseModel) renderStatusBar() string {
	t := m.theme

	var left string
	switch {
	case m.statusMsg != "" && m.statusIsErr:
		left = t.Renderer.NewStyle().Foreground(t.Danger).Bold(true).Render(m.statusMsg)
	case m.statusMsg != "":
		left = t.Renderer.NewStyle().Foreground(t.Open).Render(m.statusMsg)
	default:
		left = t.Renderer.NewStyle().Foreground(t.Subtext).
			Render("j/k move · enter view · / search · tab filters · y share · ? help")
	}

	var right string
	if len(m.listings) > 0 {
		first := m.scrollTop + 1
		last := m.scrollTop + m.tableHeight()
		if last > len(m.listings) {
			last = len(m.listings)
		}
		right = t.Renderer.NewStyle().Foreground(t.Subtext).
			Render(fmt.Sprintf("%d-%d of %s", first, last, humanize.Comma(int64(m.total))))
	}
	return joinEdges(m.width, left, right)
}

func sortLabel(s string) string {
	switch s {
	case query.SortPriceAsc:
		return "price asc"
	case query.SortPriceDesc:
		return "price desc"
	case query.SortNagasaDesc:
		return "nagasa"
	default:
		return "newest"
	}
}

// joinEdges lays left and right out on one line of the given width. The
// right side is dropped when the line is too cramped to hold both.
func joinEdges(width int, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}
