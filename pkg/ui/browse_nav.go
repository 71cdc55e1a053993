package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/0raclide/nihontowatch-sub000/pkg/export"
	"github.com/0raclide/nihontowatch-sub000/pkg/gesture"
	"github.com/0raclide/nihontowatch-sub000/pkg/query"
	"github.com/0raclide/nihontowatch-sub000/pkg/stats"
	"github.com/0raclide/nihontowatch-sub000/pkg/window"
)

// handleResultsKey handles keys while the listing table owns focus.
func (m *BrowseModel) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, m.quit()
	case "j", "down":
		return m, m.cursorTo(m.cursor + 1)
	case "k", "up":
		return m, m.cursorTo(m.cursor - 1)
	case "g", "home":
		return m, m.cursorTo(0)
	case "G", "end":
		return m, m.cursorTo(len(m.listings) - 1)
	case "ctrl+d", "pgdown":
		return m, m.cursorTo(m.cursor + m.tableHeight()/2)
	case "ctrl+u", "pgup":
		return m, m.cursorTo(m.cursor - m.tableHeight()/2)
	case "enter", "l":
		return m, m.openQuickViewAt(m.cursor)
	case "/":
		m.focus = focusSearch
		m.queryInput.Focus()
		return m, textinput.Blink
	case "f":
		m.sidebarOpen = !m.sidebarOpen
		return m, nil
	case "tab":
		if m.sidebarOpen {
			m.focus = focusFilters
		}
		return m, nil
	case "s":
		m.cycleSort()
		return m, m.applyFilters()
	case "o":
		m.filters.OpenOnly = !m.filters.OpenOnly
		return m, m.applyFilters()
	case "c":
		return m, m.clearFilters()
	case "y":
		return m, m.copyShareLink()
	case "a":
		return m, m.openAlertForm()
	case "E":
		return m, m.exportCard()
	case "U":
		if m.updateURL == "" {
			return m, m.setStatus("no update available", true)
		}
		return m, openURLCmd(m.updateURL)
	case "r":
		return m, m.newSearch()
	case "?":
		m.help.Show()
		m.focus = focusHelp
		return m, nil
	}
	return m, nil
}

// cursorTo moves the cursor with clamping, keeps it on screen and
// requests the next page when it runs near the loaded edge.
func (m *BrowseModel) cursorTo(idx int) tea.Cmd {
	if len(m.listings) == 0 {
		m.cursor = 0
		return nil
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.listings)-1 {
		idx = len(m.listings) - 1
	}
	m.cursor = idx
	m.ensureVisible()
	return m.maybeRequestPage()
}

// ensureVisible scrolls so the cursor stays scrolloff rows clear of the
// viewport edges.
func (m *BrowseModel) ensureVisible() {
	vh := m.tableHeight()
	scrolloff := vh / 4
	if m.cursor < m.scrollTop+scrolloff {
		m.scrollTop = m.cursor - scrolloff
	}
	if m.cursor > m.scrollTop+vh-1-scrolloff {
		m.scrollTop = m.cursor - vh + 1 + scrolloff
	}
	m.scrollTop = window.ClampScroll(m.scrollTop, len(m.listings), vh)
}

// scrollBy moves the viewport and drags the cursor along so it never
// leaves the visible rows.
func (m *BrowseModel) scrollBy(delta int) tea.Cmd {
	vh := m.tableHeight()
	m.scrollTop = window.ClampScroll(m.scrollTop+delta, len(m.listings), vh)
	if m.cursor < m.scrollTop {
		m.cursor = m.scrollTop
	}
	if m.cursor > m.scrollTop+vh-1 {
		m.cursor = m.scrollTop + vh - 1
	}
	if m.cursor > len(m.listings)-1 {
		m.cursor = len(m.listings) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m.maybeRequestPage()
}

// maybeRequestPage asks the pager whether the bottom of the viewport is
// close enough to the loaded edge to fetch the next page. lastVisible
// follows the Window.End convention, one past the last rendered row.
func (m *BrowseModel) maybeRequestPage() tea.Cmd {
	lastVisible := m.scrollTop + m.tableHeight()
	if lastVisible > len(m.listings) {
		lastVisible = len(m.listings)
	}
	if m.pager.Check(lastVisible, len(m.listings)) {
		return m.nextPage()
	}
	return nil
}

func (m *BrowseModel) cycleSort() {
	switch m.sort {
	case query.SortUpdatedDesc:
		m.sort = query.SortPriceAsc
	case query.SortPriceAsc:
		m.sort = query.SortPriceDesc
	case query.SortPriceDesc:
		m.sort = query.SortNagasaDesc
	default:
		m.sort = query.SortUpdatedDesc
	}
}

// chromeHeight counts the fixed rows around the table: title bar, search
// line, column header, status bar, plus the alert banner when shown.
func (m *BrowseModel) chromeHeight() int {
	h := 4
	if m.alertBanner != nil {
		h++
	}
	return h
}

func (m *BrowseModel) tableHeight() int {
	th := m.height - m.chromeHeight()
	if th < 1 {
		th = 1
	}
	return th
}

// tableTop is the screen row of the first listing row.
func (m *BrowseModel) tableTop() int {
	top := 3
	if m.alertBanner != nil {
		top++
	}
	return top
}

// handleMouse routes wheel, click and drag events. Overlays only take
// wheel scrolling; sliders capture the pointer for the whole drag.
func (m *BrowseModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.focus == focusQuickView {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.quick.ScrollBy(-3)
		case tea.MouseButtonWheelDown:
			m.quick.ScrollBy(3)
		}
		return nil
	}
	if m.focus == focusPicker || m.focus == focusAlert || m.focus == focusHelp {
		return nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return m.scrollBy(-3)
		case tea.MouseButtonWheelDown:
			return m.scrollBy(3)
		case tea.MouseButtonLeft:
			return m.mouseDown(msg.X, msg.Y)
		}
	case tea.MouseActionMotion:
		if m.dragSlider != nil {
			m.dragSlider.Move(m.dragTrack.frac(msg.X))
		}
	case tea.MouseActionRelease:
		if m.dragSlider != nil {
			m.dragSlider.Move(m.dragTrack.frac(msg.X))
			m.dragSlider.End()
			m.dragSlider = nil
		}
	}
	return nil
}

func (m *BrowseModel) mouseDown(x, y int) tea.Cmd {
	if m.sidebarOpen {
		if m.priceTrack.contains(x, y) {
			m.beginTrackDrag(m.priceSlider, m.priceTrack, x)
			return nil
		}
		if m.nagasaTrack.contains(x, y) {
			m.beginTrackDrag(m.nagasaSlider, m.nagasaTrack, x)
			return nil
		}
	}

	row := m.scrollTop + y - m.tableTop()
	if y >= m.tableTop() && y < m.tableTop()+m.tableHeight() &&
		x >= m.tableLeft() && row >= 0 && row < len(m.listings) {
		m.cursor = row
		m.focus = focusResults
		return m.maybeRequestPage()
	}
	return nil
}

// beginTrackDrag starts a slider drag on the handle nearest the click.
func (m *BrowseModel) beginTrackDrag(s *gesture.Slider, track trackRect, x int) {
	idx := int(track.frac(x)*float64(s.VisibleCount()-1) + 0.5)
	h := gesture.HandleMin
	if idx-s.MinIndex() > s.MaxIndex()-idx {
		h = gesture.HandleMax
	}
	s.Start(h)
	s.Move(track.frac(x))
	m.dragSlider = s
	m.dragTrack = track
	m.focus = focusFilters
}

func (m *BrowseModel) tableLeft() int {
	if m.sidebarOpen {
		return sidebarWidth
	}
	return 0
}

// exportCard renders the loaded rows and the filtered-set histogram into
// a timestamped snapshot card in the working directory.
func (m *BrowseModel) exportCard() tea.Cmd {
	if len(m.listings) == 0 {
		return m.setStatus("nothing to export", true)
	}
	opts := export.SnapshotOptions{
		Path:      fmt.Sprintf("nihonto-%s.svg", time.Now().Format("20060102-150405")),
		Summary:   stats.Summarize(m.listings),
		Histogram: m.priceHist,
		Taken:     time.Now(),
	}
	return exportCardCmd(opts)
}
