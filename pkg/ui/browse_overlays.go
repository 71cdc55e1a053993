package ui

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
)

// alertLinkMaxIDs caps how many listing ids an alert share link carries.
const alertLinkMaxIDs = 10

// handleQuickViewKey handles keys while the listing overlay is open.
func (m *BrowseModel) handleQuickViewKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.closeQuickView()
		return nil
	case "n", "right", "l":
		if !m.nav.Next() {
			return nil
		}
		return m.afterNavMove()
	case "p", "left", "h":
		if !m.nav.Previous() {
			return nil
		}
		return m.afterNavMove()
	case "r":
		cur, ok := m.nav.Current()
		if !ok {
			return nil
		}
		m.quick.SetLoading()
		return fetchCmd(m.svc, cur.ID, m.nav.Token())
	case "o":
		cur, ok := m.nav.Current()
		if !ok || cur.URL == "" {
			return m.setStatus("listing has no dealer page", true)
		}
		return openURLCmd(cur.URL)
	case "y":
		return m.copyShareLink()
	case "j", "down":
		m.quick.ScrollBy(1)
	case "k", "up":
		m.quick.ScrollBy(-1)
	case "ctrl+d":
		m.quick.HalfPageDown()
	case "ctrl+u":
		m.quick.HalfPageUp()
	case "g", "home":
		m.quick.GotoTop()
	}
	return nil
}

// afterNavMove refreshes the overlay and table state after Next or
// Previous, and fetches detail for the new current listing.
func (m *BrowseModel) afterNavMove() tea.Cmd {
	m.syncQuickView()
	cur, ok := m.nav.Current()
	if !ok {
		return nil
	}
	m.followNav(cur.ID)
	return fetchCmd(m.svc, cur.ID, m.nav.Token())
}

// followNav keeps the table cursor on the overlay's current listing
// when it is part of the loaded rows.
func (m *BrowseModel) followNav(id int64) {
	for i := range m.listings {
		if m.listings[i].ID == id {
			m.cursor = i
			m.ensureVisible()
			return
		}
	}
}

// openPickerFor shows the facet selector for one dimension, seeded with
// the current selection.
func (m *BrowseModel) openPickerFor(dim facet.Dimension) tea.Cmd {
	slice := m.filterSlice(dim)
	if slice == nil {
		return nil
	}
	m.picker = NewFacetPicker(m.theme, dim, sidebarLabel(dim), m.facets[dim], *slice)
	m.picker.SetSize(m.width, m.height)
	m.focus = focusPicker
	return m.picker.Init()
}

func (m *BrowseModel) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if !m.picker.Done() {
		return cmd
	}
	m.focus = focusFilters
	sel, ok := m.picker.Result()
	if !ok {
		return cmd
	}
	slice := m.filterSlice(m.picker.Dimension())
	if slice == nil {
		return cmd
	}
	*slice = sel
	return tea.Batch(cmd, m.applyFilters())
}

// openAlertForm starts the save-search-alert flow over the current
// result set.
func (m *BrowseModel) openAlertForm() tea.Cmd {
	if len(m.listings) == 0 {
		return m.setStatus("no results to alert on", true)
	}
	def := m.filters.Query
	if def == "" {
		def = "nihonto search"
	}
	// huh forms are one-shot; build a fresh one per open.
	m.alert = NewAlertForm(m.theme)
	m.alert.SetSize(m.width, m.height)
	m.focus = focusAlert
	return m.alert.Open(def)
}

func (m *BrowseModel) handleAlertKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.alert, cmd = m.alert.Update(msg)
	switch m.alert.Status() {
	case alertFormDone:
		m.focus = focusResults
		name, copyLink := m.alert.Result()
		link := m.shareLinkForAlert(name, alertLinkMaxIDs)
		if !copyLink {
			return tea.Batch(cmd, m.setStatus("alert link: "+link, false))
		}
		if err := clipboard.WriteAll(link); err != nil {
			return tea.Batch(cmd, m.setStatus(fmt.Sprintf("clipboard error: %v", err), true))
		}
		return tea.Batch(cmd, m.setStatus("alert link copied: "+link, false))
	case alertFormCancelled:
		m.focus = focusResults
	}
	return cmd
}
