package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
)

// FacetPickerModel is the multi-select overlay for one facet dimension.
// Typing filters the values fuzzily, space toggles, enter applies.
type FacetPickerModel struct {
	theme Theme
	dim   facet.Dimension
	title string

	all      []facet.Value
	filtered []facet.Value
	selected map[string]bool
	maxCount int

	searchInput textinput.Model
	cursor      int

	done      bool
	confirmed bool

	width  int
	height int
}

// NewFacetPicker builds a picker over the current facet rows, seeded
// with the active selection.
func NewFacetPicker(theme Theme, dim facet.Dimension, title string, options []facet.Value, selected []string) FacetPickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 30
	ti.Focus()

	sel := make(map[string]bool, len(selected))
	for _, v := range selected {
		sel[v] = true
	}
	maxCount := 0
	for _, v := range options {
		if v.Count > maxCount {
			maxCount = v.Count
		}
	}

	return FacetPickerModel{
		theme:       theme,
		dim:         dim,
		title:       title,
		all:         options,
		filtered:    options,
		selected:    sel,
		maxCount:    maxCount,
		searchInput: ti,
		width:       60,
		height:      20,
	}
}

func (m *FacetPickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m FacetPickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles one key. The picker owns every key until done.
func (m FacetPickerModel) Update(msg tea.KeyMsg) (FacetPickerModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.done = true
		m.confirmed = false
		return m, nil
	case "enter":
		m.done = true
		m.confirmed = true
		return m, nil
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil
	case " ":
		if m.cursor < len(m.filtered) {
			v := m.filtered[m.cursor].Value
			if m.selected[v] {
				delete(m.selected, v)
			} else {
				m.selected[v] = true
			}
		}
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != before {
		m.filter()
	}
	return m, cmd
}

// filter applies fuzzy matching over the value names, preserving match
// relevance order.
func (m *FacetPickerModel) filter() {
	query := strings.TrimSpace(m.searchInput.Value())
	if query == "" {
		m.filtered = m.all
		m.cursor = 0
		return
	}

	names := make([]string, len(m.all))
	for i, v := range m.all {
		names[i] = v.Value
	}
	matches := fuzzy.Find(query, names)

	m.filtered = make([]facet.Value, 0, len(matches))
	for _, match := range matches {
		m.filtered = append(m.filtered, m.all[match.Index])
	}
	m.cursor = 0
}

// Done reports whether the picker is finished, by confirm or cancel.
func (m *FacetPickerModel) Done() bool { return m.done }

// Result returns the selection in facet order. ok is false on cancel.
func (m *FacetPickerModel) Result() ([]string, bool) {
	if !m.confirmed {
		return nil, false
	}
	var out []string
	for _, v := range m.all {
		if m.selected[v.Value] {
			out = append(out, v.Value)
		}
	}
	return out, true
}

func (m *FacetPickerModel) Dimension() facet.Dimension { return m.dim }

// View renders the picker box. Centering happens in the caller.
func (m *FacetPickerModel) View() string {
	t := m.theme

	boxWidth := 55
	if m.width < 65 {
		boxWidth = m.width - 10
	}
	if boxWidth < 35 {
		boxWidth = 35
	}
	contentWidth := boxWidth - 4

	var lines []string
	lines = append(lines, t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).
		Render("Filter by "+m.title))
	lines = append(lines, "")
	lines = append(lines, m.searchInput.View())
	lines = append(lines, "")

	maxVisible := m.height - 12
	if maxVisible < 5 {
		maxVisible = 5
	}
	if maxVisible > 15 {
		maxVisible = 15
	}

	if len(m.filtered) == 0 {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true).
			Render("  no matching values"))
	} else {
		for i, v := range m.filtered {
			if i >= maxVisible {
				break
			}
			lines = append(lines, m.renderValue(v, i == m.cursor, contentWidth))
		}
		if len(m.filtered) > maxVisible {
			lines = append(lines, t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true).
				Render("  ... and "+strconv.Itoa(len(m.filtered)-maxVisible)+" more"))
		}
	}

	lines = append(lines, "")
	lines = append(lines, t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true).
		Render("space: toggle · enter: apply · esc: cancel"))

	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))
}

func (m *FacetPickerModel) renderValue(v facet.Value, isCursor bool, maxWidth int) string {
	t := m.theme

	prefix := "  "
	if isCursor {
		prefix = "▸ "
	}
	box := "[ ] "
	if m.selected[v.Value] {
		box = "[x] "
	}

	nameStyle := t.Renderer.NewStyle()
	if isCursor {
		nameStyle = nameStyle.Foreground(t.Primary).Bold(true)
	} else if m.selected[v.Value] {
		nameStyle = nameStyle.Foreground(t.Accent)
	}

	barWidth := 8
	name := fitCell(v.Value, maxWidth-len(prefix)-len(box)-barWidth-8)

	frac := 0.0
	if m.maxCount > 0 {
		frac = float64(v.Count) / float64(m.maxCount)
	}
	bar := RenderMiniBar(frac, barWidth, t)
	count := t.Renderer.NewStyle().Foreground(t.Subtext).
		Render(strconv.Itoa(v.Count))

	return nameStyle.Render(prefix+box+name) + bar + " " + count
}
