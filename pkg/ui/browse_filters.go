package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
	"github.com/0raclide/nihontowatch-sub000/pkg/gesture"
	"github.com/0raclide/nihontowatch-sub000/pkg/query"
)

// sidebarDims lists the facet dimensions in sidebar order. The two
// slider rows follow them.
var sidebarDims = []facet.Dimension{
	facet.DimItemType,
	facet.DimCertification,
	facet.DimDealer,
	facet.DimPeriod,
	facet.DimSignature,
}

const (
	rowPrice        = 5
	rowNagasa       = 6
	sidebarRowCount = 7
)

func sidebarLabel(dim facet.Dimension) string {
	switch dim {
	case facet.DimItemType:
		return "Item type"
	case facet.DimCertification:
		return "Papers"
	case facet.DimDealer:
		return "Dealer"
	case facet.DimPeriod:
		return "Period"
	case facet.DimSignature:
		return "Signature"
	}
	return string(dim)
}

// handleFilterKey handles keys while the sidebar owns focus. Slider rows
// take handle nudges; dimension rows open the facet picker.
func (m *BrowseModel) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "tab":
		m.focus = focusResults
		return nil
	case "f":
		m.sidebarOpen = false
		m.focus = focusResults
		return nil
	case "j", "down":
		if m.filterRow < sidebarRowCount-1 {
			m.filterRow++
		}
		return nil
	case "k", "up":
		if m.filterRow > 0 {
			m.filterRow--
		}
		return nil
	case "enter", " ":
		if m.filterRow < len(sidebarDims) {
			return m.openPickerFor(sidebarDims[m.filterRow])
		}
		return nil
	case "left", "h":
		return m.nudgeSlider(gesture.HandleMin, -1)
	case "right", "l":
		return m.nudgeSlider(gesture.HandleMin, +1)
	case "shift+left", "H":
		return m.nudgeSlider(gesture.HandleMax, -1)
	case "shift+right", "L":
		return m.nudgeSlider(gesture.HandleMax, +1)
	case "x":
		return m.clearFilterRow()
	case "c":
		return m.clearFilters()
	}
	return nil
}

// nudgeSlider moves one handle of the slider under the cursor by delta
// buckets. The commit rides the slider's debounce and arrives as a
// range message.
func (m *BrowseModel) nudgeSlider(h gesture.Handle, delta int) tea.Cmd {
	var s *gesture.Slider
	switch m.filterRow {
	case rowPrice:
		s = m.priceSlider
	case rowNagasa:
		s = m.nagasaSlider
	default:
		return nil
	}
	if h == gesture.HandleMin {
		s.SetIndexes(s.MinIndex()+delta, s.MaxIndex())
	} else {
		s.SetIndexes(s.MinIndex(), s.MaxIndex()+delta)
	}
	return nil
}

// clearFilterRow resets just the filter under the sidebar cursor.
func (m *BrowseModel) clearFilterRow() tea.Cmd {
	switch m.filterRow {
	case rowPrice:
		m.priceSlider.Reset()
		if m.filters.PriceMin == nil && m.filters.PriceMax == nil {
			return nil
		}
		m.filters.PriceMin, m.filters.PriceMax = nil, nil
	case rowNagasa:
		m.nagasaSlider.Reset()
		if m.filters.NagasaMin == nil && m.filters.NagasaMax == nil {
			return nil
		}
		m.filters.NagasaMin, m.filters.NagasaMax = nil, nil
	default:
		slice := m.filterSlice(sidebarDims[m.filterRow])
		if slice == nil || len(*slice) == 0 {
			return nil
		}
		*slice = nil
	}
	return m.applyFilters()
}

// clearFilters drops every active constraint, query text included.
func (m *BrowseModel) clearFilters() tea.Cmd {
	if m.filters.Empty() && m.queryInput.Value() == "" {
		return nil
	}
	m.filters = query.Filters{}
	m.queryInput.SetValue("")
	m.querySeq++ // orphan any pending type-ahead tick
	m.priceSlider.Reset()
	m.nagasaSlider.Reset()
	return m.applyFilters()
}

// filterSlice maps a facet dimension onto its filter field.
func (m *BrowseModel) filterSlice(dim facet.Dimension) *[]string {
	switch dim {
	case facet.DimItemType:
		return &m.filters.Categories
	case facet.DimCertification:
		return &m.filters.Certifications
	case facet.DimDealer:
		return &m.filters.Dealers
	case facet.DimPeriod:
		return &m.filters.Periods
	case facet.DimSignature:
		return &m.filters.Signatures
	}
	return nil
}

// activeFilterCount counts constraints for the status line.
func (m *BrowseModel) activeFilterCount() int {
	n := 0
	if m.filters.Query != "" {
		n++
	}
	for _, dim := range sidebarDims {
		if s := m.filterSlice(dim); s != nil && len(*s) > 0 {
			n++
		}
	}
	if m.filters.OpenOnly {
		n++
	}
	if m.filters.PriceMin != nil || m.filters.PriceMax != nil {
		n++
	}
	if m.filters.NagasaMin != nil || m.filters.NagasaMax != nil {
		n++
	}
	return n
}
