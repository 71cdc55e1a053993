// Package ui is the terminal front end: a virtualized listing table
// with a facet sidebar, range sliders, quick-view overlay and deep-link
// sharing, driven by a query service.
package ui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0raclide/nihontowatch-sub000/pkg/bucket"
	"github.com/0raclide/nihontowatch-sub000/pkg/deeplink"
	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
	"github.com/0raclide/nihontowatch-sub000/pkg/gesture"
	"github.com/0raclide/nihontowatch-sub000/pkg/model"
	"github.com/0raclide/nihontowatch-sub000/pkg/query"
	"github.com/0raclide/nihontowatch-sub000/pkg/quickview"
	"github.com/0raclide/nihontowatch-sub000/pkg/session"
	"github.com/0raclide/nihontowatch-sub000/pkg/window"
)

// focus names which surface owns the keyboard.
type focus int

const (
	focusResults focus = iota
	focusFilters
	focusSearch
	focusQuickView
	focusPicker
	focusAlert
	focusHelp
)

// pageThreshold is how close to the end of the loaded rows the cursor
// may drift before the next page is requested.
const pageThreshold = 10

// Options configure the browse UI.
type Options struct {
	Service   query.Service
	Store     session.Store    // nil degrades the alert side channel to a no-op
	History   deeplink.History // nil gets a MemHistory seeded with ShareBase
	ShareBase string           // base URL share links are built on
	PageSize  int              // 0 means query.DefaultPageSize
	OpenOnly  bool             // start with sold/archived hidden
	DeepLink  string           // link to resolve once at startup
	Theme     *Theme           // nil gets DefaultTheme on the default renderer
}

// BrowseModel is the root bubbletea model.
type BrowseModel struct {
	svc   query.Service
	store session.Store

	nav      *quickview.Navigator
	history  deeplink.History
	urlSync  *deeplink.Sync
	resolver *deeplink.Resolver
	deepLink string

	// navLinked marks the overlay as bound to a deep-linked set rather
	// than the table rows; table refreshes must not rebind it.
	navLinked bool

	// send reroutes messages produced on other goroutines (slider
	// debounce timers) into the program. Set once before Run.
	send func(tea.Msg)

	// Search state.
	filters   query.Filters
	sort      string
	pageSize  int
	listings  []model.Listing
	total     int
	truncated bool
	elapsedMs int
	searchErr string
	searchSeq uint64
	searching bool
	pager     *window.InfiniteScroll

	// Type-ahead debounce.
	querySeq   uint64
	queryInput textinput.Model

	// Facet state, normalized per dimension.
	facets     map[facet.Dimension][]facet.Value
	priceHist  *query.Histogram
	nagasaHist *query.Histogram

	priceSlider  *gesture.Slider
	nagasaSlider *gesture.Slider
	dragSlider   *gesture.Slider
	dragTrack    trackRect
	priceTrack   trackRect
	nagasaTrack  trackRect

	// Results viewport.
	cursor    int
	scrollTop int

	// Layout.
	width, height int
	sidebarOpen   bool
	focus         focus
	filterRow     int

	// Overlays.
	quick  QuickViewModel
	picker FacetPickerModel
	alert  AlertFormModel
	help   HelpOverlayModel

	alertBanner *model.AlertContext

	// Status line.
	statusMsg   string
	statusIsErr bool
	statusSeq   uint64
	updateTag   string
	updateURL   string

	spin  spinner.Model
	theme Theme
}

// NewBrowse builds the root model. The returned model is not usable
// concurrently until handed to tea.NewProgram.
func NewBrowse(opts Options) *BrowseModel {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	hist := opts.History
	if hist == nil {
		hist = deeplink.NewMemHistory(opts.ShareBase)
	}

	ti := textinput.New()
	ti.Placeholder = "search title, smith, school..."
	ti.CharLimit = 120
	ti.Width = 32

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Renderer.NewStyle().Foreground(theme.Primary)

	m := &BrowseModel{
		svc:         opts.Service,
		store:       opts.Store,
		nav:         quickview.New(quickview.FallbackClose),
		history:     hist,
		deepLink:    opts.DeepLink,
		filters:     query.Filters{OpenOnly: opts.OpenOnly},
		sort:        query.SortUpdatedDesc,
		pageSize:    pageSize,
		pager:       window.NewInfiniteScroll(pageThreshold, func() {}),
		queryInput:  ti,
		sidebarOpen: true,
		quick:       NewQuickView(theme),
		alert:       NewAlertForm(theme),
		help:        NewHelpOverlayModel(theme),
		spin:        sp,
		theme:       theme,
	}

	m.urlSync = deeplink.NewSync(hist)
	m.urlSync.Attach(m.nav)
	m.resolver = deeplink.NewResolver(opts.Service, opts.Store)

	m.priceSlider = gesture.NewSlider(bucket.Price, func(r gesture.Range) {
		if m.send != nil {
			m.send(priceRangeMsg{r: r})
		}
	})
	m.nagasaSlider = gesture.NewSlider(bucket.Nagasa, func(r gesture.Range) {
		if m.send != nil {
			m.send(nagasaRangeMsg{r: r})
		}
	})

	return m
}

// SetSender wires Program.Send so slider commits reach the UI loop.
// Call it after tea.NewProgram and before Run.
func (m *BrowseModel) SetSender(send func(tea.Msg)) {
	m.send = send
}

// Init implements tea.Model.
func (m *BrowseModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.newSearch(), m.spin.Tick}
	if m.deepLink != "" {
		cmds = append(cmds, resolveLinkCmd(m.resolver, m.deepLink))
	}
	return tea.Batch(cmds...)
}

// newSearch starts a fresh page-zero search for the current filters,
// invalidating every in-flight response.
func (m *BrowseModel) newSearch() tea.Cmd {
	m.searchSeq++
	m.searching = true
	m.pager.Reset()
	opts := query.SearchOptions{
		Filters: m.filters,
		Offset:  0,
		Limit:   m.pageSize,
		Sort:    m.sort,
	}
	return tea.Batch(searchCmd(m.svc, opts, m.searchSeq, false), m.spin.Tick)
}

// nextPage requests the page after the loaded rows under the same
// generation, so a filter change in between invalidates it.
func (m *BrowseModel) nextPage() tea.Cmd {
	m.searching = true
	opts := query.SearchOptions{
		Filters: m.filters,
		Offset:  len(m.listings),
		Limit:   m.pageSize,
		Sort:    m.sort,
	}
	return tea.Batch(searchCmd(m.svc, opts, m.searchSeq, true), m.spin.Tick)
}

// applyFilters is the single entry point for any filter change: reset
// scroll state and dispatch.
func (m *BrowseModel) applyFilters() tea.Cmd {
	m.cursor = 0
	m.scrollTop = 0
	return m.newSearch()
}

// Update implements tea.Model.
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case searchDoneMsg:
		return m, m.handleSearchDone(msg)

	case detailDoneMsg:
		m.handleDetailDone(msg)
		return m, nil

	case deepLinkDoneMsg:
		return m, m.handleDeepLinkDone(msg)

	case queryTickMsg:
		if msg.seq != m.querySeq {
			return m, nil
		}
		if m.queryInput.Value() == m.filters.Query {
			return m, nil
		}
		m.filters.Query = m.queryInput.Value()
		return m, m.applyFilters()

	case priceRangeMsg:
		m.filters.PriceMin, m.filters.PriceMax = msg.r.Min, msg.r.Max
		return m, m.applyFilters()

	case nagasaRangeMsg:
		m.filters.NagasaMin, m.filters.NagasaMax = msg.r.Min, msg.r.Max
		return m, m.applyFilters()

	case CatalogReloadedMsg:
		cmd := m.setStatus(fmt.Sprintf("catalog reloaded: %d listings", msg.Count), false)
		return m, tea.Batch(cmd, m.newSearch())

	case UpdateAvailableMsg:
		m.updateTag, m.updateURL = msg.Tag, msg.URL
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.setStatus(fmt.Sprintf("export failed: %v", msg.err), true)
		}
		return m, m.setStatus("card exported to "+msg.path, false)

	case browserOpenedMsg:
		if msg.err != nil {
			return m, m.setStatus(fmt.Sprintf("browser: %v", msg.err), true)
		}
		return m, nil

	case statusExpireMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes keys overlay-first. Each overlay swallows its input
// until dismissed.
func (m *BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	switch m.focus {
	case focusHelp:
		m.help, _ = m.help.Update(msg)
		if !m.help.IsVisible() {
			m.focus = focusResults
		}
		return m, nil

	case focusAlert:
		return m, m.handleAlertKey(msg)

	case focusPicker:
		return m, m.handlePickerKey(msg)

	case focusQuickView:
		return m, m.handleQuickViewKey(msg)

	case focusSearch:
		return m, m.handleSearchKey(msg)

	case focusFilters:
		return m, m.handleFilterKey(msg)
	}

	return m.handleResultsKey(msg)
}

func (m *BrowseModel) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.queryInput.Blur()
		m.focus = focusResults
		return nil
	case "enter":
		m.queryInput.Blur()
		m.focus = focusResults
		m.querySeq++ // cancel any pending tick
		if m.queryInput.Value() != m.filters.Query {
			m.filters.Query = m.queryInput.Value()
			return m.applyFilters()
		}
		return nil
	}

	before := m.queryInput.Value()
	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	if m.queryInput.Value() != before {
		m.querySeq++
		return tea.Batch(cmd, queryTickCmd(m.querySeq))
	}
	return cmd
}

// handleSearchDone applies a search response, dropping stale
// generations.
func (m *BrowseModel) handleSearchDone(msg searchDoneMsg) tea.Cmd {
	if msg.token != m.searchSeq {
		return nil
	}
	m.searching = false
	m.elapsedMs = msg.res.Meta.ElapsedMs
	m.searchErr = msg.res.Meta.Error
	m.truncated = msg.res.Meta.Truncated

	if msg.res.Meta.Error != "" {
		if msg.append {
			m.pager.Failed()
		}
		return m.setStatus("search failed: "+msg.res.Meta.Error, true)
	}

	m.total = msg.res.Meta.Total
	if msg.append {
		m.listings = append(m.listings, msg.res.Listings...)
		m.pager.Loaded(len(m.listings) < m.total && len(msg.res.Listings) > 0)
	} else {
		m.listings = msg.res.Listings
		m.pager.Loaded(len(m.listings) < m.total)
		if m.cursor >= len(m.listings) {
			m.cursor = len(m.listings) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.scrollTop = window.ClampScroll(m.scrollTop, len(m.listings), m.tableHeight())
	}

	if msg.res.Facets != nil {
		m.facets = normalizeFacets(msg.res.Facets)
	}
	if msg.res.PriceHistogram != nil {
		m.priceHist = msg.res.PriceHistogram
		m.priceSlider.SetVisibleCount(bucket.Price.VisibleBucketCount(msg.res.PriceHistogram.MaxValue))
	}
	if msg.res.NagasaHistogram != nil {
		m.nagasaHist = msg.res.NagasaHistogram
		m.nagasaSlider.SetVisibleCount(bucket.Nagasa.VisibleBucketCount(msg.res.NagasaHistogram.MaxValue))
	}

	// Rebind the open overlay to the fresh rows. The navigator keeps
	// the same listing when it survived the reload. A deep-linked
	// overlay walks its own snapshot and is left alone.
	if m.nav.IsOpen() && !m.navLinked {
		m.nav.SetListings(m.listings)
		if m.nav.IsOpen() {
			m.syncQuickView()
		} else {
			m.focus = focusResults
		}
	}
	return nil
}

func (m *BrowseModel) handleDetailDone(msg detailDoneMsg) {
	if !m.nav.Matches(msg.navToken) {
		return // user moved on; the fetch answers a question nobody asked
	}
	if msg.err != nil {
		m.quick.SetError(msg.err.Error())
		return
	}
	// Fold the detail back into the bound row so prev/next returns to
	// fresh data, then show it.
	m.nav.RefreshCurrent(patchFrom(msg.listing))
	m.quick.SetDetail(msg.listing)
}

// patchFrom lifts a fetched detail into a patch for its summary row.
func patchFrom(l model.Listing) model.ListingPatch {
	return model.ListingPatch{
		Status:        &l.Status,
		PriceJPY:      &l.PriceJPY,
		PriceOnAsk:    &l.PriceOnAsk,
		Certification: &l.Certification,
		Description:   &l.Description,
		UpdatedAt:     &l.UpdatedAt,
	}
}

func (m *BrowseModel) handleDeepLinkDone(msg deepLinkDoneMsg) tea.Cmd {
	if !msg.opened {
		return nil
	}
	m.nav.SetListings(msg.listings)
	if !m.nav.OpenAt(msg.openIdx) {
		return nil
	}
	m.navLinked = true
	m.focus = focusQuickView
	if ac, ok := session.LoadAlertContext(m.store); ok {
		m.alertBanner = &ac
	}
	m.syncQuickView()
	cur, _ := m.nav.Current()
	return fetchCmd(m.svc, cur.ID, m.nav.Token())
}

// syncQuickView pushes the navigator's current position into the
// overlay model.
func (m *BrowseModel) syncQuickView() {
	cur, ok := m.nav.Current()
	if !ok {
		return
	}
	m.quick.SetListing(cur, m.nav.HasPrevious(), m.nav.HasNext(),
		fmt.Sprintf("%d/%d", m.nav.CurrentIndex()+1, m.nav.Len()))
}

// openQuickViewAt binds the current rows and opens the overlay on one.
func (m *BrowseModel) openQuickViewAt(index int) tea.Cmd {
	if index < 0 || index >= len(m.listings) {
		return nil
	}
	m.nav.SetListings(m.listings)
	if !m.nav.OpenAt(index) {
		return nil
	}
	m.navLinked = false
	m.focus = focusQuickView
	m.syncQuickView()
	cur, _ := m.nav.Current()
	return fetchCmd(m.svc, cur.ID, m.nav.Token())
}

func (m *BrowseModel) closeQuickView() {
	m.nav.Close()
	m.navLinked = false
	m.focus = focusResults
	deeplink.InvalidateStaleAlert(m.store, m.history.Current())
	m.alertBanner = nil
}

func (m *BrowseModel) copyShareLink() tea.Cmd {
	link := m.history.Current()
	if link == "" {
		return m.setStatus("nothing to share", true)
	}
	if err := clipboard.WriteAll(link); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard error: %v", err), true)
	}
	return m.setStatus("link copied: "+link, false)
}

func (m *BrowseModel) setStatus(text string, isErr bool) tea.Cmd {
	m.statusMsg = text
	m.statusIsErr = isErr
	m.statusSeq++
	return statusExpireCmd(m.statusSeq)
}

func (m *BrowseModel) quit() tea.Cmd {
	m.priceSlider.Close()
	m.nagasaSlider.Close()
	return tea.Quit
}

func (m *BrowseModel) setSize(w, h int) {
	m.width, m.height = w, h
	m.quick.SetSize(w, h)
	m.picker.SetSize(w, h)
	m.alert.SetSize(w, h)
	m.help.SetSize(w, h)
	m.scrollTop = window.ClampScroll(m.scrollTop, len(m.listings), m.tableHeight())
	m.ensureVisible()
}

// SelectedListing returns the listing under the cursor.
func (m *BrowseModel) SelectedListing() (model.Listing, bool) {
	if m.cursor < 0 || m.cursor >= len(m.listings) {
		return model.Listing{}, false
	}
	return m.listings[m.cursor], true
}

func normalizeFacets(raw map[facet.Dimension][]facet.Raw) map[facet.Dimension][]facet.Value {
	out := make(map[facet.Dimension][]facet.Value, len(raw))
	for dim, rows := range raw {
		out[dim] = facet.NormalizeDimension(dim, rows)
	}
	return out
}

// shareLinkForAlert builds a multi-listing deep link for the first
// rows of the current result set, tagged with the saved search name.
func (m *BrowseModel) shareLinkForAlert(name string, limit int) string {
	ids := make([]int64, 0, limit)
	for i := range m.listings {
		if len(ids) == limit {
			break
		}
		ids = append(ids, m.listings[i].ID)
	}
	return deeplink.BuildMultiLink(m.history.Current(), ids, name)
}
