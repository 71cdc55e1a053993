package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0raclide/nihontowatch-sub000/pkg/deeplink"
	"github.com/0raclide/nihontowatch-sub000/pkg/export"
	"github.com/0raclide/nihontowatch-sub000/pkg/gesture"
	"github.com/0raclide/nihontowatch-sub000/pkg/model"
	"github.com/0raclide/nihontowatch-sub000/pkg/query"
)

// queryDebounce is the type-ahead settle time before a text query runs.
const queryDebounce = 300 * time.Millisecond

// statusLinger is how long a transient status message stays visible.
const statusLinger = 4 * time.Second

// searchDoneMsg delivers one search response. token pins it to the
// request generation that dispatched it; stale generations are dropped.
type searchDoneMsg struct {
	token  uint64
	append bool
	res    query.SearchResponse
}

// detailDoneMsg delivers a quick-view detail fetch, pinned to the
// navigator token at dispatch.
type detailDoneMsg struct {
	navToken uint64
	listing  model.Listing
	err      error
}

// queryTickMsg fires when the type-ahead debounce interval elapses.
type queryTickMsg struct{ seq uint64 }

// priceRangeMsg and nagasaRangeMsg arrive from the slider debouncers on
// their timer goroutines, rerouted through Program.Send.
type priceRangeMsg struct{ r gesture.Range }
type nagasaRangeMsg struct{ r gesture.Range }

// deepLinkDoneMsg carries a resolver outcome back onto the UI loop.
type deepLinkDoneMsg struct {
	opened   bool
	listings []model.Listing
	openIdx  int
}

// statusExpireMsg clears a transient status message.
type statusExpireMsg struct{ seq uint64 }

// exportDoneMsg reports a snapshot card write.
type exportDoneMsg struct {
	path string
	err  error
}

// browserOpenedMsg reports a hand-off to the system browser.
type browserOpenedMsg struct{ err error }

// CatalogReloadedMsg announces that the on-disk catalog was reloaded
// into the query service. Sent from the watcher wiring in cmd.
type CatalogReloadedMsg struct{ Count int }

// UpdateAvailableMsg reports a newer released version.
type UpdateAvailableMsg struct {
	Tag string
	URL string
}

func searchCmd(svc query.Service, opts query.SearchOptions, token uint64, appendPage bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), query.DefaultTimeout+time.Second)
		defer cancel()
		res := svc.Search(ctx, opts)
		return searchDoneMsg{token: token, append: appendPage, res: res}
	}
}

func fetchCmd(svc query.Service, id int64, navToken uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), query.DefaultTimeout)
		defer cancel()
		l, err := svc.Fetch(ctx, id)
		return detailDoneMsg{navToken: navToken, listing: l, err: err}
	}
}

// linkOpenPlan records what the resolver would do to the navigator, so
// the actual mutation happens on the UI loop rather than the command
// goroutine.
type linkOpenPlan struct {
	listings []model.Listing
	openIdx  int
}

func (p *linkOpenPlan) SetListings(ls []model.Listing) { p.listings = ls }
func (p *linkOpenPlan) OpenAt(i int) bool              { p.openIdx = i; return true }

func resolveLinkCmd(r *deeplink.Resolver, raw string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*query.DefaultTimeout)
		defer cancel()
		var plan linkOpenPlan
		opened := r.Resolve(ctx, raw, &plan)
		return deepLinkDoneMsg{opened: opened, listings: plan.listings, openIdx: plan.openIdx}
	}
}

func exportCardCmd(opts export.SnapshotOptions) tea.Cmd {
	return func() tea.Msg {
		err := export.SaveSnapshotCard(opts)
		return exportDoneMsg{path: opts.Path, err: err}
	}
}

func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return browserOpenedMsg{err: export.OpenInBrowser(url)}
	}
}

func queryTickCmd(seq uint64) tea.Cmd {
	return tea.Tick(queryDebounce, func(time.Time) tea.Msg {
		return queryTickMsg{seq: seq}
	})
}

func statusExpireCmd(seq uint64) tea.Cmd {
	return tea.Tick(statusLinger, func(time.Time) tea.Msg {
		return statusExpireMsg{seq: seq}
	})
}
