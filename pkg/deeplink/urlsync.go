package deeplink

import (
	"net/url"
	"strconv"

	"github.com/0raclide/nihontowatch-sub000/pkg/quickview"
)

// History is the address surface Sync writes through. Replace swaps the
// current entry in place; nothing here ever pushes, so overlay
// transitions do not pollute back/forward history.
type History interface {
	Replace(link string)
	Current() string
}

// MemHistory is the in-process History used by the TUI: it holds the
// shareable link the clipboard copy and the status line read from.
type MemHistory struct {
	link string
}

// NewMemHistory creates a history seeded with the given link.
func NewMemHistory(initial string) *MemHistory {
	return &MemHistory{link: initial}
}

func (h *MemHistory) Replace(link string) { h.link = link }
func (h *MemHistory) Current() string     { return h.link }

// Sync mirrors quick-view state into a History so that reloading or
// sharing the current link reproduces the open overlay.
type Sync struct {
	hist History
}

// NewSync creates a sync over the given history.
func NewSync(hist History) *Sync {
	return &Sync{hist: hist}
}

// Attach subscribes the sync to a navigator and returns the
// unsubscribe func.
func (s *Sync) Attach(nav *quickview.Navigator) func() {
	return nav.Subscribe(func(ev quickview.Event) {
		switch ev {
		case quickview.EventOpened, quickview.EventListings:
			if cur, ok := nav.Current(); ok {
				s.Opened(cur.ID)
			}
		case quickview.EventMoved:
			if cur, ok := nav.Current(); ok {
				s.Moved(cur.ID)
			}
		case quickview.EventClosed:
			s.Closed()
		}
	})
}

// Opened reflects the overlay opening on a listing. When the current
// link is a multi deep link whose first id is exactly this listing, the
// marker is left alone: the link already reproduces this state, and
// stripping it would invalidate the alert banner on arrival.
func (s *Sync) Opened(id int64) {
	cur := s.hist.Current()
	if req := Parse(cur); len(req.MultiIDs) > 0 && req.MultiIDs[0] == id {
		return
	}
	s.hist.Replace(withListing(cur, id))
}

// Moved reflects in-overlay navigation. The singular parameter replaces
// any multi marker; the link now names what the user actually sees.
func (s *Sync) Moved(id int64) {
	s.hist.Replace(withListing(s.hist.Current(), id))
}

// Closed strips the overlay parameters, restoring the prior link.
func (s *Sync) Closed() {
	s.hist.Replace(withoutOverlay(s.hist.Current()))
}

func withListing(link string, id int64) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	q := u.Query()
	q.Set(ParamListing, strconv.FormatInt(id, 10))
	q.Del(ParamListings)
	q.Del(ParamAlertSearch)
	u.RawQuery = q.Encode()
	return u.String()
}

func withoutOverlay(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	q := u.Query()
	q.Del(ParamListing)
	q.Del(ParamListings)
	q.Del(ParamAlertSearch)
	u.RawQuery = q.Encode()
	return u.String()
}
