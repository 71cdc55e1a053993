// Package quickview owns the navigation state behind the listing
// overlay: which ordered set of listings it pages through, which one is
// current, and whether it is open at all. Nothing else writes this
// state; views subscribe for change events and re-render from it.
package quickview

import (
	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// RebindPolicy controls where the carousel lands when the listing set is
// replaced while open and the current listing is no longer present.
type RebindPolicy int

const (
	// FallbackFirst moves to the first listing of the new set.
	FallbackFirst RebindPolicy = iota
	// FallbackClose closes the overlay instead.
	FallbackClose
)

// Event describes a state change for subscribers.
type Event int

const (
	EventOpened Event = iota
	EventClosed
	EventMoved
	EventListings
	EventRefreshed
)

// Navigator is the state machine over the overlay's navigation state.
// It is single-owner and event-loop driven: no internal locking, all
// operations apply atomically before the next render observes them.
type Navigator struct {
	listings []model.Listing
	current  int
	open     bool
	policy   RebindPolicy

	token uint64
	subs  map[int]func(Event)
	subID int
}

// New creates a closed navigator with no listings bound.
func New(policy RebindPolicy) *Navigator {
	return &Navigator{current: -1, policy: policy, subs: make(map[int]func(Event))}
}

// IsOpen reports whether the overlay is showing a listing.
func (n *Navigator) IsOpen() bool { return n.open }

// CurrentIndex returns the position of the current listing, or -1 when
// closed.
func (n *Navigator) CurrentIndex() int {
	if !n.open {
		return -1
	}
	return n.current
}

// Current returns the listing under the cursor. ok is false when closed.
func (n *Navigator) Current() (model.Listing, bool) {
	if !n.open || n.current < 0 || n.current >= len(n.listings) {
		return model.Listing{}, false
	}
	return n.listings[n.current], true
}

// Listings returns the bound set. Callers treat it as read-only; all
// mutation goes through navigator operations.
func (n *Navigator) Listings() []model.Listing { return n.listings }

// Len returns the number of bound listings.
func (n *Navigator) Len() int { return len(n.listings) }

// HasNext reports whether Next would move. Never wraps.
func (n *Navigator) HasNext() bool {
	return n.open && n.current < len(n.listings)-1
}

// HasPrevious reports whether Previous would move. Never wraps.
func (n *Navigator) HasPrevious() bool {
	return n.open && n.current > 0
}

// Open opens the overlay on the given listing. If the listing is present
// in the bound set it opens at its position; otherwise the set is
// replaced by just this listing, so the overlay never shows an item
// other than the one asked for.
func (n *Navigator) Open(l model.Listing) {
	if i := n.indexOf(l.ID); i >= 0 {
		n.openAt(i)
		return
	}
	n.listings = []model.Listing{l}
	n.openAt(0)
}

// OpenAt opens the overlay at an index into the bound set. Out-of-range
// indexes are a no-op and return false.
func (n *Navigator) OpenAt(index int) bool {
	if index < 0 || index >= len(n.listings) {
		return false
	}
	n.openAt(index)
	return true
}

// OpenID opens the overlay on the bound listing with the given id,
// returning false when absent.
func (n *Navigator) OpenID(id int64) bool {
	i := n.indexOf(id)
	if i < 0 {
		return false
	}
	n.openAt(i)
	return true
}

func (n *Navigator) openAt(index int) {
	wasOpen := n.open
	n.open = true
	n.current = index
	n.token++
	if wasOpen {
		n.notify(EventMoved)
	} else {
		n.notify(EventOpened)
	}
}

// Next advances to the following listing. At the last index it is a
// no-op and returns false.
func (n *Navigator) Next() bool {
	if !n.HasNext() {
		return false
	}
	n.current++
	n.token++
	n.notify(EventMoved)
	return true
}

// Previous steps back to the preceding listing. At index 0 it is a
// no-op and returns false.
func (n *Navigator) Previous() bool {
	if !n.HasPrevious() {
		return false
	}
	n.current--
	n.token++
	n.notify(EventMoved)
	return true
}

// Close closes the overlay. Listings stay bound for a possible reopen.
func (n *Navigator) Close() {
	if !n.open {
		return
	}
	n.open = false
	n.current = -1
	n.token++
	n.notify(EventClosed)
}

// SetListings replaces the bound set wholesale. When the overlay is open
// the current listing is re-found by id, so the cursor tracks identity
// rather than position. If the id is gone, the configured policy decides
// between falling back to the first listing and closing; an empty new
// set always closes.
func (n *Navigator) SetListings(listings []model.Listing) {
	wasOpen := n.open
	var currentID int64
	if cur, ok := n.Current(); ok {
		currentID = cur.ID
	}

	n.listings = listings
	if !wasOpen {
		n.notify(EventListings)
		return
	}
	if len(listings) == 0 {
		n.open = false
		n.current = -1
		n.token++
		n.notify(EventClosed)
		return
	}
	if i := n.indexOf(currentID); i >= 0 {
		// Same listing, possibly at a new position. The token is not
		// bumped: a detail fetch for this listing is still valid.
		n.current = i
		n.notify(EventListings)
		return
	}
	switch n.policy {
	case FallbackClose:
		n.open = false
		n.current = -1
		n.token++
		n.notify(EventClosed)
	default:
		n.current = 0
		n.token++
		n.notify(EventListings)
	}
}

// RefreshCurrent merges a partial update into the current listing in
// place. The index and the listing's identity are untouched, so ongoing
// navigation and any in-flight fetches are not disturbed. Returns false
// when closed.
func (n *Navigator) RefreshCurrent(patch model.ListingPatch) bool {
	if !n.open || n.current < 0 || n.current >= len(n.listings) {
		return false
	}
	patch.Apply(&n.listings[n.current])
	n.notify(EventRefreshed)
	return true
}

// Token identifies the current navigation generation. Every operation
// that changes which listing is current bumps it. Async detail fetches
// capture the token at dispatch and check Matches at resolution, so a
// slow response for a listing the user already navigated away from is
// discarded instead of clobbering newer state.
func (n *Navigator) Token() uint64 { return n.token }

// Matches reports whether a captured token still refers to the current
// navigation generation.
func (n *Navigator) Matches(token uint64) bool { return n.token == token }

// Subscribe registers a change listener and returns its cancel func.
func (n *Navigator) Subscribe(fn func(Event)) func() {
	n.subID++
	id := n.subID
	n.subs[id] = fn
	return func() { delete(n.subs, id) }
}

func (n *Navigator) notify(ev Event) {
	for _, fn := range n.subs {
		fn(ev)
	}
}

func (n *Navigator) indexOf(id int64) int {
	if id == 0 {
		return -1
	}
	for i := range n.listings {
		if n.listings[i].ID == id {
			return i
		}
	}
	return -1
}
