package deeplink

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
	"github.com/0raclide/nihontowatch-sub000/pkg/session"
)

// MaxFanOut bounds how many listing fetches a multi link runs at once.
const MaxFanOut = 4

// Fetcher retrieves one listing by id. query.Service satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, id int64) (model.Listing, error)
}

// Opener is the slice of the quick-view navigator the resolver drives.
type Opener interface {
	SetListings(listings []model.Listing)
	OpenAt(index int) bool
}

// Resolver resolves one deep link per mount into an open quick view.
// The one-shot guard keeps a re-render from re-processing the same link
// and reopening an overlay the user already dismissed.
type Resolver struct {
	fetcher Fetcher
	store   session.Store
	handled bool
}

// NewResolver creates a resolver. store may be nil; the alert-context
// side channel then degrades to a no-op.
func NewResolver(fetcher Fetcher, store session.Store) *Resolver {
	return &Resolver{fetcher: fetcher, store: store}
}

// Handled reports whether this resolver already processed its link.
func (r *Resolver) Handled() bool { return r.handled }

// Resolve parses the link and, when it names at least one fetchable
// listing, binds the survivors to nav and opens at the first. It
// returns true only when an overlay was opened. Every failure path
// leaves nav untouched: per-listing fetch failures are logged and
// dropped, and a link that yields nothing is a no-op.
func (r *Resolver) Resolve(ctx context.Context, rawLink string, nav Opener) bool {
	if r.handled {
		return false
	}
	r.handled = true

	if nav == nil || r.fetcher == nil {
		return false
	}
	req := Parse(rawLink)
	if req.IsZero() {
		return false
	}

	if len(req.MultiIDs) > 0 {
		return r.resolveMulti(ctx, req, nav)
	}
	return r.resolveSingle(ctx, req.SingleID, nav)
}

func (r *Resolver) resolveSingle(ctx context.Context, id int64, nav Opener) bool {
	l, err := r.fetcher.Fetch(ctx, id)
	if err != nil {
		log.Printf("Warning: deep link fetch for listing %d failed: %v", id, err)
		return false
	}
	nav.SetListings([]model.Listing{l})
	return nav.OpenAt(0)
}

func (r *Resolver) resolveMulti(ctx context.Context, req Request, nav Opener) bool {
	survivors := fetchAll(ctx, r.fetcher, req.MultiIDs)
	if len(survivors) == 0 {
		return false
	}
	nav.SetListings(survivors)
	if !nav.OpenAt(0) {
		return false
	}
	if req.AlertSearch != "" {
		session.SaveAlertContext(r.store, model.AlertContext{
			SearchName:   req.AlertSearch,
			TotalMatches: len(req.MultiIDs),
		})
	}
	return true
}

// fetchAll fans the ids out in parallel and collects the successes in
// request order. One listing failing does not cancel its siblings.
func fetchAll(ctx context.Context, fetcher Fetcher, ids []int64) []model.Listing {
	results := make([]*model.Listing, len(ids))

	var g errgroup.Group
	g.SetLimit(MaxFanOut)
	for i, id := range ids {
		g.Go(func() error {
			l, err := fetcher.Fetch(ctx, id)
			if err != nil {
				log.Printf("Warning: deep link fetch for listing %d failed: %v", id, err)
				return nil
			}
			results[i] = &l
			return nil
		})
	}
	g.Wait()

	survivors := make([]model.Listing, 0, len(ids))
	for _, l := range results {
		if l != nil {
			survivors = append(survivors, *l)
		}
	}
	return survivors
}

// InvalidateStaleAlert clears stored alert context once the current
// link no longer carries the multi-id marker, so a dismissed alert does
// not bleed into later browsing.
func InvalidateStaleAlert(store session.Store, currentLink string) {
	if _, ok := session.LoadAlertContext(store); !ok {
		return
	}
	if !HasMultiMarker(currentLink) {
		session.ClearAlertContext(store)
	}
}
