package deeplink

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
	"github.com/0raclide/nihontowatch-sub000/pkg/quickview"
	"github.com/0raclide/nihontowatch-sub000/pkg/session"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Request
	}{
		{
			name: "single id",
			raw:  "listing=42",
			want: Request{SingleID: 42},
		},
		{
			name: "single id full url",
			raw:  "https://nihontowatch.example/browse?listing=42",
			want: Request{SingleID: 42},
		},
		{
			name: "question mark prefix",
			raw:  "?listing=42",
			want: Request{SingleID: 42},
		},
		{
			name: "multi ids",
			raw:  "listings=3,4,5",
			want: Request{MultiIDs: []int64{3, 4, 5}},
		},
		{
			name: "multi wins over single",
			raw:  "listing=42&listings=3,4",
			want: Request{MultiIDs: []int64{3, 4}},
		},
		{
			name: "multi with alert context",
			raw:  "listings=3,4&alert_search=juyo+katana",
			want: Request{MultiIDs: []int64{3, 4}, AlertSearch: "juyo katana"},
		},
		{
			name: "non-numeric filtered",
			raw:  "listings=3,abc,4",
			want: Request{MultiIDs: []int64{3, 4}},
		},
		{
			name: "duplicates removed in order",
			raw:  "listings=5,3,5,3,9",
			want: Request{MultiIDs: []int64{5, 3, 9}},
		},
		{
			name: "empty elements skipped",
			raw:  "listings=3,,4,",
			want: Request{MultiIDs: []int64{3, 4}},
		},
		{
			name: "negative and zero ids rejected",
			raw:  "listings=-1,0,7",
			want: Request{MultiIDs: []int64{7}},
		},
		{
			name: "non-numeric single",
			raw:  "listing=abc",
			want: Request{},
		},
		{
			name: "all invalid multi stays multi shape",
			raw:  "listing=42&listings=abc",
			want: Request{},
		},
		{
			name: "unrelated params ignored",
			raw:  "status=available&sort=price_asc",
			want: Request{},
		},
		{
			name: "garbage",
			raw:  "not a link at all",
			want: Request{},
		},
		{
			name: "empty",
			raw:  "",
			want: Request{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q): expected %+v, got %+v", tt.raw, tt.want, got)
			}
		})
	}
}

func TestBuildMultiLink(t *testing.T) {
	base := "https://nihontowatch.example/browse?listing=9&status=available"
	got := BuildMultiLink(base, []int64{3, 4, 5}, "juyo katana")

	req := Parse(got)
	want := Request{MultiIDs: []int64{3, 4, 5}, AlertSearch: "juyo katana"}
	if !reflect.DeepEqual(req, want) {
		t.Errorf("expected round-trip %+v, got %+v from %q", want, req, got)
	}
	if !HasMultiMarker(got) {
		t.Error("expected multi marker on built link")
	}
	// Unrelated parameters survive the rewrite.
	if !strings.Contains(got, "status=available") {
		t.Errorf("expected status param preserved, got %q", got)
	}

	if got := BuildMultiLink(base, nil, "x"); got != base {
		t.Errorf("expected base unchanged without ids, got %q", got)
	}
}

func TestHasMultiMarker(t *testing.T) {
	if !HasMultiMarker("listings=3,4") {
		t.Error("expected marker on multi link")
	}
	if !HasMultiMarker("https://nihontowatch.example/browse?listings=3") {
		t.Error("expected marker on multi url")
	}
	if HasMultiMarker("listing=3") {
		t.Error("expected no marker on single link")
	}
	if HasMultiMarker("") {
		t.Error("expected no marker on empty link")
	}
}

// stubFetcher serves listings by id with configurable failures and
// per-id delays, so completion order can differ from request order.
type stubFetcher struct {
	mu    sync.Mutex
	fail  map[int64]bool
	delay map[int64]time.Duration
	calls []int64
}

func (f *stubFetcher) Fetch(ctx context.Context, id int64) (model.Listing, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	if d := f.delay[id]; d > 0 {
		time.Sleep(d)
	}
	if f.fail[id] {
		return model.Listing{}, fmt.Errorf("listing %d: status 404", id)
	}
	return model.Listing{ID: id, Title: fmt.Sprintf("Listing %d", id), Status: model.StatusAvailable}, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestResolveMultiPartialFailure(t *testing.T) {
	fetcher := &stubFetcher{
		fail: map[int64]bool{999: true},
		// id 3 resolves last; order must still follow the request.
		delay: map[int64]time.Duration{3: 30 * time.Millisecond},
	}
	nav := quickview.New(quickview.FallbackFirst)
	r := NewResolver(fetcher, nil)

	if !r.Resolve(context.Background(), "listings=3,4,999", nav) {
		t.Fatal("expected resolve to open the carousel")
	}
	if !nav.IsOpen() {
		t.Fatal("expected navigator open")
	}
	if got := nav.CurrentIndex(); got != 0 {
		t.Errorf("expected index 0, got %d", got)
	}
	listings := nav.Listings()
	if len(listings) != 2 || listings[0].ID != 3 || listings[1].ID != 4 {
		t.Errorf("expected survivors [3 4] in request order, got %+v", listings)
	}
}

func TestResolveMultiAllFail(t *testing.T) {
	fetcher := &stubFetcher{fail: map[int64]bool{3: true, 4: true}}
	nav := quickview.New(quickview.FallbackFirst)
	r := NewResolver(fetcher, nil)

	if r.Resolve(context.Background(), "listings=3,4", nav) {
		t.Error("expected resolve to report no-op")
	}
	if nav.IsOpen() {
		t.Error("expected navigator untouched when nothing survives")
	}
	if nav.Len() != 0 {
		t.Errorf("expected no listings bound, got %d", nav.Len())
	}
}

func TestResolveSingle(t *testing.T) {
	fetcher := &stubFetcher{}
	nav := quickview.New(quickview.FallbackFirst)
	r := NewResolver(fetcher, nil)

	if !r.Resolve(context.Background(), "listing=42", nav) {
		t.Fatal("expected resolve to open")
	}
	cur, ok := nav.Current()
	if !ok || cur.ID != 42 {
		t.Errorf("expected current listing 42, got %+v ok=%v", cur, ok)
	}
}

func TestResolveSingleFetchFails(t *testing.T) {
	fetcher := &stubFetcher{fail: map[int64]bool{42: true}}
	nav := quickview.New(quickview.FallbackFirst)
	r := NewResolver(fetcher, nil)

	if r.Resolve(context.Background(), "listing=42", nav) {
		t.Error("expected resolve to fail soft")
	}
	if nav.IsOpen() {
		t.Error("expected navigator untouched on fetch failure")
	}
}

func TestResolveOneShot(t *testing.T) {
	fetcher := &stubFetcher{}
	nav := quickview.New(quickview.FallbackFirst)
	r := NewResolver(fetcher, nil)

	if !r.Resolve(context.Background(), "listing=7", nav) {
		t.Fatal("expected first resolve to open")
	}
	nav.Close()

	// A re-render resolving the same link again must not reopen the
	// overlay the user just dismissed.
	if r.Resolve(context.Background(), "listing=7", nav) {
		t.Error("expected second resolve to be a no-op")
	}
	if nav.IsOpen() {
		t.Error("expected overlay to stay closed")
	}
	if fetcher.callCount() != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", fetcher.callCount())
	}
}

func TestResolveOneShotCoversFailures(t *testing.T) {
	fetcher := &stubFetcher{fail: map[int64]bool{7: true}}
	r := NewResolver(fetcher, nil)
	nav := quickview.New(quickview.FallbackFirst)

	r.Resolve(context.Background(), "listing=7", nav)
	if !r.Handled() {
		t.Error("expected resolver marked handled after a failed attempt")
	}
	if r.Resolve(context.Background(), "listing=7", nav) {
		t.Error("expected no retry on re-render")
	}
	if fetcher.callCount() != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", fetcher.callCount())
	}
}

func TestResolveStoresAlertContext(t *testing.T) {
	fetcher := &stubFetcher{fail: map[int64]bool{999: true}}
	nav := quickview.New(quickview.FallbackFirst)
	store := session.NewMemStore()
	r := NewResolver(fetcher, store)

	r.Resolve(context.Background(), "listings=3,4,999&alert_search=juyo+katana", nav)

	ctx, ok := session.LoadAlertContext(store)
	if !ok {
		t.Fatal("expected alert context stored")
	}
	if ctx.SearchName != "juyo katana" {
		t.Errorf("expected search name preserved, got %q", ctx.SearchName)
	}
	// The banner reports "N of M" against the link's full id count,
	// not just the survivors.
	if ctx.TotalMatches != 3 {
		t.Errorf("expected 3 total matches, got %d", ctx.TotalMatches)
	}
}

func TestResolveNilNavigator(t *testing.T) {
	fetcher := &stubFetcher{}
	r := NewResolver(fetcher, nil)
	if r.Resolve(context.Background(), "listing=42", nil) {
		t.Error("expected no-op without a navigator")
	}
	if fetcher.callCount() != 0 {
		t.Errorf("expected no fetches without a navigator, got %d", fetcher.callCount())
	}
}

func TestInvalidateStaleAlert(t *testing.T) {
	store := session.NewMemStore()
	session.SaveAlertContext(store, model.AlertContext{SearchName: "x", TotalMatches: 2})

	// Marker still present: context survives.
	InvalidateStaleAlert(store, "listings=3,4")
	if _, ok := session.LoadAlertContext(store); !ok {
		t.Fatal("expected context kept while marker present")
	}

	// Marker gone: context cleared.
	InvalidateStaleAlert(store, "listing=3")
	if _, ok := session.LoadAlertContext(store); ok {
		t.Error("expected context cleared once marker gone")
	}
}
