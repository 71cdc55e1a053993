package deeplink

import (
	"strings"
	"testing"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
	"github.com/0raclide/nihontowatch-sub000/pkg/quickview"
)

const browseLink = "https://nihontowatch.example/browse"

func TestSyncOpenedWritesListing(t *testing.T) {
	hist := NewMemHistory(browseLink + "?status=available")
	s := NewSync(hist)

	s.Opened(42)
	cur := hist.Current()
	if !strings.Contains(cur, "listing=42") {
		t.Errorf("expected listing=42 in link, got %s", cur)
	}
	if !strings.Contains(cur, "status=available") {
		t.Errorf("expected unrelated params preserved, got %s", cur)
	}
}

func TestSyncOpenedKeepsMultiMarkerOnArrival(t *testing.T) {
	hist := NewMemHistory(browseLink + "?listings=3%2C4&alert_search=juyo")
	s := NewSync(hist)

	// Deep-link arrival: the overlay opens on the marker's first id,
	// so the link already reproduces this state.
	s.Opened(3)
	if got := hist.Current(); !strings.Contains(got, "listings=") {
		t.Errorf("expected multi marker kept, got %s", got)
	}

	// Opening any other listing rewrites to the singular form.
	s.Opened(4)
	cur := hist.Current()
	if strings.Contains(cur, "listings=") || strings.Contains(cur, "alert_search=") {
		t.Errorf("expected marker dropped, got %s", cur)
	}
	if !strings.Contains(cur, "listing=4") {
		t.Errorf("expected listing=4, got %s", cur)
	}
}

func TestSyncMovedDropsMultiMarker(t *testing.T) {
	hist := NewMemHistory(browseLink + "?listings=3%2C4&alert_search=juyo")
	s := NewSync(hist)

	s.Moved(4)
	cur := hist.Current()
	if strings.Contains(cur, "listings=") || strings.Contains(cur, "alert_search=") {
		t.Errorf("expected multi marker dropped after navigation, got %s", cur)
	}
	if !strings.Contains(cur, "listing=4") {
		t.Errorf("expected listing=4, got %s", cur)
	}
}

func TestSyncClosedStripsOverlayParams(t *testing.T) {
	hist := NewMemHistory(browseLink + "?listing=42&sort=price_asc")
	s := NewSync(hist)

	s.Closed()
	cur := hist.Current()
	if strings.Contains(cur, "listing") {
		t.Errorf("expected overlay params stripped, got %s", cur)
	}
	if !strings.Contains(cur, "sort=price_asc") {
		t.Errorf("expected unrelated params preserved, got %s", cur)
	}
}

func TestSyncAttachFollowsNavigator(t *testing.T) {
	hist := NewMemHistory(browseLink)
	s := NewSync(hist)
	nav := quickview.New(quickview.FallbackFirst)
	detach := s.Attach(nav)

	nav.SetListings([]model.Listing{
		{ID: 10, Title: "Katana"},
		{ID: 20, Title: "Wakizashi"},
		{ID: 30, Title: "Tsuba"},
	})
	nav.OpenAt(1)
	if cur := hist.Current(); !strings.Contains(cur, "listing=20") {
		t.Errorf("expected listing=20 after open, got %s", cur)
	}

	nav.Next()
	if cur := hist.Current(); !strings.Contains(cur, "listing=30") {
		t.Errorf("expected listing=30 after next, got %s", cur)
	}

	nav.Close()
	if cur := hist.Current(); strings.Contains(cur, "listing") {
		t.Errorf("expected params stripped after close, got %s", cur)
	}

	// Detached sync stops following.
	detach()
	nav.OpenAt(0)
	if cur := hist.Current(); strings.Contains(cur, "listing") {
		t.Errorf("expected no tracking after detach, got %s", cur)
	}
}

func TestSyncRebindKeepsLinkOnSameListing(t *testing.T) {
	hist := NewMemHistory(browseLink)
	s := NewSync(hist)
	nav := quickview.New(quickview.FallbackFirst)
	s.Attach(nav)

	nav.SetListings([]model.Listing{{ID: 10}, {ID: 20}})
	nav.OpenAt(1)

	// Catalog reload reorders; the cursor follows id 20 and the link
	// keeps naming it.
	nav.SetListings([]model.Listing{{ID: 20}, {ID: 10}})
	if cur := hist.Current(); !strings.Contains(cur, "listing=20") {
		t.Errorf("expected listing=20 after rebind, got %s", cur)
	}
}
