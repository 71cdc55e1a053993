package query

import (
	"context"
	"testing"
	"time"

	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

func testCatalog() []model.Listing {
	t0 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	return []model.Listing{
		{
			ID: 1, Title: "Katana, Bizen Osafune Sukesada", Category: "刀",
			Certification: "重要刀剣", Period: "室町", Signature: model.SignatureZaimei,
			Status: model.StatusAvailable, PriceJPY: 2_500_000, NagasaCM: 70.2,
			Dealer:    &model.Dealer{ID: 1, Name: "Aoi Art"},
			UpdatedAt: t0.Add(3 * time.Hour),
		},
		{
			ID: 2, Title: "Katana, Mino Kanemoto", Category: "katana",
			Certification: "hozon", Period: "muromachi", Signature: model.SignatureMumei,
			Status: model.StatusAvailable, PriceJPY: 650_000, NagasaCM: 66.4,
			Dealer:    &model.Dealer{ID: 2, Name: "Seiyudo"},
			UpdatedAt: t0.Add(2 * time.Hour),
		},
		{
			ID: 3, Title: "Wakizashi, Echizen Seki", Category: "脇差",
			Certification: "保存刀剣", Period: "江戸", Signature: model.SignatureZaimei,
			Status: model.StatusSold, PriceJPY: 380_000, NagasaCM: 45,
			Dealer:    &model.Dealer{ID: 1, Name: "Aoi Art"},
			UpdatedAt: t0.Add(time.Hour),
		},
		{
			ID: 4, Title: "Tsuba, Higo school", Category: "鍔",
			Status: model.StatusAvailable, PriceOnAsk: true,
			Dealer:    &model.Dealer{ID: 2, Name: "Seiyudo"},
			UpdatedAt: t0.Add(4 * time.Hour),
		},
	}
}

func TestLocalSearchCategoryAcrossScripts(t *testing.T) {
	s := NewLocal(testCatalog())

	// 刀 and "katana" are one canonical category; both listings match.
	resp := s.Search(context.Background(), SearchOptions{
		Filters: Filters{Categories: []string{"katana"}},
	})
	if resp.Meta.Total != 2 {
		t.Fatalf("expected 2 katana, got %d", resp.Meta.Total)
	}
	for _, l := range resp.Listings {
		if l.ID != 1 && l.ID != 2 {
			t.Errorf("unexpected listing %d in katana results", l.ID)
		}
	}
}

func TestLocalSearchOpenOnly(t *testing.T) {
	s := NewLocal(testCatalog())
	resp := s.Search(context.Background(), SearchOptions{
		Filters: Filters{OpenOnly: true},
	})
	if resp.Meta.Total != 3 {
		t.Errorf("expected 3 open listings, got %d", resp.Meta.Total)
	}
	for _, l := range resp.Listings {
		if l.ID == 3 {
			t.Error("sold listing 3 leaked into open-only results")
		}
	}
}

func TestLocalSearchPriceRangeExcludesUnpriced(t *testing.T) {
	s := NewLocal(testCatalog())
	min := 0.0
	resp := s.Search(context.Background(), SearchOptions{
		Filters: Filters{PriceMin: &min},
	})
	// Price-on-ask tsuba has no concrete price, so any price constraint
	// drops it.
	if resp.Meta.Total != 3 {
		t.Errorf("expected 3 priced listings, got %d", resp.Meta.Total)
	}

	lo, hi := 500_000.0, 1_000_000.0
	resp = s.Search(context.Background(), SearchOptions{
		Filters: Filters{PriceMin: &lo, PriceMax: &hi},
	})
	if resp.Meta.Total != 1 || resp.Listings[0].ID != 2 {
		t.Errorf("expected only listing 2 in 500k-1M, got %+v", resp.Listings)
	}
}

func TestLocalSearchTextQuery(t *testing.T) {
	s := NewLocal(testCatalog())
	resp := s.Search(context.Background(), SearchOptions{
		Filters: Filters{Query: "bizen"},
	})
	if resp.Meta.Total != 1 || resp.Listings[0].ID != 1 {
		t.Errorf("expected listing 1 for 'bizen', got %+v", resp.Listings)
	}

	// Dealer names are searchable too.
	resp = s.Search(context.Background(), SearchOptions{
		Filters: Filters{Query: "seiyudo"},
	})
	if resp.Meta.Total != 2 {
		t.Errorf("expected 2 Seiyudo listings, got %d", resp.Meta.Total)
	}
}

func TestLocalSearchSortAndPaging(t *testing.T) {
	s := NewLocal(testCatalog())

	resp := s.Search(context.Background(), SearchOptions{Limit: 2})
	if len(resp.Listings) != 2 {
		t.Fatalf("expected page of 2, got %d", len(resp.Listings))
	}
	// Default order is most recently updated first.
	if resp.Listings[0].ID != 4 || resp.Listings[1].ID != 1 {
		t.Errorf("expected ids [4 1], got [%d %d]", resp.Listings[0].ID, resp.Listings[1].ID)
	}
	if !resp.Meta.Truncated {
		t.Error("expected Truncated with more pages left")
	}

	resp = s.Search(context.Background(), SearchOptions{Limit: 2, Offset: 2})
	if resp.Listings[0].ID != 2 || resp.Listings[1].ID != 3 {
		t.Errorf("expected ids [2 3], got [%d %d]", resp.Listings[0].ID, resp.Listings[1].ID)
	}
	if resp.Meta.Truncated {
		t.Error("expected Truncated false on last page")
	}

	// Price ascending sinks the unpriced tsuba to the end.
	resp = s.Search(context.Background(), SearchOptions{Sort: SortPriceAsc})
	ids := []int64{resp.Listings[0].ID, resp.Listings[1].ID, resp.Listings[2].ID, resp.Listings[3].ID}
	want := []int64{3, 2, 1, 4}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("price asc position %d: expected %d, got %d", i, want[i], ids[i])
		}
	}
}

func TestLocalFacetRowsLiftOwnDimension(t *testing.T) {
	s := NewLocal(testCatalog())
	resp := s.Search(context.Background(), SearchOptions{
		Filters: Filters{Categories: []string{"katana"}},
	})

	// The item-type rows ignore the category filter itself, so the
	// other types keep their counts for multi-select.
	rows := resp.Facets[facet.DimItemType]
	byValue := make(map[string]int, len(rows))
	for _, r := range rows {
		byValue[r.Value] += r.Count
	}
	if byValue["刀"]+byValue["katana"] != 2 {
		t.Errorf("expected 2 katana rows total, got %+v", rows)
	}
	if byValue["脇差"] != 1 {
		t.Errorf("expected wakizashi still counted, got %+v", rows)
	}

	// The dealer rows do respect the category filter.
	dealers := resp.Facets[facet.DimDealer]
	dealerCounts := make(map[string]int, len(dealers))
	for _, r := range dealers {
		dealerCounts[r.Value] = r.Count
	}
	if dealerCounts["Aoi Art"] != 1 || dealerCounts["Seiyudo"] != 1 {
		t.Errorf("expected one katana per dealer, got %+v", dealers)
	}
}

func TestLocalPriceHistogram(t *testing.T) {
	s := NewLocal(testCatalog())
	resp := s.Search(context.Background(), SearchOptions{})

	h := resp.PriceHistogram
	if h == nil {
		t.Fatal("expected a price histogram")
	}
	if h.TotalWithValue != 3 {
		t.Errorf("expected 3 priced listings, got %d", h.TotalWithValue)
	}
	if h.MaxValue != 2_500_000 {
		t.Errorf("expected max value 2500000, got %v", h.MaxValue)
	}
	counts := make(map[int]int, len(h.Buckets))
	for _, b := range h.Buckets {
		counts[b.Index] = b.Count
	}
	// 380k lands in the 300k bucket, 650k and 2.5M on exact boundaries.
	if counts[6] != 1 || counts[9] != 1 || counts[15] != 1 {
		t.Errorf("unexpected bucket distribution %+v", h.Buckets)
	}
}

func TestLocalNagasaHistogramLiftsOwnRange(t *testing.T) {
	s := NewLocal(testCatalog())
	lo := 60.0
	resp := s.Search(context.Background(), SearchOptions{
		Filters: Filters{NagasaMin: &lo},
	})
	if resp.Meta.Total != 2 {
		t.Fatalf("expected 2 listings over 60cm, got %d", resp.Meta.Total)
	}
	// The histogram ignores the nagasa range itself: the 45cm wakizashi
	// still contributes.
	if resp.NagasaHistogram == nil || resp.NagasaHistogram.TotalWithValue != 3 {
		t.Errorf("expected histogram over all 3 blades, got %+v", resp.NagasaHistogram)
	}
}

func TestLocalFetch(t *testing.T) {
	s := NewLocal(testCatalog())

	l, err := s.Fetch(context.Background(), 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if l.ID != 2 || l.Dealer == nil || l.Dealer.Name != "Seiyudo" {
		t.Errorf("unexpected listing %+v", l)
	}

	// The returned listing is a copy; mutating it must not corrupt the
	// snapshot.
	l.Dealer.Name = "changed"
	again, _ := s.Fetch(context.Background(), 2)
	if again.Dealer.Name != "Seiyudo" {
		t.Error("expected snapshot isolated from caller mutation")
	}

	if _, err := s.Fetch(context.Background(), 999); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestLocalSetCatalog(t *testing.T) {
	s := NewLocal(testCatalog())
	s.SetCatalog([]model.Listing{{ID: 50, Title: "Kabuto", Category: "兜", Status: model.StatusAvailable}})
	if s.Len() != 1 {
		t.Errorf("expected snapshot replaced, len %d", s.Len())
	}
	if _, err := s.Fetch(context.Background(), 1); err == nil {
		t.Error("expected old listing gone after swap")
	}
}
