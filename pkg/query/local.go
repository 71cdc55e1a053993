package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/0raclide/nihontowatch-sub000/pkg/bucket"
	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// Local serves the Service interface from an in-memory catalog
// snapshot, so the browser works straight off a catalog file with no
// service running. Facet counting lifts the counted dimension's own
// constraint, and each numeric histogram lifts its own range, so a
// selected filter does not zero out its siblings.
//
// Safe for concurrent use; the catalog watcher swaps snapshots via
// SetCatalog while the UI reads.
type Local struct {
	mu      sync.RWMutex
	catalog []model.Listing
}

// NewLocal creates a local engine over the given snapshot.
func NewLocal(catalog []model.Listing) *Local {
	return &Local{catalog: catalog}
}

// SetCatalog replaces the snapshot wholesale.
func (s *Local) SetCatalog(catalog []model.Listing) {
	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
}

// Len returns the snapshot size.
func (s *Local) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}

// Search filters, sorts and pages the snapshot. The context is accepted
// for interface symmetry; the engine never blocks on IO.
func (s *Local) Search(_ context.Context, opts SearchOptions) SearchResponse {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := opts.Filters
	var filtered []model.Listing
	for i := range s.catalog {
		if matches(&s.catalog[i], f) {
			filtered = append(filtered, s.catalog[i])
		}
	}
	sortListings(filtered, opts.Sort)

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(filtered) {
		offset = len(filtered)
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := make([]model.Listing, 0, end-offset)
	for _, l := range filtered[offset:end] {
		page = append(page, l.Clone())
	}

	return SearchResponse{
		Listings:        page,
		Facets:          s.facetRows(f),
		PriceHistogram:  s.priceHistogram(f),
		NagasaHistogram: s.nagasaHistogram(f),
		Meta: Meta{
			ElapsedMs: int(time.Since(start).Milliseconds()),
			Total:     len(filtered),
			Truncated: end < len(filtered),
		},
	}
}

// Fetch returns a copy of the listing with the given id.
func (s *Local) Fetch(_ context.Context, id int64) (model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.catalog {
		if s.catalog[i].ID == id {
			return s.catalog[i].Clone(), nil
		}
	}
	return model.Listing{}, fmt.Errorf("listing %d: not found", id)
}

// facetRows counts raw facet values per dimension, each computed with
// that dimension's own filter lifted.
func (s *Local) facetRows(f Filters) map[facet.Dimension][]facet.Raw {
	out := make(map[facet.Dimension][]facet.Raw, 5)
	for _, dim := range []facet.Dimension{
		facet.DimItemType, facet.DimCertification, facet.DimDealer,
		facet.DimPeriod, facet.DimSignature,
	} {
		lifted := withoutDimension(f, dim)
		counts := make(map[string]int)
		for i := range s.catalog {
			l := &s.catalog[i]
			if !matches(l, lifted) {
				continue
			}
			if v := rawFacetValue(l, dim); v != "" {
				counts[v]++
			}
		}
		rows := make([]facet.Raw, 0, len(counts))
		for v, c := range counts {
			rows = append(rows, facet.Raw{Value: v, Count: c})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Value < rows[j].Value })
		out[dim] = rows
	}
	return out
}

func (s *Local) priceHistogram(f Filters) *Histogram {
	lifted := f
	lifted.PriceMin, lifted.PriceMax = nil, nil
	var values []float64
	for i := range s.catalog {
		l := &s.catalog[i]
		if matches(l, lifted) && l.HasPrice() {
			values = append(values, float64(l.PriceJPY))
		}
	}
	return buildHistogram(bucket.Price, values)
}

func (s *Local) nagasaHistogram(f Filters) *Histogram {
	lifted := f
	lifted.NagasaMin, lifted.NagasaMax = nil, nil
	var values []float64
	for i := range s.catalog {
		l := &s.catalog[i]
		if matches(l, lifted) && l.NagasaCM > 0 {
			values = append(values, l.NagasaCM)
		}
	}
	return buildHistogram(bucket.Nagasa, values)
}

func buildHistogram(b *bucket.Bucketizer, values []float64) *Histogram {
	if len(values) == 0 {
		return nil
	}
	dense := make([]int, b.Len())
	maxValue := values[0]
	for _, v := range values {
		dense[b.ValueToIndex(v)]++
		if v > maxValue {
			maxValue = v
		}
	}
	var buckets []Bucket
	for i, c := range dense {
		if c > 0 {
			buckets = append(buckets, Bucket{Index: i, Count: c})
		}
	}
	return &Histogram{
		Boundaries:     b.Boundaries(),
		Buckets:        buckets,
		TotalWithValue: len(values),
		MaxValue:       maxValue,
	}
}

// matches applies every active constraint to one listing.
func matches(l *model.Listing, f Filters) bool {
	if f.OpenOnly && !l.Status.IsOpen() {
		return false
	}
	if f.Query != "" && !textMatch(l, f.Query) {
		return false
	}
	if !canonicalIn(l.Category, f.Categories) {
		return false
	}
	if !canonicalIn(l.Certification, f.Certifications) {
		return false
	}
	if len(f.Dealers) > 0 {
		if l.Dealer == nil || !canonicalIn(l.Dealer.Name, f.Dealers) {
			return false
		}
	}
	if !canonicalIn(l.Period, f.Periods) {
		return false
	}
	if !canonicalIn(string(l.Signature), f.Signatures) {
		return false
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		if !l.HasPrice() {
			return false
		}
		p := float64(l.PriceJPY)
		if f.PriceMin != nil && p < *f.PriceMin {
			return false
		}
		if f.PriceMax != nil && p > *f.PriceMax {
			return false
		}
	}
	if f.NagasaMin != nil || f.NagasaMax != nil {
		if l.NagasaCM <= 0 {
			return false
		}
		if f.NagasaMin != nil && l.NagasaCM < *f.NagasaMin {
			return false
		}
		if f.NagasaMax != nil && l.NagasaCM > *f.NagasaMax {
			return false
		}
	}
	return true
}

// canonicalIn reports whether the listing's raw value, canonicalized,
// is among the wanted canonical values. An empty want list passes.
func canonicalIn(raw string, want []string) bool {
	if len(want) == 0 {
		return true
	}
	c := facet.Canonical(raw)
	for _, w := range want {
		if c == w {
			return true
		}
	}
	return false
}

func textMatch(l *model.Listing, q string) bool {
	q = strings.ToLower(q)
	for _, hay := range []string{l.Title, l.TitleJa, l.Description} {
		if hay != "" && strings.Contains(strings.ToLower(hay), q) {
			return true
		}
	}
	if l.Dealer != nil && strings.Contains(strings.ToLower(l.Dealer.Name), q) {
		return true
	}
	return false
}

func rawFacetValue(l *model.Listing, dim facet.Dimension) string {
	switch dim {
	case facet.DimItemType:
		return l.Category
	case facet.DimCertification:
		return l.Certification
	case facet.DimDealer:
		if l.Dealer == nil {
			return ""
		}
		return l.Dealer.Name
	case facet.DimPeriod:
		return l.Period
	case facet.DimSignature:
		return string(l.Signature)
	}
	return ""
}

func withoutDimension(f Filters, dim facet.Dimension) Filters {
	switch dim {
	case facet.DimItemType:
		f.Categories = nil
	case facet.DimCertification:
		f.Certifications = nil
	case facet.DimDealer:
		f.Dealers = nil
	case facet.DimPeriod:
		f.Periods = nil
	case facet.DimSignature:
		f.Signatures = nil
	}
	return f
}

func sortListings(ls []model.Listing, order string) {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(ls, func(i, j int) bool {
			return priceLess(&ls[i], &ls[j], true)
		})
	case SortPriceDesc:
		sort.SliceStable(ls, func(i, j int) bool {
			return priceLess(&ls[i], &ls[j], false)
		})
	case SortNagasaDesc:
		sort.SliceStable(ls, func(i, j int) bool {
			return ls[i].NagasaCM > ls[j].NagasaCM
		})
	default: // SortUpdatedDesc
		sort.SliceStable(ls, func(i, j int) bool {
			return ls[i].UpdatedAt.After(ls[j].UpdatedAt)
		})
	}
}

// priceLess sinks unpriced listings to the end for either direction.
func priceLess(a, b *model.Listing, asc bool) bool {
	ap, bp := a.HasPrice(), b.HasPrice()
	if ap != bp {
		return ap
	}
	if !ap {
		return false
	}
	if asc {
		return a.PriceJPY < b.PriceJPY
	}
	return a.PriceJPY > b.PriceJPY
}
