// Package query is the boundary to the listing search service: paged,
// filtered search with facet counts and histograms, plus single-listing
// detail fetches. Search fails soft in the manner the browsing UI
// expects, returning an empty response with the problem recorded in
// Meta rather than an error. Fetch returns a real error because the
// deep-link fan-out needs per-listing failure.
package query

import (
	"context"
	"time"

	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// DefaultTimeout bounds a single service round trip.
const DefaultTimeout = 5 * time.Second

// DefaultPageSize is the page length used when a request does not set one.
const DefaultPageSize = 50

// MaxConcurrentRequests limits simultaneous service calls per client.
const MaxConcurrentRequests = 4

// MaxBodySize caps how much of a response body is read (4MB).
const MaxBodySize = 4 * 1024 * 1024

// Service is the query surface the UI consumes. Implementations: Client
// (remote HTTP service) and Local (bundled engine over a catalog file).
type Service interface {
	Search(ctx context.Context, opts SearchOptions) SearchResponse
	Fetch(ctx context.Context, id int64) (model.Listing, error)
}

// Filters holds the active search constraints. Nil range ends are
// unbounded; empty slices leave a dimension unconstrained.
type Filters struct {
	Query          string   `json:"query,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
	Dealers        []string `json:"dealers,omitempty"`
	Periods        []string `json:"periods,omitempty"`
	Signatures     []string `json:"signatures,omitempty"`
	OpenOnly       bool     `json:"open_only,omitempty"`

	PriceMin  *float64 `json:"price_min,omitempty"`
	PriceMax  *float64 `json:"price_max,omitempty"`
	NagasaMin *float64 `json:"nagasa_min,omitempty"`
	NagasaMax *float64 `json:"nagasa_max,omitempty"`
}

// Empty reports whether no constraint is active.
func (f Filters) Empty() bool {
	return f.Query == "" &&
		len(f.Categories) == 0 && len(f.Certifications) == 0 &&
		len(f.Dealers) == 0 && len(f.Periods) == 0 && len(f.Signatures) == 0 &&
		!f.OpenOnly &&
		f.PriceMin == nil && f.PriceMax == nil &&
		f.NagasaMin == nil && f.NagasaMax == nil
}

// Sort orders for search results.
const (
	SortUpdatedDesc = "updated_desc"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortNagasaDesc  = "nagasa_desc"
)

// SearchOptions configures one search call.
type SearchOptions struct {
	Filters Filters
	Offset  int
	Limit   int           // 0 means DefaultPageSize
	Sort    string        // "" means SortUpdatedDesc
	Timeout time.Duration // 0 means the client default
}

// Bucket is one histogram cell, keyed by boundary index.
type Bucket struct {
	Index int `json:"idx"`
	Count int `json:"count"`
}

// Histogram is the service's distribution summary for one numeric
// dimension, aligned with a boundary ladder.
type Histogram struct {
	Boundaries     []float64 `json:"boundaries"`
	Buckets        []Bucket  `json:"buckets"`
	TotalWithValue int       `json:"total_with_value"`
	MaxValue       float64   `json:"max_value"`
}

// Meta describes how a search went. Error is non-empty on soft failure.
type Meta struct {
	ElapsedMs int    `json:"elapsed_ms"`
	Total     int    `json:"total"`
	Truncated bool   `json:"truncated"`
	Error     string `json:"error,omitempty"`
}

// SearchResponse is one page of results plus the facet rows and
// histograms the filter panel renders. Facet rows arrive raw; the UI
// normalizes them.
type SearchResponse struct {
	Listings        []model.Listing                 `json:"listings"`
	Facets          map[facet.Dimension][]facet.Raw `json:"facets,omitempty"`
	PriceHistogram  *Histogram                      `json:"price_histogram,omitempty"`
	NagasaHistogram *Histogram                      `json:"nagasa_histogram,omitempty"`
	Meta            Meta                            `json:"meta"`
}

func emptyResponse(elapsed time.Duration, errMsg string) SearchResponse {
	return SearchResponse{
		Listings: []model.Listing{},
		Meta: Meta{
			ElapsedMs: int(elapsed.Milliseconds()),
			Error:     errMsg,
		},
	}
}
