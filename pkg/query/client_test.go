package query

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func stubResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func stubClient(fn func(req *http.Request) (*http.Response, error)) *Client {
	c := NewClient("http://svc.test")
	c.doRequest = fn
	return c
}

func TestClientSearchParsesResponse(t *testing.T) {
	const body = `{
		"listings": [{"id": 7, "title": "Katana, Bizen Osafune", "status": "available"}],
		"facets": {"item_type": [{"value": "刀", "count": 12}]},
		"meta": {"total": 1}
	}`
	var gotURL string
	c := stubClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return stubResponse(200, body), nil
	})

	resp := c.Search(context.Background(), SearchOptions{
		Filters: Filters{Query: "bizen", Categories: []string{"katana"}},
		Limit:   20,
	})

	if resp.Meta.Error != "" {
		t.Fatalf("unexpected soft failure: %s", resp.Meta.Error)
	}
	if len(resp.Listings) != 1 || resp.Listings[0].ID != 7 {
		t.Errorf("expected listing 7, got %+v", resp.Listings)
	}
	if rows := resp.Facets["item_type"]; len(rows) != 1 || rows[0].Count != 12 {
		t.Errorf("expected one item_type row with count 12, got %+v", rows)
	}
	if !strings.Contains(gotURL, "q=bizen") || !strings.Contains(gotURL, "category=katana") {
		t.Errorf("expected filters in query string, got %s", gotURL)
	}
	if !strings.Contains(gotURL, "limit=20") {
		t.Errorf("expected limit in query string, got %s", gotURL)
	}
}

func TestClientSearchSoftFailsOnStatus(t *testing.T) {
	c := stubClient(func(req *http.Request) (*http.Response, error) {
		return stubResponse(503, ""), nil
	})
	resp := c.Search(context.Background(), SearchOptions{})
	if resp.Meta.Error != "search status 503" {
		t.Errorf("expected status soft failure, got %q", resp.Meta.Error)
	}
	if resp.Listings == nil || len(resp.Listings) != 0 {
		t.Errorf("expected empty non-nil listings, got %+v", resp.Listings)
	}
}

func TestClientSearchSoftFailsOnTransport(t *testing.T) {
	c := stubClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	resp := c.Search(context.Background(), SearchOptions{})
	if resp.Meta.Error != "search request failed" {
		t.Errorf("expected transport soft failure, got %q", resp.Meta.Error)
	}
}

func TestClientSearchSoftFailsOnGarbage(t *testing.T) {
	c := stubClient(func(req *http.Request) (*http.Response, error) {
		return stubResponse(200, "<html>gateway error</html>"), nil
	})
	resp := c.Search(context.Background(), SearchOptions{})
	if resp.Meta.Error != "failed to parse response" {
		t.Errorf("expected parse soft failure, got %q", resp.Meta.Error)
	}
	if len(resp.Listings) != 0 {
		t.Errorf("expected no listings, got %+v", resp.Listings)
	}
}

func TestClientFetchShapes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDealer string
	}{
		{
			name:       "wrapped with embedded dealer",
			body:       `{"listing": {"id": 3, "title": "Tanto", "status": "available", "dealer": {"id": 1, "name": "Aoi Art"}}}`,
			wantDealer: "Aoi Art",
		},
		{
			name:       "wrapped with singular dealer alongside",
			body:       `{"listing": {"id": 3, "title": "Tanto", "status": "available"}, "dealer": {"id": 1, "name": "Aoi Art"}}`,
			wantDealer: "Aoi Art",
		},
		{
			name:       "wrapped with legacy plural dealers",
			body:       `{"listing": {"id": 3, "title": "Tanto", "status": "available"}, "dealers": [{"id": 2, "name": "Seiyudo"}, {"id": 9, "name": "Other"}]}`,
			wantDealer: "Seiyudo",
		},
		{
			name:       "bare listing",
			body:       `{"id": 3, "title": "Tanto", "status": "available", "dealer": {"id": 1, "name": "Aoi Art"}}`,
			wantDealer: "Aoi Art",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stubClient(func(req *http.Request) (*http.Response, error) {
				if !strings.HasSuffix(req.URL.Path, "/api/listing/3") {
					t.Errorf("unexpected path %s", req.URL.Path)
				}
				return stubResponse(200, tt.body), nil
			})
			l, err := c.Fetch(context.Background(), 3)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if l.ID != 3 {
				t.Errorf("expected id 3, got %d", l.ID)
			}
			if l.Dealer == nil || l.Dealer.Name != tt.wantDealer {
				t.Errorf("expected dealer %q, got %+v", tt.wantDealer, l.Dealer)
			}
		})
	}
}

func TestClientFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", 404, ""},
		{"server error", 500, "boom"},
		{"empty body", 200, ""},
		{"garbage body", 200, "not json"},
		{"no listing in body", 200, `{"something": "else"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stubClient(func(req *http.Request) (*http.Response, error) {
				return stubResponse(tt.status, tt.body), nil
			})
			if _, err := c.Fetch(context.Background(), 42); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClientFetchTransportError(t *testing.T) {
	c := stubClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial timeout")
	})
	if _, err := c.Fetch(context.Background(), 1); err == nil {
		t.Error("expected error on transport failure")
	}
}

func TestSearchQueryRangeParams(t *testing.T) {
	min, max := 500000.0, 2000000.0
	v := searchQuery(SearchOptions{
		Filters: Filters{PriceMin: &min, PriceMax: &max, OpenOnly: true},
		Offset:  50,
		Sort:    SortPriceAsc,
	})
	if got := v.Get("price_min"); got != "500000" {
		t.Errorf("expected price_min 500000, got %q", got)
	}
	if got := v.Get("price_max"); got != "2000000" {
		t.Errorf("expected price_max 2000000, got %q", got)
	}
	if got := v.Get("open_only"); got != "1" {
		t.Errorf("expected open_only 1, got %q", got)
	}
	if got := v.Get("offset"); got != "50" {
		t.Errorf("expected offset 50, got %q", got)
	}
	if got := v.Get("sort"); got != SortPriceAsc {
		t.Errorf("expected sort %s, got %q", SortPriceAsc, got)
	}
	if got := v.Get("limit"); got != "50" {
		t.Errorf("expected default limit, got %q", got)
	}
}
