package query

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// Client talks to a remote listing service over HTTP with safety
// wrappers: it enforces timeouts, limits concurrent requests, and keeps
// search failures soft. Safe for concurrent use.
type Client struct {
	baseURL   string
	httpc     *http.Client
	semaphore chan struct{}
	timeout   time.Duration

	// For testing: allow overriding request execution
	doRequest func(req *http.Request) (*http.Response, error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the default per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpc = httpc
		c.doRequest = httpc.Do
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	httpc := &http.Client{}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpc:     httpc,
		semaphore: make(chan struct{}, MaxConcurrentRequests),
		timeout:   DefaultTimeout,
		doRequest: httpc.Do,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a filtered, paged search. It returns an empty response
// (not an error) on any failure; the cause lands in Meta.Error.
func (c *Client) Search(ctx context.Context, opts SearchOptions) SearchResponse {
	start := time.Now()

	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-ctx.Done():
		return emptyResponse(time.Since(start), "context cancelled waiting for request slot")
	}

	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := c.baseURL + "/api/search?" + searchQuery(opts).Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return emptyResponse(time.Since(start), "bad search request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequest(req)
	if err != nil {
		return emptyResponse(time.Since(start), "search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return emptyResponse(time.Since(start), fmt.Sprintf("search status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return emptyResponse(time.Since(start), "search body read failed")
	}
	return parseSearchResponse(body, int(time.Since(start).Milliseconds()))
}

// Fetch retrieves one listing by id. Non-2xx statuses and unusable
// bodies are errors; the caller decides whether that is fatal.
func (c *Client) Fetch(ctx context.Context, id int64) (model.Listing, error) {
	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-ctx.Done():
		return model.Listing{}, ctx.Err()
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/api/listing/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return model.Listing{}, fmt.Errorf("listing %d: %w", id, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequest(req)
	if err != nil {
		return model.Listing{}, fmt.Errorf("listing %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Listing{}, fmt.Errorf("listing %d: status %d", id, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return model.Listing{}, fmt.Errorf("listing %d: %w", id, err)
	}
	if len(body) == 0 {
		return model.Listing{}, fmt.Errorf("listing %d: empty body", id)
	}
	return parseListing(body, id)
}

// searchQuery flattens SearchOptions into URL parameters.
func searchQuery(opts SearchOptions) url.Values {
	v := url.Values{}
	f := opts.Filters
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	setMulti(v, "category", f.Categories)
	setMulti(v, "certification", f.Certifications)
	setMulti(v, "dealer", f.Dealers)
	setMulti(v, "period", f.Periods)
	setMulti(v, "signature", f.Signatures)
	if f.OpenOnly {
		v.Set("open_only", "1")
	}
	setRange(v, "price_min", f.PriceMin)
	setRange(v, "price_max", f.PriceMax)
	setRange(v, "nagasa_min", f.NagasaMin)
	setRange(v, "nagasa_max", f.NagasaMax)

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	v.Set("limit", strconv.Itoa(limit))
	if opts.Offset > 0 {
		v.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Sort != "" {
		v.Set("sort", opts.Sort)
	}
	return v
}

func setMulti(v url.Values, key string, vals []string) {
	if len(vals) > 0 {
		v.Set(key, strings.Join(vals, ","))
	}
}

func setRange(v url.Values, key string, val *float64) {
	if val != nil {
		v.Set(key, strconv.FormatFloat(*val, 'f', -1, 64))
	}
}

// parseSearchResponse decodes service output, tolerating a bare
// listings array from older service revisions. Malformed payloads
// produce an empty response with the parse failure in Meta.
func parseSearchResponse(body []byte, elapsedMs int) SearchResponse {
	var resp SearchResponse
	resp.Meta.ElapsedMs = elapsedMs

	if len(body) == 0 {
		resp.Listings = []model.Listing{}
		return resp
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		var listingsOnly struct {
			Listings []model.Listing `json:"listings"`
		}
		if err := json.Unmarshal(body, &listingsOnly); err != nil {
			resp.Listings = []model.Listing{}
			resp.Meta.Error = "failed to parse response"
			return resp
		}
		resp.Listings = listingsOnly.Listings
	}
	resp.Meta.ElapsedMs = elapsedMs
	if resp.Listings == nil {
		resp.Listings = []model.Listing{}
	}
	return resp
}

// detailEnvelope covers the wire shapes the detail endpoint has shipped
// with: a wrapped listing with the dealer embedded or alongside under a
// singular or legacy plural key.
type detailEnvelope struct {
	Listing *model.Listing `json:"listing"`
	Dealer  *model.Dealer  `json:"dealer"`
	Dealers []model.Dealer `json:"dealers"`
}

func parseListing(body []byte, id int64) (model.Listing, error) {
	var env detailEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Listing != nil {
		l := *env.Listing
		if l.Dealer == nil {
			if env.Dealer != nil {
				l.Dealer = env.Dealer
			} else if len(env.Dealers) > 0 {
				l.Dealer = &env.Dealers[0]
			}
		}
		return l, nil
	}

	var l model.Listing
	if err := json.Unmarshal(body, &l); err != nil {
		return model.Listing{}, fmt.Errorf("listing %d: unparseable body", id)
	}
	if l.ID == 0 {
		return model.Listing{}, fmt.Errorf("listing %d: body carries no listing", id)
	}
	return l, nil
}
