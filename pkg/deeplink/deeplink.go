// Package deeplink turns shareable listing references into an open
// quick-view state and mirrors that state back into a shareable form.
// A link names either one listing (listing=<id>) or several
// (listings=<id1>,<id2>,... with optional alert_search context from a
// saved-search notification). Resolution is tolerant: bad ids are
// filtered, failed fetches dropped, and a link that yields nothing
// leaves the UI exactly as it was.
package deeplink

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter keys understood by Parse and written by Sync.
const (
	ParamListing     = "listing"
	ParamListings    = "listings"
	ParamAlertSearch = "alert_search"
)

// Request is the parsed form of a deep link. Exactly one of SingleID /
// MultiIDs is set; the multi shape wins when a link carries both.
type Request struct {
	SingleID    int64
	MultiIDs    []int64
	AlertSearch string
}

// IsZero reports whether the link referenced no valid listing.
func (r Request) IsZero() bool {
	return r.SingleID == 0 && len(r.MultiIDs) == 0
}

// Parse extracts a Request from a raw link. It accepts full URLs, bare
// query strings and "?"-prefixed queries. Non-numeric ids are filtered
// out and duplicates removed, preserving first-seen order. Parse never
// fails; an unusable link produces a zero Request.
func Parse(raw string) Request {
	q := queryValues(strings.TrimSpace(raw))
	if q == nil {
		return Request{}
	}

	var req Request
	if vals, ok := q[ParamListings]; ok {
		// Multi takes priority even when a stray singular parameter
		// rides along.
		req.MultiIDs = parseIDList(vals)
		req.AlertSearch = q.Get(ParamAlertSearch)
		return req
	}
	if v := q.Get(ParamListing); v != "" {
		if id, ok := parseID(v); ok {
			req.SingleID = id
		}
	}
	return req
}

// BuildMultiLink rewrites base into a multi-listing link carrying the
// given ids, tagged with an alert-search name when one is set. The
// singular overlay parameter is dropped and ids render comma-joined in
// order. Without ids, or when base does not parse, base is returned
// unchanged.
func BuildMultiLink(base string, ids []int64, alertSearch string) string {
	if len(ids) == 0 {
		return base
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	q := u.Query()
	q.Set(ParamListings, strings.Join(parts, ","))
	q.Del(ParamListing)
	if alertSearch != "" {
		q.Set(ParamAlertSearch, alertSearch)
	} else {
		q.Del(ParamAlertSearch)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// HasMultiMarker reports whether the link still carries the multi-id
// shape. The alert banner checks this to self-invalidate once browsing
// has moved on.
func HasMultiMarker(raw string) bool {
	q := queryValues(strings.TrimSpace(raw))
	if q == nil {
		return false
	}
	_, ok := q[ParamListings]
	return ok
}

func queryValues(raw string) url.Values {
	if raw == "" {
		return nil
	}
	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		if q, err := url.ParseQuery(u.RawQuery); err == nil {
			return q
		}
	}
	if q, err := url.ParseQuery(strings.TrimPrefix(raw, "?")); err == nil {
		return q
	}
	return nil
}

func parseIDList(vals []string) []int64 {
	var ids []int64
	seen := make(map[int64]bool)
	for _, val := range vals {
		for _, part := range strings.Split(val, ",") {
			id, ok := parseID(part)
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
