// Package facet turns the raw facet rows returned by the query service
// into canonical, aggregated, ordered filter options.
//
// Dealer sites disagree on vocabulary: the same item type arrives as 刀,
// "katana" or "catana" depending on the source scraper. Normalization maps
// every variant onto one canonical value, sums the counts, and orders the
// result by the policy of its dimension.
package facet

import (
	"sort"
	"strings"
)

// Raw is one unnormalized facet row as delivered by the query service.
type Raw struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Value is one canonical filter option with its aggregated count.
type Value struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Dimension identifies a filterable facet of the catalog.
type Dimension string

const (
	DimItemType      Dimension = "item_type"
	DimCertification Dimension = "certification"
	DimDealer        Dimension = "dealer"
	DimPeriod        Dimension = "period"
	DimSignature     Dimension = "signature"
)

// Canonical maps a raw facet value onto its canonical form. Values absent
// from the synonym table pass through case-folded; nothing is rejected.
func Canonical(raw string) string {
	folded := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := synonyms[folded]; ok {
		return canonical
	}
	return folded
}

// Normalize canonicalizes and aggregates raw rows, dropping empty values
// and zero counts, and orders the result count-descending (ties broken
// alphabetically so the output is stable).
func Normalize(rows []Raw) []Value {
	return normalize(rows, byCountDesc)
}

// NormalizeDimension applies the ordering policy of the given dimension:
// certifications order by the prestige rank table, everything else by count.
func NormalizeDimension(dim Dimension, rows []Raw) []Value {
	if dim == DimCertification {
		return NormalizeCertification(rows)
	}
	return Normalize(rows)
}

func normalize(rows []Raw, less func(a, b Value) bool) []Value {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.Count <= 0 {
			continue
		}
		canonical := Canonical(row.Value)
		if canonical == "" {
			continue
		}
		counts[canonical] += row.Count
	}

	values := make([]Value, 0, len(counts))
	for v, c := range counts {
		values = append(values, Value{Value: v, Count: c})
	}
	sort.Slice(values, func(i, j int) bool {
		return less(values[i], values[j])
	})
	return values
}

func byCountDesc(a, b Value) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Value < b.Value
}

// Group names a coarse category bucket of item types.
type Group string

const (
	GroupBlades   Group = "blades"
	GroupFittings Group = "fittings"
	GroupArmor    Group = "armor"
	GroupOther    Group = "other"
)

// Groups returns the category buckets in display order.
func Groups() []Group {
	return []Group{GroupBlades, GroupFittings, GroupArmor, GroupOther}
}

// GroupOf returns the category bucket a canonical item type belongs to.
// Types in no membership set land in GroupOther.
func GroupOf(canonical string) Group {
	switch {
	case bladeTypes[canonical]:
		return GroupBlades
	case fittingTypes[canonical]:
		return GroupFittings
	case armorTypes[canonical]:
		return GroupArmor
	}
	return GroupOther
}

// Partition splits normalized item-type values into the category buckets,
// preserving the incoming order within each bucket.
func Partition(values []Value) map[Group][]Value {
	out := make(map[Group][]Value, 4)
	for _, v := range values {
		g := GroupOf(v.Value)
		out[g] = append(out[g], v)
	}
	return out
}
