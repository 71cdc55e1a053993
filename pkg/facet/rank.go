package facet

import "sort"

// certificationRank is the fixed prestige order for the certification
// facet. Lower rank sorts first. Designations above NBTHK paper level
// (kokuho, juyo bunkazai, juyo bijutsuhin) outrank the society papers.
var certificationRank = map[string]int{
	"kokuho":          0,
	"juyo bunkazai":   1,
	"juyo bijutsuhin": 2,
	"tokubetsu juyo":  3,
	"juyo":            4,
	"tokubetsu hozon": 5,
	"hozon":           6,
	"nthk kanteisho":  7,
}

// CertificationRank returns the prestige rank for a canonical
// certification value and whether the value is ranked at all.
func CertificationRank(canonical string) (int, bool) {
	r, ok := certificationRank[canonical]
	return r, ok
}

// NormalizeCertification canonicalizes and aggregates certification rows,
// ordered by the prestige rank table. Values absent from the table sort
// after every ranked value, count-descending among themselves.
func NormalizeCertification(rows []Raw) []Value {
	values := normalize(rows, byCountDesc)
	sort.SliceStable(values, func(i, j int) bool {
		ri, iRanked := certificationRank[values[i].Value]
		rj, jRanked := certificationRank[values[j].Value]
		switch {
		case iRanked && jRanked:
			return ri < rj
		case iRanked:
			return true
		case jRanked:
			return false
		}
		// both unranked: the count-descending pre-sort holds
		return false
	})
	return values
}
