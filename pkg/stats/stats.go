// Package stats derives market summaries from a listing set, feeding
// the stats panel and the exported snapshot cards.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/0raclide/nihontowatch-sub000/pkg/facet"
	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// PriceSummary describes the asking-price distribution of a set.
// Quantiles are empirical; Count is the number of concrete prices the
// summary is computed over.
type PriceSummary struct {
	Count  int
	Mean   float64
	Median float64
	P25    float64
	P75    float64
	Min    float64
	Max    float64
	StdDev float64
}

// Summary is the market overview for one listing set.
type Summary struct {
	Total      int
	Open       int
	Sold       int
	Unpriced   int // price on ask or no price at all
	Certified  int // carrying any certification
	Price      PriceSummary
	MeanNagasa float64 // blades only; zero when the set has none
	Categories []facet.Value
}

// Summarize computes the market overview.
func Summarize(listings []model.Listing) Summary {
	s := Summary{Total: len(listings)}

	var prices []float64
	var nagasa []float64
	rows := make([]facet.Raw, 0, len(listings))

	for i := range listings {
		l := &listings[i]
		if l.Status.IsOpen() {
			s.Open++
		}
		if l.Status == model.StatusSold {
			s.Sold++
		}
		if l.Certification != "" {
			s.Certified++
		}
		if l.HasPrice() {
			prices = append(prices, float64(l.PriceJPY))
		} else {
			s.Unpriced++
		}
		if l.NagasaCM > 0 {
			nagasa = append(nagasa, l.NagasaCM)
		}
		if l.Category != "" {
			rows = append(rows, facet.Raw{Value: l.Category, Count: 1})
		}
	}

	s.Price = SummarizePrices(prices)
	if len(nagasa) > 0 {
		s.MeanNagasa = stat.Mean(nagasa, nil)
	}
	s.Categories = facet.Normalize(rows)
	return s
}

// SummarizePrices computes the distribution summary over raw values.
func SummarizePrices(values []float64) PriceSummary {
	if len(values) == 0 {
		return PriceSummary{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	ps := PriceSummary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		ps.StdDev = stat.StdDev(sorted, nil)
	}
	return ps
}
