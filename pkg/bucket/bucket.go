// Package bucket converts continuous numeric domains (price, blade length)
// into a fixed ladder of monotonic buckets and back, backing the range
// sliders and the histogram returned by the query service.
package bucket

import (
	"fmt"
	"sort"
)

// Bucketizer maps values of one numeric domain onto bucket indices over a
// strictly increasing boundary ladder.
type Bucketizer struct {
	boundaries []float64
}

// New creates a Bucketizer over the given boundaries. The slice must be
// non-empty and strictly increasing.
func New(boundaries []float64) (*Bucketizer, error) {
	if len(boundaries) == 0 {
		return nil, fmt.Errorf("bucketizer needs at least one boundary")
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return nil, fmt.Errorf("boundaries must be strictly increasing: [%d]=%v, [%d]=%v",
				i-1, boundaries[i-1], i, boundaries[i])
		}
	}
	b := make([]float64, len(boundaries))
	copy(b, boundaries)
	return &Bucketizer{boundaries: b}, nil
}

// Len returns the number of buckets.
func (b *Bucketizer) Len() int {
	return len(b.boundaries)
}

// Boundaries returns a copy of the boundary ladder.
func (b *Bucketizer) Boundaries() []float64 {
	out := make([]float64, len(b.boundaries))
	copy(out, b.boundaries)
	return out
}

// ValueToIndex returns the greatest index i such that boundaries[i] <= v,
// or 0 when v lies below the first boundary.
func (b *Bucketizer) ValueToIndex(v float64) int {
	i := sort.SearchFloat64s(b.boundaries, v)
	if i < len(b.boundaries) && b.boundaries[i] == v {
		return i
	}
	if i == 0 {
		return 0
	}
	return i - 1
}

// IndexToValue returns the boundary value for the index, clamped into the
// valid range.
func (b *Bucketizer) IndexToValue(i int) float64 {
	if i < 0 {
		i = 0
	}
	if i > len(b.boundaries)-1 {
		i = len(b.boundaries) - 1
	}
	return b.boundaries[i]
}

// VisibleBucketCount trims trailing empty buckets: the slider never renders
// far past the data's observed maximum. One extra bucket of context beyond
// the maximum is kept, capped at the total bucket count.
func (b *Bucketizer) VisibleBucketCount(maxObservedValue float64) int {
	maxIndex := b.ValueToIndex(maxObservedValue)
	count := maxIndex + 2
	if count > len(b.boundaries) {
		count = len(b.boundaries)
	}
	return count
}

// priceSteps is the log-scaled JPY ladder for the asking-price slider.
// Steps widen with magnitude so the low end keeps useful resolution.
var priceSteps = []float64{
	0, 50_000, 100_000, 150_000, 200_000, 250_000, 300_000, 400_000,
	500_000, 650_000, 800_000, 1_000_000, 1_300_000, 1_600_000,
	2_000_000, 2_500_000, 3_000_000, 4_000_000, 5_000_000, 6_500_000,
	8_000_000, 10_000_000, 13_000_000, 16_000_000, 20_000_000,
	25_000_000, 30_000_000, 40_000_000, 50_000_000,
}

// nagasaSteps is the ladder for blade length in cm. 30.3 and 60.6 are the
// one- and two-shaku cutoffs separating tanto, wakizashi and katana.
var nagasaSteps = []float64{
	0, 10, 15, 21, 24, 27, 30.3, 33, 36, 40, 43, 46, 50, 53, 56,
	60.6, 63, 66, 69, 72, 75, 80, 90, 105,
}

// Price is the bucketizer over the JPY price ladder.
var Price = &Bucketizer{boundaries: priceSteps}

// Nagasa is the bucketizer over the blade-length ladder.
var Nagasa = &Bucketizer{boundaries: nagasaSteps}
