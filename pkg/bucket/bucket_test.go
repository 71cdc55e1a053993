package bucket

import "testing"

func TestNewRejectsBadBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		boundaries []float64
	}{
		{"empty", nil},
		{"not increasing", []float64{0, 100, 100}},
		{"decreasing", []float64{100, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.boundaries); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValueToIndex(t *testing.T) {
	b, err := New([]float64{0, 100, 250, 500})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		v    float64
		want int
	}{
		{-50, 0}, // below first boundary
		{0, 0},
		{99, 0},
		{100, 1},
		{101, 1},
		{250, 2},
		{499, 2},
		{500, 3},
		{10_000, 3}, // past the last boundary pins to the last bucket
	}

	for _, tt := range tests {
		if got := b.ValueToIndex(tt.v); got != tt.want {
			t.Errorf("ValueToIndex(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestValueToIndexMonotonic(t *testing.T) {
	prev := 0
	for v := float64(-10_000); v <= 60_000_000; v += 37_517 {
		got := Price.ValueToIndex(v)
		if got < prev {
			t.Fatalf("ValueToIndex not monotonic: f(%v) = %d after %d", v, got, prev)
		}
		prev = got
	}
}

func TestIndexToValueFloors(t *testing.T) {
	// indexToValue(valueToIndex(v)) <= v for all v at or above the floor
	for v := float64(0); v <= 55_000_000; v += 99_991 {
		round := Price.IndexToValue(Price.ValueToIndex(v))
		if round > v {
			t.Fatalf("round trip of %v produced larger value %v", v, round)
		}
	}
}

func TestIndexToValueClamps(t *testing.T) {
	b, _ := New([]float64{10, 20, 30})

	if got := b.IndexToValue(-5); got != 10 {
		t.Errorf("IndexToValue(-5) = %v, want 10", got)
	}
	if got := b.IndexToValue(99); got != 30 {
		t.Errorf("IndexToValue(99) = %v, want 30", got)
	}
}

func TestVisibleBucketCount(t *testing.T) {
	b, _ := New([]float64{0, 100, 200, 300, 400, 500})

	tests := []struct {
		max  float64
		want int
	}{
		{0, 2},    // everything in bucket 0, one context bucket
		{150, 3},  // max in bucket 1, render through bucket 2
		{400, 6},  // max in bucket 4, context capped at total
		{9999, 6}, // beyond the ladder caps at total
	}

	for _, tt := range tests {
		if got := b.VisibleBucketCount(tt.max); got != tt.want {
			t.Errorf("VisibleBucketCount(%v) = %d, want %d", tt.max, got, tt.want)
		}
	}
}

func TestDomainLaddersAreValid(t *testing.T) {
	for name, b := range map[string]*Bucketizer{"price": Price, "nagasa": Nagasa} {
		if _, err := New(b.Boundaries()); err != nil {
			t.Errorf("%s ladder invalid: %v", name, err)
		}
	}
}

func TestNagasaShakuCutoffs(t *testing.T) {
	// 59cm wakizashi and 61cm katana must land in different buckets
	// around the two-shaku cutoff.
	w := Nagasa.ValueToIndex(59)
	k := Nagasa.ValueToIndex(61)
	if w == k {
		t.Errorf("59cm and 61cm share bucket %d, cutoff lost", w)
	}
	if Nagasa.IndexToValue(k) != 60.6 {
		t.Errorf("61cm bucket floor = %v, want 60.6", Nagasa.IndexToValue(k))
	}
}
