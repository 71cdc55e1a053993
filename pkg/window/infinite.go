package window

// LoadMoreFunc requests the next page of results. The controller calls
// it at most once per cycle; the owner reports the outcome through
// Loaded or Failed.
type LoadMoreFunc func()

// InfiniteScroll fires a load-more callback when the rendered window
// drifts within a threshold of the end of the loaded items. While a
// fetch is in flight, or once the source is exhausted, further
// proximity triggers are no-ops, so scroll handlers can call Check on
// every event without double-fetching.
type InfiniteScroll struct {
	threshold int
	loading   bool
	hasMore   bool
	load      LoadMoreFunc
}

// NewInfiniteScroll creates an armed controller. threshold is the
// distance from the end, in items, at which the next page is requested.
func NewInfiniteScroll(threshold int, load LoadMoreFunc) *InfiniteScroll {
	if threshold < 0 {
		threshold = 0
	}
	return &InfiniteScroll{threshold: threshold, hasMore: true, load: load}
}

// Check evaluates proximity and fires the callback when due.
// lastVisible is one past the last rendered index (Window.End),
// itemCount the number of items loaded so far. Returns true only on the
// call that actually started a fetch.
func (c *InfiniteScroll) Check(lastVisible, itemCount int) bool {
	if c.loading || !c.hasMore || c.load == nil {
		return false
	}
	if itemCount-lastVisible > c.threshold {
		return false
	}
	c.loading = true
	c.load()
	return true
}

// Loaded reports fetch completion. more=false marks the source
// exhausted; no further fetches fire until Reset.
func (c *InfiniteScroll) Loaded(more bool) {
	c.loading = false
	c.hasMore = more
}

// Failed reports a fetch failure. The controller re-arms so the next
// proximity trigger retries.
func (c *InfiniteScroll) Failed() {
	c.loading = false
}

// Loading reports whether a fetch is in flight.
func (c *InfiniteScroll) Loading() bool { return c.loading }

// HasMore reports whether the source may still have pages.
func (c *InfiniteScroll) HasMore() bool { return c.hasMore }

// Reset re-arms the controller for a fresh result set, dropping any
// in-flight marker.
func (c *InfiniteScroll) Reset() {
	c.loading = false
	c.hasMore = true
}
