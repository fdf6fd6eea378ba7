package utilities

import (
	"sync"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

// Counter records the outcome of cache lookups per operation
// (e.g. employees_query, employee_read)
type Counter interface {
	Record(operation string, hit bool)
	Read(operation string) (hits, misses int)
	ReadAll() *data.CacheCounters
	Reset()
}

type lookupCounter struct {
	sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func NewCounter() Counter {
	c := &lookupCounter{}
	c.Reset()
	return c
}

func (c *lookupCounter) Record(operation string, hit bool) {
	c.Lock()
	defer c.Unlock()

	if hit {
		c.hits[operation]++
		return
	}
	c.misses[operation]++
}

func (c *lookupCounter) Read(operation string) (int, int) {
	c.Lock()
	defer c.Unlock()

	return c.hits[operation], c.misses[operation]
}

// ReadAll copies the counters, the ratio is only reported for
// operations with at least one lookup
func (c *lookupCounter) ReadAll() *data.CacheCounters {
	c.Lock()
	defer c.Unlock()

	counters := &data.CacheCounters{
		CounterHits:   make(map[string]int, len(c.hits)),
		CounterMisses: make(map[string]int, len(c.misses)),
		HitRatios:     make(map[string]float64),
	}
	for operation, hits := range c.hits {
		counters.CounterHits[operation] = hits
	}
	for operation, misses := range c.misses {
		counters.CounterMisses[operation] = misses
	}
	for _, operations := range []map[string]int{c.hits, c.misses} {
		for operation := range operations {
			hits, misses := c.hits[operation], c.misses[operation]
			counters.HitRatios[operation] = float64(hits) / float64(hits+misses)
		}
	}
	return counters
}

func (c *lookupCounter) Reset() {
	c.Lock()
	defer c.Unlock()

	c.hits = make(map[string]int)
	c.misses = make(map[string]int)
}
