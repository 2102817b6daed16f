package marketdata

import (
	"sync"
	"time"
)

// QuoteCache holds the most recent quote per symbol so streaming
// connections and repeated REST reads do not each hit the upstream.
type QuoteCache struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuoteCache() *QuoteCache {
	return &QuoteCache{quotes: make(map[string]Quote)}
}

func (c *QuoteCache) Get(symbol string) (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[symbol]
	return q, ok
}

// Fresh reports the cached quote only when it is younger than maxAge.
func (c *QuoteCache) Fresh(symbol string, maxAge time.Duration, now time.Time) (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[symbol]
	if !ok || now.Sub(q.FetchedAt) > maxAge {
		return Quote{}, false
	}
	return q, true
}

func (c *QuoteCache) Put(q Quote) {
	c.mu.Lock()
	c.quotes[q.Symbol] = q
	c.mu.Unlock()
}
