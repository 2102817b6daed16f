package marketdata

import (
	"context"
	"time"
)

// Service answers quote reads from the cache and falls back to the
// upstream when the cached value is older than maxAge.
type Service struct {
	client *Client
	cache  *QuoteCache
	maxAge time.Duration
	now    func() time.Time
}

func NewService(client *Client, cache *QuoteCache) *Service {
	return &Service{
		client: client,
		cache:  cache,
		maxAge: 2 * time.Second,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Quote(ctx context.Context, symbol string) (Quote, error) {
	if q, ok := s.cache.Fresh(symbol, s.maxAge, s.now()); ok {
		return q, nil
	}
	q, err := s.client.GlobalQuote(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	s.cache.Put(q)
	return q, nil
}

func (s *Service) History(ctx context.Context, symbol, from, to string) ([]Bar, error) {
	return s.client.HistoricalDaily(ctx, symbol, from, to)
}
