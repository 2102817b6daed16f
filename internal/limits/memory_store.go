package limits

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps records in a mutex-guarded map. It backs the engine
// in tests and in environments without a database.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]LimitRecord
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]LimitRecord), now: func() time.Time { return time.Now().UTC() }}
}

func (s *MemoryStore) Get(ctx context.Context, accountID string) (LimitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[accountID]
	if !ok {
		return LimitRecord{}, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Create(ctx context.Context, accountID string, initialLimit decimal.Decimal) (LimitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[accountID]; ok {
		return LimitRecord{}, ErrAlreadyExists
	}
	rec := LimitRecord{
		AccountID:         accountID,
		MonthlyLimit:      initialLimit,
		CurrentMonthSpent: decimal.Zero,
		PeriodStart:       monthStart(s.now()),
		Version:           1,
	}
	s.recs[accountID] = rec
	return rec.Clone(), nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, expectedVersion int64, rec LimitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.recs[rec.AccountID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	next := rec.Clone()
	next.Version = expectedVersion + 1
	s.recs[rec.AccountID] = next
	return nil
}
