package limits

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is durable keyed storage of one LimitRecord per account. Every
// record carries an opaque version bumped on each successful write;
// CompareAndSwap is the only mutation path, so concurrent writers
// serialize without locks.
type Store interface {
	Get(ctx context.Context, accountID string) (LimitRecord, error)
	Create(ctx context.Context, accountID string, initialLimit decimal.Decimal) (LimitRecord, error)
	CompareAndSwap(ctx context.Context, expectedVersion int64, rec LimitRecord) error
}
