package limits

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PGStore persists LimitRecords in the transaction_limits table. The
// version column makes every write a conditional update.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, accountID string) (LimitRecord, error) {
	var rec LimitRecord
	err := s.pool.QueryRow(ctx, `
		SELECT account_id, monthly_limit, proposed_monthly_limit, approved_by_primary, approved_by_secondary, current_month_spent, period_start, version
		FROM transaction_limits
		WHERE account_id = $1
	`, accountID).Scan(
		&rec.AccountID, &rec.MonthlyLimit, &rec.ProposedMonthlyLimit,
		&rec.ApprovedByPrimary, &rec.ApprovedBySecondary,
		&rec.CurrentMonthSpent, &rec.PeriodStart, &rec.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LimitRecord{}, ErrNotFound
		}
		return LimitRecord{}, err
	}
	return rec, nil
}

func (s *PGStore) Create(ctx context.Context, accountID string, initialLimit decimal.Decimal) (LimitRecord, error) {
	start := monthStart(time.Now().UTC())
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO transaction_limits (account_id, monthly_limit, current_month_spent, period_start, version)
		VALUES ($1, $2, 0, $3, 1)
		ON CONFLICT (account_id) DO NOTHING
	`, accountID, initialLimit, start)
	if err != nil {
		return LimitRecord{}, err
	}
	if tag.RowsAffected() == 0 {
		return LimitRecord{}, ErrAlreadyExists
	}
	return LimitRecord{
		AccountID:         accountID,
		MonthlyLimit:      initialLimit,
		CurrentMonthSpent: decimal.Zero,
		PeriodStart:       start,
		Version:           1,
	}, nil
}

func (s *PGStore) CompareAndSwap(ctx context.Context, expectedVersion int64, rec LimitRecord) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE transaction_limits
		SET monthly_limit = $1,
		    proposed_monthly_limit = $2,
		    approved_by_primary = $3,
		    approved_by_secondary = $4,
		    current_month_spent = $5,
		    period_start = $6,
		    version = version + 1,
		    updated_at = NOW()
		WHERE account_id = $7 AND version = $8
	`, rec.MonthlyLimit, rec.ProposedMonthlyLimit, rec.ApprovedByPrimary, rec.ApprovedBySecondary,
		rec.CurrentMonthSpent, rec.PeriodStart, rec.AccountID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transaction_limits WHERE account_id = $1)`, rec.AccountID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}
