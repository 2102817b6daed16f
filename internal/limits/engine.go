package limits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const defaultRetryLimit = 5

// Engine applies the propose/approve/reject lifecycle and admission
// control for spend against the active monthly limit. Every mutation is
// a read-modify-CAS cycle on the account's record, retried a bounded
// number of times before ErrContention is surfaced.
type Engine struct {
	store      Store
	retryLimit int
	now        func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store:      store,
		retryLimit: defaultRetryLimit,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) SetRetryLimit(n int) {
	if n > 0 {
		e.retryLimit = n
	}
}

// SetClock overrides the time source. Used by tests to drive rollover.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// CreateRecord creates the account's limit record with an initial
// active ceiling. The record lives for the account's lifetime.
func (e *Engine) CreateRecord(ctx context.Context, accountID string, initialLimit decimal.Decimal) (LimitRecord, error) {
	if accountID == "" {
		return LimitRecord{}, ErrAccountNotFound
	}
	if initialLimit.IsNegative() {
		return LimitRecord{}, ErrInvalidAmount
	}
	return e.store.Create(ctx, accountID, initialLimit)
}

// ProposeLimit records a pending ceiling awaiting dual approval. An
// outstanding proposal must be rejected before a new one can be made.
func (e *Engine) ProposeLimit(ctx context.Context, accountID string, newLimit decimal.Decimal, proposer Party) (LimitRecord, error) {
	if !proposer.Valid() {
		return LimitRecord{}, fmt.Errorf("unknown party %q", proposer)
	}
	if newLimit.IsNegative() {
		return LimitRecord{}, ErrInvalidAmount
	}
	return e.mutate(ctx, accountID, func(rec LimitRecord) (LimitRecord, error) {
		if rec.HasProposal() {
			return rec, ErrProposalPending
		}
		v := newLimit
		rec.ProposedMonthlyLimit = &v
		rec.ApprovedByPrimary = false
		rec.ApprovedBySecondary = false
		return rec, nil
	})
}

// Approve records one party's sign-off on the pending proposal. When
// both parties have signed, the proposal is promoted to the active
// limit atomically with respect to concurrent spend checks. Promotion
// never reduces CurrentMonthSpent: a limit below already-recognized
// spend still takes effect, blocking further spend until rollover.
func (e *Engine) Approve(ctx context.Context, accountID string, party Party) (LimitRecord, error) {
	if !party.Valid() {
		return LimitRecord{}, fmt.Errorf("unknown party %q", party)
	}
	return e.mutate(ctx, accountID, func(rec LimitRecord) (LimitRecord, error) {
		if !rec.HasProposal() {
			return rec, ErrNoProposalPending
		}
		switch party {
		case PartyPrimary:
			if rec.ApprovedByPrimary {
				return rec, ErrAlreadyApproved
			}
			rec.ApprovedByPrimary = true
		case PartySecondary:
			if rec.ApprovedBySecondary {
				return rec, ErrAlreadyApproved
			}
			rec.ApprovedBySecondary = true
		}
		if rec.ApprovedByPrimary && rec.ApprovedBySecondary {
			rec.MonthlyLimit = *rec.ProposedMonthlyLimit
			rec.ProposedMonthlyLimit = nil
			rec.ApprovedByPrimary = false
			rec.ApprovedBySecondary = false
		}
		return rec, nil
	})
}

// Reject clears the pending proposal. Either party may reject
// unilaterally: promotion needs 2-of-2, rejection needs 1-of-2.
func (e *Engine) Reject(ctx context.Context, accountID string, party Party) (LimitRecord, error) {
	if !party.Valid() {
		return LimitRecord{}, fmt.Errorf("unknown party %q", party)
	}
	return e.mutate(ctx, accountID, func(rec LimitRecord) (LimitRecord, error) {
		if !rec.HasProposal() {
			return rec, ErrNoProposalPending
		}
		rec.ProposedMonthlyLimit = nil
		rec.ApprovedByPrimary = false
		rec.ApprovedBySecondary = false
		return rec, nil
	})
}

// RecordSpend admits amount against the active limit. The monthly
// counter is lazily reset when the calendar month has rolled over since
// the record's period start; the reset is evaluated before admission.
// On ErrLimitExceeded the stored record is left untouched.
func (e *Engine) RecordSpend(ctx context.Context, accountID string, amount decimal.Decimal) (LimitRecord, error) {
	if !amount.IsPositive() {
		return LimitRecord{}, ErrInvalidAmount
	}
	return e.mutate(ctx, accountID, func(rec LimitRecord) (LimitRecord, error) {
		rec = rolledOver(rec, e.now())
		if rec.CurrentMonthSpent.Add(amount).GreaterThan(rec.MonthlyLimit) {
			return rec, ErrLimitExceeded
		}
		rec.CurrentMonthSpent = rec.CurrentMonthSpent.Add(amount)
		return rec, nil
	})
}

// GetRemaining reports the headroom left in the current month after
// applying lazy rollover in memory. The value is clamped at zero when
// a promotion has taken the limit below recognized spend; the stored
// record is never mutated by a read.
func (e *Engine) GetRemaining(ctx context.Context, accountID string) (decimal.Decimal, error) {
	rec, err := e.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, err
	}
	rec = rolledOver(rec, e.now())
	remaining := rec.MonthlyLimit.Sub(rec.CurrentMonthSpent)
	if remaining.IsNegative() {
		return decimal.Zero, nil
	}
	return remaining, nil
}

// Get returns the stored record as-is, without rollover applied.
func (e *Engine) Get(ctx context.Context, accountID string) (LimitRecord, error) {
	rec, err := e.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LimitRecord{}, ErrAccountNotFound
		}
		return LimitRecord{}, err
	}
	return rec, nil
}

// mutate runs a read-modify-CAS cycle. apply receives a copy of the
// current record and returns either the next record value or a
// domain error, in which case nothing is written.
func (e *Engine) mutate(ctx context.Context, accountID string, apply func(LimitRecord) (LimitRecord, error)) (LimitRecord, error) {
	if accountID == "" {
		return LimitRecord{}, ErrAccountNotFound
	}
	for attempt := 0; attempt < e.retryLimit; attempt++ {
		rec, err := e.store.Get(ctx, accountID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return LimitRecord{}, ErrAccountNotFound
			}
			return LimitRecord{}, err
		}
		next, err := apply(rec.Clone())
		if err != nil {
			return LimitRecord{}, err
		}
		err = e.store.CompareAndSwap(ctx, rec.Version, next)
		if err == nil {
			next.Version = rec.Version + 1
			return next, nil
		}
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if errors.Is(err, ErrNotFound) {
			return LimitRecord{}, ErrAccountNotFound
		}
		return LimitRecord{}, err
	}
	log.WithField("account_id", accountID).Warn("limit record contention retries exhausted")
	return LimitRecord{}, ErrContention
}
