package limits

import (
	"time"

	"github.com/shopspring/decimal"
)

type Party string

const (
	PartyPrimary   Party = "primary"
	PartySecondary Party = "secondary"
)

func (p Party) Valid() bool {
	return p == PartyPrimary || p == PartySecondary
}

// LimitRecord is the per-account spending ceiling together with the
// dual-approval state of the outstanding proposal, if any. One record
// exists per brokerage account for the account's lifetime.
type LimitRecord struct {
	AccountID            string           `json:"account_id"`
	MonthlyLimit         decimal.Decimal  `json:"monthly_limit"`
	ProposedMonthlyLimit *decimal.Decimal `json:"proposed_monthly_limit,omitempty"`
	ApprovedByPrimary    bool             `json:"approved_by_primary"`
	ApprovedBySecondary  bool             `json:"approved_by_secondary"`
	CurrentMonthSpent    decimal.Decimal  `json:"current_month_spent"`
	PeriodStart          time.Time        `json:"period_start"`
	Version              int64            `json:"-"`
}

func (r LimitRecord) HasProposal() bool {
	return r.ProposedMonthlyLimit != nil
}

// Clone returns a deep copy so callers can mutate freely without
// aliasing the proposed amount.
func (r LimitRecord) Clone() LimitRecord {
	out := r
	if r.ProposedMonthlyLimit != nil {
		v := *r.ProposedMonthlyLimit
		out.ProposedMonthlyLimit = &v
	}
	return out
}

// monthStart truncates t to the first instant of its calendar month in UTC.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// rolledOver returns the record as it should be evaluated at now,
// resetting the spend counter when now has crossed into a new calendar
// month relative to PeriodStart. The result is not persisted here;
// mutation happens only through the caller's compare-and-swap write.
func rolledOver(r LimitRecord, now time.Time) LimitRecord {
	start := monthStart(now)
	if start.After(r.PeriodStart) {
		out := r.Clone()
		out.CurrentMonthSpent = decimal.Zero
		out.PeriodStart = start
		return out
	}
	return r
}
