package limits

import "errors"

var (
	// ErrNotFound is returned by stores when no record exists for the key.
	ErrNotFound = errors.New("limit record not found")
	// ErrAccountNotFound is the engine-level counterpart of ErrNotFound.
	ErrAccountNotFound = errors.New("no limit record for account")
	// ErrAlreadyExists is returned when creating a record that already exists.
	ErrAlreadyExists = errors.New("limit record already exists")
	// ErrVersionConflict is returned by compare-and-swap when the stored
	// version no longer matches the expected one.
	ErrVersionConflict = errors.New("limit record version conflict")
	// ErrContention is surfaced after the bounded retry count is exhausted.
	ErrContention = errors.New("too much contention on limit record")

	ErrInvalidAmount     = errors.New("amount must be non-negative")
	ErrProposalPending   = errors.New("a limit proposal is already pending")
	ErrNoProposalPending = errors.New("no limit proposal is pending")
	ErrAlreadyApproved   = errors.New("party has already approved this proposal")
	ErrLimitExceeded     = errors.New("spend would exceed the monthly limit")
)
