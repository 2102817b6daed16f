package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"duobroker/internal/types"
)

// Transaction is a lightweight record of a funding or order submission
// made through this service. The broker stays the source of truth for
// settlement; these rows exist for per-account history reads.
type Transaction struct {
	ID                 string                  `json:"id"`
	BrokerageAccountID string                  `json:"brokerage_account_id"`
	Kind               types.TransactionKind   `json:"kind"`
	Status             types.TransactionStatus `json:"status"`
	Amount             decimal.Decimal         `json:"amount"`
	Reference          string                  `json:"reference"`
	CreatedAt          time.Time               `json:"created_at"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, accountID string, kind types.TransactionKind, amount decimal.Decimal, reference string) (Transaction, error) {
	tx := Transaction{
		ID:                 uuid.NewString(),
		BrokerageAccountID: accountID,
		Kind:               kind,
		Status:             types.TransactionStatusSubmitted,
		Amount:             amount,
		Reference:          reference,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO transactions (id, brokerage_account_id, kind, status, amount, reference)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		tx.ID, tx.BrokerageAccountID, tx.Kind, tx.Status, tx.Amount, tx.Reference,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func (s *Store) ListByAccount(ctx context.Context, accountID string, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, brokerage_account_id, kind, status, amount, reference, created_at
		 FROM transactions
		 WHERE brokerage_account_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0, limit)
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.BrokerageAccountID, &tx.Kind, &tx.Status, &tx.Amount, &tx.Reference, &tx.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status types.TransactionStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE transactions SET status = $1 WHERE id = $2`, status, id)
	return err
}
