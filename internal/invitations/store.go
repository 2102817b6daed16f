package invitations

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("invitation not found")

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

type Invitation struct {
	InviteeEmail string    `json:"invitee_email"`
	Token        string    `json:"-"`
	Status       string    `json:"status"`
	InviterID    string    `json:"inviter_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is durable keyed storage of pending invitations. The original
// system kept these in a process-local map; records here survive
// restarts and are shared between instances.
type Store interface {
	Put(ctx context.Context, inv Invitation) error
	GetByToken(ctx context.Context, token string) (Invitation, error)
	MarkAccepted(ctx context.Context, inviteeEmail string) error
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Put(ctx context.Context, inv Invitation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO invitations (invitee_email, token, status, inviter_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (invitee_email)
		DO UPDATE SET token = EXCLUDED.token, status = EXCLUDED.status, inviter_id = EXCLUDED.inviter_id, updated_at = NOW()
	`, inv.InviteeEmail, inv.Token, inv.Status, inv.InviterID)
	return err
}

func (s *PGStore) GetByToken(ctx context.Context, token string) (Invitation, error) {
	var inv Invitation
	err := s.pool.QueryRow(ctx, `
		SELECT invitee_email, token, status, inviter_id, created_at
		FROM invitations
		WHERE token = $1
	`, token).Scan(&inv.InviteeEmail, &inv.Token, &inv.Status, &inv.InviterID, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invitation{}, ErrNotFound
		}
		return Invitation{}, err
	}
	return inv, nil
}

func (s *PGStore) MarkAccepted(ctx context.Context, inviteeEmail string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE invitations SET status = $1, updated_at = NOW() WHERE invitee_email = $2
	`, StatusAccepted, inviteeEmail)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MemoryStore backs tests.
type MemoryStore struct {
	mu   sync.Mutex
	invs map[string]Invitation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{invs: make(map[string]Invitation)}
}

func (s *MemoryStore) Put(ctx context.Context, inv Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invs[inv.InviteeEmail] = inv
	return nil
}

func (s *MemoryStore) GetByToken(ctx context.Context, token string) (Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invs {
		if inv.Token == token {
			return inv, nil
		}
	}
	return Invitation{}, ErrNotFound
}

func (s *MemoryStore) MarkAccepted(ctx context.Context, inviteeEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invs[inviteeEmail]
	if !ok {
		return ErrNotFound
	}
	inv.Status = StatusAccepted
	s.invs[inviteeEmail] = inv
	return nil
}
