package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotLinked     = errors.New("accounts: user has no linked brokerage account")
	ErrAlreadyLinked = errors.New("accounts: user already linked")
	ErrNoPartner     = errors.New("accounts: user has no partner")
)

// Role places a user on one side of a shared brokerage account.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

func (r Role) Valid() bool {
	return r == RolePrimary || r == RoleSecondary
}

// Link ties a local user to an external brokerage account and,
// optionally, to the partner who shares it.
type Link struct {
	UserID             string    `json:"user_id"`
	BrokerageAccountID string    `json:"brokerage_account_id"`
	Role               Role      `json:"role"`
	PartnerUserID      string    `json:"partner_user_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

func (s *Service) Link(ctx context.Context, userID, accountID string, role Role, partnerUserID string) (Link, error) {
	if userID == "" || accountID == "" {
		return Link{}, errors.New("user and account ids required")
	}
	if !role.Valid() {
		return Link{}, errors.New("invalid role")
	}
	var partner *string
	if partnerUserID != "" {
		partner = &partnerUserID
	}
	link := Link{UserID: userID, BrokerageAccountID: accountID, Role: role, PartnerUserID: partnerUserID}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO account_links (user_id, brokerage_account_id, role, partner_user_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING created_at`,
		userID, accountID, role, partner,
	).Scan(&link.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Link{}, ErrAlreadyLinked
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// The role seat on this account is already taken.
		return Link{}, ErrAlreadyLinked
	}
	if err != nil {
		return Link{}, err
	}
	// A partner link is symmetric; record the back-reference when the
	// partner row exists without one.
	if partner != nil {
		_, err = s.pool.Exec(ctx,
			`UPDATE account_links SET partner_user_id = $1
			 WHERE user_id = $2 AND partner_user_id IS NULL`,
			userID, partnerUserID)
		if err != nil {
			return Link{}, err
		}
	}
	return link, nil
}

// Resolve returns the link for a user.
func (s *Service) Resolve(ctx context.Context, userID string) (Link, error) {
	var link Link
	var partner *string
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, brokerage_account_id, role, partner_user_id, created_at
		 FROM account_links WHERE user_id = $1`,
		userID,
	).Scan(&link.UserID, &link.BrokerageAccountID, &link.Role, &partner, &link.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Link{}, ErrNotLinked
	}
	if err != nil {
		return Link{}, err
	}
	if partner != nil {
		link.PartnerUserID = *partner
	}
	return link, nil
}

// PartnerOf returns the link of the user's partner on the shared account.
func (s *Service) PartnerOf(ctx context.Context, userID string) (Link, error) {
	link, err := s.Resolve(ctx, userID)
	if err != nil {
		return Link{}, err
	}
	if link.PartnerUserID == "" {
		return Link{}, ErrNoPartner
	}
	return s.Resolve(ctx, link.PartnerUserID)
}
