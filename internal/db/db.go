package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_credentials (
		user_id UUID PRIMARY KEY REFERENCES users(id),
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS account_links (
		user_id UUID PRIMARY KEY REFERENCES users(id),
		brokerage_account_id TEXT NOT NULL,
		role TEXT NOT NULL,
		partner_user_id UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (brokerage_account_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS invitations (
		invitee_email TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		status TEXT NOT NULL,
		inviter_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invitations_token ON invitations(token)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		brokerage_account_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(brokerage_account_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transaction_limits (
		account_id TEXT PRIMARY KEY,
		monthly_limit NUMERIC NOT NULL,
		proposed_monthly_limit NUMERIC,
		approved_by_primary BOOLEAN NOT NULL DEFAULT FALSE,
		approved_by_secondary BOOLEAN NOT NULL DEFAULT FALSE,
		current_month_spent NUMERIC NOT NULL DEFAULT 0,
		period_start TIMESTAMPTZ NOT NULL,
		version BIGINT NOT NULL DEFAULT 1,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables this service owns. Idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
