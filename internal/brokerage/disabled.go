package brokerage

import (
	"context"
	"encoding/json"
	"errors"
)

var errNotConfigured = errors.New("brokerage client not configured")

// DisabledClient stands in when no broker credentials are configured.
type DisabledClient struct{}

func NewDisabledClient() *DisabledClient {
	return &DisabledClient{}
}

func (c *DisabledClient) CreateAccount(ctx context.Context, applicant Applicant) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) GetAccount(ctx context.Context, accountID string) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) ListAccounts(ctx context.Context) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) GetTradingAccount(ctx context.Context, accountID string) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) ListAssets(ctx context.Context) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) CreateACHRelationship(ctx context.Context, accountID string, bank BankAccount) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) ListACHRelationships(ctx context.Context, accountID string) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) RemoveACHRelationship(ctx context.Context, accountID string) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) CreateTransfer(ctx context.Context, req TransferRequest) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) ListTransfers(ctx context.Context, accountID string) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) PlaceOrder(ctx context.Context, accountID string, ticket OrderTicket) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) ListOrders(ctx context.Context, accountID string) (json.RawMessage, error) {
	return nil, errNotConfigured
}

func (c *DisabledClient) GetOrder(ctx context.Context, accountID, orderID string) (json.RawMessage, error) {
	return nil, errNotConfigured
}
