package brokerage

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"duobroker/internal/types"
)

// Applicant is the onboarding data collected from a user before an
// account is opened with the external broker.
type Applicant struct {
	Email       string  `json:"email_address"`
	PhoneNumber string  `json:"phone_number"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth string  `json:"date_of_birth"`
	Address     Address `json:"physical_address"`
	IPAddress   string  `json:"ip"`
}

type Address struct {
	StreetLine1 string `json:"street_line_1"`
	StreetLine2 string `json:"street_line_2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
}

type BankAccount struct {
	RoutingNumber string `json:"routing_no"`
	AccountNumber string `json:"account_no"`
	Nickname      string `json:"bank_name"`
}

type TransferRequest struct {
	AccountID      string
	RelationshipID string
	Amount         decimal.Decimal
	Direction      types.TransferDirection
}

// Client proxies the external brokerage API. Responses the surrounding
// system never interprets are passed through as raw JSON.
type Client interface {
	CreateAccount(ctx context.Context, applicant Applicant) (json.RawMessage, error)
	GetAccount(ctx context.Context, accountID string) (json.RawMessage, error)
	ListAccounts(ctx context.Context) (json.RawMessage, error)
	GetTradingAccount(ctx context.Context, accountID string) (json.RawMessage, error)
	ListAssets(ctx context.Context) (json.RawMessage, error)

	CreateACHRelationship(ctx context.Context, accountID string, bank BankAccount) (json.RawMessage, error)
	ListACHRelationships(ctx context.Context, accountID string) (json.RawMessage, error)
	RemoveACHRelationship(ctx context.Context, accountID string) (json.RawMessage, error)

	CreateTransfer(ctx context.Context, req TransferRequest) (json.RawMessage, error)
	ListTransfers(ctx context.Context, accountID string) (json.RawMessage, error)

	PlaceOrder(ctx context.Context, accountID string, ticket OrderTicket) (json.RawMessage, error)
	ListOrders(ctx context.Context, accountID string) (json.RawMessage, error)
	GetOrder(ctx context.Context, accountID, orderID string) (json.RawMessage, error)
}
