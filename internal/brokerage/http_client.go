package brokerage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// HTTPClient talks to the broker's REST API. The surrounding system
// treats most responses as opaque JSON and forwards them verbatim.
type HTTPClient struct {
	baseURL string
	key     string
	secret  string
	client  *http.Client
	now     func() time.Time
}

func NewHTTPClient(baseURL, key, secret string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		key:     key,
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("brokerage: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("brokerage: failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.key, c.secret)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brokerage: %s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("brokerage: failed to read response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.WithFields(log.Fields{
			"method": method,
			"path":   path,
			"status": res.StatusCode,
		}).Warn("broker API call rejected")
		return nil, fmt.Errorf("brokerage: %s %s returned %s", method, path, res.Status)
	}
	return json.RawMessage(raw), nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, applicant Applicant) (json.RawMessage, error) {
	if err := applicant.validate(); err != nil {
		return nil, err
	}
	payload := buildAccountPayload(applicant, c.now())
	return c.do(ctx, http.MethodPost, "/v1/accounts", payload)
}

func (c *HTTPClient) GetAccount(ctx context.Context, accountID string) (json.RawMessage, error) {
	if accountID == "" {
		return nil, errors.New("account id required")
	}
	return c.do(ctx, http.MethodGet, "/v1/accounts/"+accountID, nil)
}

func (c *HTTPClient) ListAccounts(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/accounts", nil)
}

func (c *HTTPClient) GetTradingAccount(ctx context.Context, accountID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/trading/accounts/"+accountID+"/account", nil)
}

func (c *HTTPClient) ListAssets(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/assets", nil)
}

type achRelationshipPayload struct {
	AccountOwnerName  string `json:"account_owner_name"`
	BankAccountType   string `json:"bank_account_type"`
	BankRoutingNumber string `json:"bank_routing_number"`
	BankAccountNumber string `json:"bank_account_number"`
	Nickname          string `json:"nickname"`
}

type accountIdentity struct {
	Identity struct {
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	} `json:"identity"`
}

// CreateACHRelationship links a bank account for ACH funding. The
// owner name comes from the broker's own record of the account holder.
func (c *HTTPClient) CreateACHRelationship(ctx context.Context, accountID string, bank BankAccount) (json.RawMessage, error) {
	if bank.RoutingNumber == "" || bank.AccountNumber == "" {
		return nil, errors.New("bank routing and account numbers required")
	}
	raw, err := c.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var holder accountIdentity
	if err := json.Unmarshal(raw, &holder); err != nil {
		return nil, fmt.Errorf("brokerage: failed to decode account identity: %w", err)
	}
	payload := achRelationshipPayload{
		AccountOwnerName:  holder.Identity.GivenName + " " + holder.Identity.FamilyName,
		BankAccountType:   "CHECKING",
		BankRoutingNumber: bank.RoutingNumber,
		BankAccountNumber: bank.AccountNumber,
		Nickname:          bank.Nickname,
	}
	return c.do(ctx, http.MethodPost, "/v1/accounts/"+accountID+"/ach_relationships", payload)
}

func (c *HTTPClient) ListACHRelationships(ctx context.Context, accountID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/accounts/"+accountID+"/ach_relationships", nil)
}

type achRelationship struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
}

// RemoveACHRelationship looks up the account's ACH link and deletes it.
func (c *HTTPClient) RemoveACHRelationship(ctx context.Context, accountID string) (json.RawMessage, error) {
	raw, err := c.ListACHRelationships(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var rels []achRelationship
	if err := json.Unmarshal(raw, &rels); err != nil {
		return nil, fmt.Errorf("brokerage: failed to decode ach relationships: %w", err)
	}
	for _, rel := range rels {
		if rel.AccountID == accountID {
			return c.do(ctx, http.MethodDelete, "/v1/accounts/"+accountID+"/ach_relationships/"+rel.ID, nil)
		}
	}
	return nil, errors.New("no ach relationship exists")
}

type transferPayload struct {
	TransferType   string `json:"transfer_type"`
	RelationshipID string `json:"relationship_id"`
	Amount         string `json:"amount"`
	Direction      string `json:"direction"`
}

func (c *HTTPClient) CreateTransfer(ctx context.Context, req TransferRequest) (json.RawMessage, error) {
	if req.AccountID == "" || req.RelationshipID == "" {
		return nil, errors.New("account and relationship ids required")
	}
	if !req.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}
	payload := transferPayload{
		TransferType:   "ach",
		RelationshipID: req.RelationshipID,
		Amount:         req.Amount.String(),
		Direction:      string(req.Direction),
	}
	return c.do(ctx, http.MethodPost, "/v1/accounts/"+req.AccountID+"/transfers", payload)
}

func (c *HTTPClient) ListTransfers(ctx context.Context, accountID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/accounts/"+accountID+"/transfers", nil)
}

func (c *HTTPClient) PlaceOrder(ctx context.Context, accountID string, ticket OrderTicket) (json.RawMessage, error) {
	if accountID == "" {
		return nil, errors.New("account id required")
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/v1/trading/accounts/"+accountID+"/orders", ticket.payload())
}

func (c *HTTPClient) ListOrders(ctx context.Context, accountID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/trading/accounts/"+accountID+"/orders?status=all", nil)
}

func (c *HTTPClient) GetOrder(ctx context.Context, accountID, orderID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/trading/accounts/"+accountID+"/orders/"+orderID, nil)
}
