package brokerage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duobroker/internal/types"
)

var testSignedAt = time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, "key", "secret")
	c.now = func() time.Time { return testSignedAt }
	return c
}

func TestCreateAccount(t *testing.T) {
	var got accountPayload
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/accounts", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"acct-1","status":"SUBMITTED"}`))
	}))

	raw, err := c.CreateAccount(context.Background(), Applicant{
		Email:       "jamie@example.com",
		PhoneNumber: "555-01-0199",
		FirstName:   "Jamie",
		LastName:    "Rivera",
		DateOfBirth: "1991-04-02",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"acct-1","status":"SUBMITTED"}`, string(raw))
	assert.Equal(t, "Jamie", got.Identity.GivenName)
	assert.Equal(t, testSignedAt, got.Agreements[0].SignedAt)
}

func TestCreateAccountRejectsIncompleteApplicant(t *testing.T) {
	c := NewHTTPClient("http://unused", "key", "secret")
	_, err := c.CreateAccount(context.Background(), Applicant{Email: "jamie@example.com"})
	require.Error(t, err)
	assert.Equal(t, "first_name and last_name required", err.Error())
}

func TestPlaceOrder(t *testing.T) {
	var got orderPayload
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/trading/accounts/acct-1/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"order-9"}`))
	}))

	price := decimal.NewFromInt(150)
	raw, err := c.PlaceOrder(context.Background(), "acct-1", OrderTicket{
		Symbol:     "AAPL",
		Side:       types.OrderSideBuy,
		Type:       types.OrderTypeLimit,
		Qty:        decimal.NewFromInt(2),
		LimitPrice: &price,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"order-9"}`, string(raw))
	assert.Equal(t, "limit", got.Type)
	assert.Equal(t, "150", got.LimitPrice)
	assert.Equal(t, "day", got.TimeInForce)
}

func TestPlaceOrderValidatesTicket(t *testing.T) {
	c := NewHTTPClient("http://unused", "key", "secret")
	_, err := c.PlaceOrder(context.Background(), "acct-1", OrderTicket{
		Symbol: "AAPL",
		Side:   types.OrderSideBuy,
		Type:   types.OrderTypeLimit,
		Qty:    decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.Equal(t, "limit_price required for limit order", err.Error())
}

func TestCreateACHRelationshipUsesAccountHolderName(t *testing.T) {
	var got achRelationshipPayload
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/accounts/acct-1":
			w.Write([]byte(`{"id":"acct-1","identity":{"given_name":"Jamie","family_name":"Rivera"}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/accounts/acct-1/ach_relationships":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"id":"rel-1","status":"QUEUED"}`))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	raw, err := c.CreateACHRelationship(context.Background(), "acct-1", BankAccount{
		RoutingNumber: "121000358",
		AccountNumber: "32131231",
		Nickname:      "Checking",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"rel-1","status":"QUEUED"}`, string(raw))
	assert.Equal(t, "Jamie Rivera", got.AccountOwnerName)
	assert.Equal(t, "CHECKING", got.BankAccountType)
	assert.Equal(t, "121000358", got.BankRoutingNumber)
}

func TestCreateACHRelationshipRequiresBankNumbers(t *testing.T) {
	c := NewHTTPClient("http://unused", "key", "secret")
	_, err := c.CreateACHRelationship(context.Background(), "acct-1", BankAccount{})
	require.Error(t, err)
	assert.Equal(t, "bank routing and account numbers required", err.Error())
}

func TestRemoveACHRelationship(t *testing.T) {
	deleted := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/accounts/acct-1/ach_relationships":
			w.Write([]byte(`[{"id":"rel-1","account_id":"acct-1"}]`))
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/accounts/acct-1/ach_relationships/rel-1":
			deleted = true
			w.Write([]byte(`{}`))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	_, err := c.RemoveACHRelationship(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestRemoveACHRelationshipNoneLinked(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	_, err := c.RemoveACHRelationship(context.Background(), "acct-1")
	require.Error(t, err)
	assert.Equal(t, "no ach relationship exists", err.Error())
}

func TestRemoveACHRelationshipNoMatchingAccount(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			t.Fatalf("unexpected delete: %s", r.URL.Path)
		}
		// A relationship exists but belongs to a different account.
		w.Write([]byte(`[{"id":"rel-9","account_id":"acct-other"}]`))
	}))

	raw, err := c.RemoveACHRelationship(context.Background(), "acct-1")
	require.Error(t, err)
	assert.Nil(t, raw)
	assert.Equal(t, "no ach relationship exists", err.Error())
}

func TestCreateTransfer(t *testing.T) {
	var got transferPayload
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/acct-1/transfers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"tr-1","status":"QUEUED"}`))
	}))

	_, err := c.CreateTransfer(context.Background(), TransferRequest{
		AccountID:      "acct-1",
		RelationshipID: "rel-1",
		Amount:         decimal.NewFromInt(500),
		Direction:      types.TransferDirectionIncoming,
	})
	require.NoError(t, err)
	assert.Equal(t, "ach", got.TransferType)
	assert.Equal(t, "500", got.Amount)
	assert.Equal(t, "INCOMING", got.Direction)
}

func TestCreateTransferRejectsNonPositiveAmount(t *testing.T) {
	c := NewHTTPClient("http://unused", "key", "secret")
	_, err := c.CreateTransfer(context.Background(), TransferRequest{
		AccountID:      "acct-1",
		RelationshipID: "rel-1",
		Amount:         decimal.Zero,
		Direction:      types.TransferDirectionIncoming,
	})
	require.Error(t, err)
	assert.Equal(t, "amount must be positive", err.Error())
}

func TestDoSurfacesAPIErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"insufficient balance"}`))
	}))

	_, err := c.ListAccounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
