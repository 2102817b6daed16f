package brokerage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duobroker/internal/types"
)

func limitPrice(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestOrderTicketValidate(t *testing.T) {
	cases := []struct {
		name    string
		ticket  OrderTicket
		wantErr string
	}{
		{
			name:   "market buy",
			ticket: OrderTicket{Symbol: "AAPL", Side: types.OrderSideBuy, Type: types.OrderTypeMarket, Qty: decimal.NewFromInt(1)},
		},
		{
			name:   "market sell",
			ticket: OrderTicket{Symbol: "AAPL", Side: types.OrderSideSell, Type: types.OrderTypeMarket, Qty: decimal.NewFromInt(2)},
		},
		{
			name:   "limit buy",
			ticket: OrderTicket{Symbol: "AAPL", Side: types.OrderSideBuy, Type: types.OrderTypeLimit, Qty: decimal.NewFromInt(1), LimitPrice: limitPrice(150)},
		},
		{
			name:   "limit sell",
			ticket: OrderTicket{Symbol: "AAPL", Side: types.OrderSideSell, Type: types.OrderTypeLimit, Qty: decimal.NewFromInt(1), LimitPrice: limitPrice(150)},
		},
		{
			name:    "missing symbol",
			ticket:  OrderTicket{Side: types.OrderSideBuy, Type: types.OrderTypeMarket, Qty: decimal.NewFromInt(1)},
			wantErr: "symbol required",
		},
		{
			name:    "bad side",
			ticket:  OrderTicket{Symbol: "AAPL", Side: "hold", Type: types.OrderTypeMarket, Qty: decimal.NewFromInt(1)},
			wantErr: "invalid side",
		},
		{
			name:    "bad type",
			ticket:  OrderTicket{Symbol: "AAPL", Side: types.OrderSideBuy, Type: "stop", Qty: decimal.NewFromInt(1)},
			wantErr: "invalid type",
		},
		{
			name:    "zero qty",
			ticket:  OrderTicket{Symbol: "AAPL", Side: types.OrderSideBuy, Type: types.OrderTypeMarket, Qty: decimal.Zero},
			wantErr: "qty must be positive",
		},
		{
			name:    "limit without price",
			ticket:  OrderTicket{Symbol: "AAPL", Side: types.OrderSideBuy, Type: types.OrderTypeLimit, Qty: decimal.NewFromInt(1)},
			wantErr: "limit_price required for limit order",
		},
		{
			name:    "market with price",
			ticket:  OrderTicket{Symbol: "AAPL", Side: types.OrderSideBuy, Type: types.OrderTypeMarket, Qty: decimal.NewFromInt(1), LimitPrice: limitPrice(150)},
			wantErr: "limit_price not allowed for market order",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ticket.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tc.wantErr, err.Error())
			}
		})
	}
}

func TestOrderTicketPayload(t *testing.T) {
	t.Run("market defaults time in force to day", func(t *testing.T) {
		ticket := OrderTicket{Symbol: "AAPL", Side: types.OrderSideBuy, Type: types.OrderTypeMarket, Qty: decimal.NewFromInt(3)}
		p := ticket.payload()
		assert.Equal(t, "buy", p.Side)
		assert.Equal(t, "market", p.Type)
		assert.Equal(t, "day", p.TimeInForce)
		assert.Equal(t, "3", p.Qty)
		assert.Empty(t, p.LimitPrice)
	})

	t.Run("limit includes limit price", func(t *testing.T) {
		ticket := OrderTicket{Symbol: "MSFT", Side: types.OrderSideSell, Type: types.OrderTypeLimit, Qty: decimal.NewFromInt(1), LimitPrice: limitPrice(410), TimeInForce: types.TimeInForceGTC}
		p := ticket.payload()
		assert.Equal(t, "sell", p.Side)
		assert.Equal(t, "limit", p.Type)
		assert.Equal(t, "gtc", p.TimeInForce)
		assert.Equal(t, "410", p.LimitPrice)
	})
}

func TestBuildAccountPayload(t *testing.T) {
	applicant := Applicant{
		Email:       "jamie@example.com",
		PhoneNumber: "555-01-0199",
		FirstName:   "Jamie",
		LastName:    "Rivera",
		DateOfBirth: "1991-04-02",
		Address: Address{
			StreetLine1: "20 N San Mateo Dr",
			StreetLine2: "Apt 4",
			City:        "San Mateo",
			State:       "CA",
			PostalCode:  "94401",
		},
		IPAddress: "192.0.2.10",
	}

	p := buildAccountPayload(applicant, testSignedAt)

	assert.Equal(t, []string{"20 N San Mateo Dr Apt 4"}, p.Contact.StreetAddress)
	assert.Equal(t, "Jamie", p.Identity.GivenName)
	assert.Equal(t, "USA", p.Identity.CountryOfTaxResidence)
	assert.Equal(t, []string{"employment_income"}, p.Identity.FundingSource)
	require.Len(t, p.Agreements, 1)
	assert.Equal(t, "customer_agreement", p.Agreements[0].Agreement)
	assert.Equal(t, testSignedAt, p.Agreements[0].SignedAt)
	assert.Equal(t, "192.0.2.10", p.Agreements[0].IPAddress)
	assert.Equal(t, "jamie@example.com", p.TrustedContact.EmailAddress)
	assert.False(t, p.Disclosures.IsControlPerson)
}
