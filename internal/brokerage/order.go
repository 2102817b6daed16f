package brokerage

import (
	"errors"

	"github.com/shopspring/decimal"

	"duobroker/internal/types"
)

// OrderTicket is the single order shape for all of
// {market, limit} x {buy, sell}. Validation happens once here instead
// of per-combination payload builders.
type OrderTicket struct {
	Symbol      string            `json:"symbol"`
	Side        types.OrderSide   `json:"side"`
	Type        types.OrderType   `json:"type"`
	Qty         decimal.Decimal   `json:"qty"`
	LimitPrice  *decimal.Decimal  `json:"limit_price,omitempty"`
	TimeInForce types.TimeInForce `json:"time_in_force"`
}

func (t OrderTicket) Validate() error {
	if t.Symbol == "" {
		return errors.New("symbol required")
	}
	if t.Side != types.OrderSideBuy && t.Side != types.OrderSideSell {
		return errors.New("invalid side")
	}
	if t.Type != types.OrderTypeMarket && t.Type != types.OrderTypeLimit {
		return errors.New("invalid type")
	}
	if !t.Qty.IsPositive() {
		return errors.New("qty must be positive")
	}
	if t.Type == types.OrderTypeLimit {
		if t.LimitPrice == nil || !t.LimitPrice.IsPositive() {
			return errors.New("limit_price required for limit order")
		}
	}
	if t.Type == types.OrderTypeMarket && t.LimitPrice != nil {
		return errors.New("limit_price not allowed for market order")
	}
	return nil
}

type orderPayload struct {
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
	Qty         string `json:"qty"`
	Symbol      string `json:"symbol"`
	LimitPrice  string `json:"limit_price,omitempty"`
}

func (t OrderTicket) payload() orderPayload {
	tif := t.TimeInForce
	if tif == "" {
		tif = types.TimeInForceDay
	}
	p := orderPayload{
		Side:        string(t.Side),
		Type:        string(t.Type),
		TimeInForce: string(tif),
		Qty:         t.Qty.String(),
		Symbol:      t.Symbol,
	}
	if t.Type == types.OrderTypeLimit && t.LimitPrice != nil {
		p.LimitPrice = t.LimitPrice.String()
	}
	return p
}
