package brokerage

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"duobroker/internal/accounts"
	"duobroker/internal/httputil"
	"duobroker/internal/limits"
	"duobroker/internal/marketdata"
	"duobroker/internal/transactions"
	"duobroker/internal/types"
)

type priceSource interface {
	Quote(ctx context.Context, symbol string) (marketdata.Quote, error)
}

// Handler is the authenticated surface over the broker proxy. Money
// leaving the account (buy orders, outgoing transfers) passes through
// the spending-limit engine before it reaches the broker.
type Handler struct {
	client   Client
	limits   *limits.Engine
	accounts *accounts.Service
	txs      *transactions.Store
	quotes   priceSource
}

func NewHandler(client Client, eng *limits.Engine, accts *accounts.Service, txs *transactions.Store, quotes priceSource) *Handler {
	return &Handler{client: client, limits: eng, accounts: accts, txs: txs, quotes: quotes}
}

func (h *Handler) resolveAccount(w http.ResponseWriter, r *http.Request, userID string) (string, bool) {
	link, err := h.accounts.Resolve(r.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, accounts.ErrNotLinked) {
			status = http.StatusNotFound
		}
		httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
		return "", false
	}
	return link.BrokerageAccountID, true
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request, userID string) {
	var applicant Applicant
	if err := httputil.ReadJSON(r, &applicant); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	raw, err := h.client.CreateAccount(r.Context(), applicant)
	if err != nil {
		writeProxyError(w, err)
		return
	}
	log.WithFields(log.Fields{"user_id": userID}).Info("brokerage account created")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(raw)
}

func (h *Handler) Account(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	raw, err := h.client.GetAccount(r.Context(), accountID)
	h.passthrough(w, raw, err)
}

func (h *Handler) TradingAccount(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	raw, err := h.client.GetTradingAccount(r.Context(), accountID)
	h.passthrough(w, raw, err)
}

func (h *Handler) Assets(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.ListAssets(r.Context())
	h.passthrough(w, raw, err)
}

func (h *Handler) LinkBank(w http.ResponseWriter, r *http.Request, userID string) {
	var bank BankAccount
	if err := httputil.ReadJSON(r, &bank); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	raw, err := h.client.CreateACHRelationship(r.Context(), accountID, bank)
	h.passthrough(w, raw, err)
}

func (h *Handler) Banks(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	raw, err := h.client.ListACHRelationships(r.Context(), accountID)
	h.passthrough(w, raw, err)
}

func (h *Handler) UnlinkBank(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	raw, err := h.client.RemoveACHRelationship(r.Context(), accountID)
	h.passthrough(w, raw, err)
}

type fundRequest struct {
	RelationshipID string `json:"relationship_id"`
	Amount         string `json:"amount"`
	Direction      string `json:"direction"`
}

func (h *Handler) Fund(w http.ResponseWriter, r *http.Request, userID string) {
	var req fundRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid amount"})
		return
	}
	direction := types.TransferDirection(strings.ToUpper(req.Direction))
	if direction != types.TransferDirectionIncoming && direction != types.TransferDirectionOutgoing {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid direction"})
		return
	}
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	// Outgoing money counts against the shared monthly limit.
	if direction == types.TransferDirectionOutgoing {
		if _, err := h.limits.RecordSpend(r.Context(), accountID, amount); err != nil {
			writeLimitError(w, err)
			return
		}
	}
	raw, err := h.client.CreateTransfer(r.Context(), TransferRequest{
		AccountID:      accountID,
		RelationshipID: req.RelationshipID,
		Amount:         amount,
		Direction:      direction,
	})
	tx, txErr := h.txs.Create(r.Context(), accountID, types.TransactionKindFunding, amount, req.RelationshipID)
	if txErr != nil {
		log.WithFields(log.Fields{"account_id": accountID, "error": txErr}).Error("failed to record funding transaction")
	}
	if err != nil {
		if txErr == nil {
			if err := h.txs.UpdateStatus(r.Context(), tx.ID, types.TransactionStatusFailed); err != nil {
				log.WithFields(log.Fields{"transaction_id": tx.ID, "error": err}).Error("failed to mark transaction failed")
			}
		}
		writeProxyError(w, err)
		return
	}
	h.passthrough(w, raw, nil)
}

func (h *Handler) Transfers(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	raw, err := h.client.ListTransfers(r.Context(), accountID)
	h.passthrough(w, raw, err)
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request, userID string) {
	var ticket OrderTicket
	if err := httputil.ReadJSON(r, &ticket); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	if err := ticket.Validate(); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	notional := decimal.Zero
	if ticket.Side == types.OrderSideBuy {
		var err error
		notional, err = h.orderNotional(r.Context(), ticket)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadGateway, httputil.ErrorResponse{Error: err.Error()})
			return
		}
		if _, err := h.limits.RecordSpend(r.Context(), accountID, notional); err != nil {
			writeLimitError(w, err)
			return
		}
	}
	raw, err := h.client.PlaceOrder(r.Context(), accountID, ticket)
	tx, txErr := h.txs.Create(r.Context(), accountID, types.TransactionKindOrder, notional, ticket.Symbol)
	if txErr != nil {
		log.WithFields(log.Fields{"account_id": accountID, "error": txErr}).Error("failed to record order transaction")
	}
	if err != nil {
		if txErr == nil {
			if err := h.txs.UpdateStatus(r.Context(), tx.ID, types.TransactionStatusFailed); err != nil {
				log.WithFields(log.Fields{"transaction_id": tx.ID, "error": err}).Error("failed to mark transaction failed")
			}
		}
		writeProxyError(w, err)
		return
	}
	h.passthrough(w, raw, nil)
}

// orderNotional prices a buy for limit admission: limit orders at their
// limit price, market orders at the latest quote.
func (h *Handler) orderNotional(ctx context.Context, ticket OrderTicket) (decimal.Decimal, error) {
	if ticket.Type == types.OrderTypeLimit {
		return ticket.Qty.Mul(*ticket.LimitPrice), nil
	}
	q, err := h.quotes.Quote(ctx, ticket.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return ticket.Qty.Mul(q.Price), nil
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	raw, err := h.client.ListOrders(r.Context(), accountID)
	h.passthrough(w, raw, err)
}

func (h *Handler) Order(w http.ResponseWriter, r *http.Request, userID, orderID string) {
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	raw, err := h.client.GetOrder(r.Context(), accountID, orderID)
	h.passthrough(w, raw, err)
}

type proposeLimitRequest struct {
	NewLimit string `json:"new_limit"`
}

// resolveParty maps the caller's seat on the shared account to an
// approval party.
func (h *Handler) resolveParty(w http.ResponseWriter, r *http.Request, userID string) (string, limits.Party, bool) {
	link, err := h.accounts.Resolve(r.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, accounts.ErrNotLinked) {
			status = http.StatusNotFound
		}
		httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
		return "", "", false
	}
	return link.BrokerageAccountID, limits.Party(link.Role), true
}

func (h *Handler) ProposeLimit(w http.ResponseWriter, r *http.Request, userID string) {
	var req proposeLimitRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.NewLimit)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid new_limit"})
		return
	}
	accountID, party, ok := h.resolveParty(w, r, userID)
	if !ok {
		return
	}
	rec, err := h.limits.ProposeLimit(r.Context(), accountID, amount, party)
	if err != nil {
		writeLimitError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) ApproveLimit(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, party, ok := h.resolveParty(w, r, userID)
	if !ok {
		return
	}
	rec, err := h.limits.Approve(r.Context(), accountID, party)
	if err != nil {
		writeLimitError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) RejectLimit(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, party, ok := h.resolveParty(w, r, userID)
	if !ok {
		return
	}
	rec, err := h.limits.Reject(r.Context(), accountID, party)
	if err != nil {
		writeLimitError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) LimitRemaining(w http.ResponseWriter, r *http.Request, userID string) {
	accountID, ok := h.resolveAccount(w, r, userID)
	if !ok {
		return
	}
	remaining, err := h.limits.GetRemaining(r.Context(), accountID)
	if err != nil {
		writeLimitError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"account_id": accountID,
		"remaining":  remaining.String(),
	})
}

func (h *Handler) passthrough(w http.ResponseWriter, raw []byte, err error) {
	if err != nil {
		writeProxyError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func writeProxyError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, errNotConfigured) {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
}

func writeLimitError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, limits.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, limits.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, limits.ErrProposalPending),
		errors.Is(err, limits.ErrNoProposalPending),
		errors.Is(err, limits.ErrAlreadyApproved):
		status = http.StatusConflict
	case errors.Is(err, limits.ErrLimitExceeded):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, limits.ErrContention):
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
}
