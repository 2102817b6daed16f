package limits

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"duobroker/internal/httputil"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

type createLimitRequest struct {
	AccountID    string `json:"account_id"`
	MonthlyLimit string `json:"monthly_limit"`
}

type proposeLimitRequest struct {
	AccountID string `json:"account_id"`
	NewLimit  string `json:"new_limit"`
	Proposer  string `json:"proposer"`
}

type approvalRequest struct {
	AccountID string `json:"account_id"`
	Party     string `json:"party"`
}

type spendRequest struct {
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLimitRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.MonthlyLimit)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid monthly_limit"})
		return
	}
	rec, err := h.engine.CreateRecord(r.Context(), req.AccountID, amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) Propose(w http.ResponseWriter, r *http.Request) {
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
	rec, err := h.engine.ProposeLimit(r.Context(), req.AccountID, amount, Party(strings.ToLower(req.Proposer)))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	rec, err := h.engine.Approve(r.Context(), req.AccountID, Party(strings.ToLower(req.Party)))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	rec, err := h.engine.Reject(r.Context(), req.AccountID, Party(strings.ToLower(req.Party)))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) Spend(w http.ResponseWriter, r *http.Request) {
	var req spendRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid amount"})
		return
	}
	rec, err := h.engine.RecordSpend(r.Context(), req.AccountID, amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"account_id":          rec.AccountID,
		"current_month_spent": rec.CurrentMonthSpent.String(),
	})
}

func (h *Handler) Remaining(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("account_id"))
	remaining, err := h.engine.GetRemaining(r.Context(), accountID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"account_id": accountID,
		"remaining":  remaining.String(),
	})
}

func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, ErrProposalPending):
		status = http.StatusConflict
	case errors.Is(err, ErrNoProposalPending):
		status = http.StatusConflict
	case errors.Is(err, ErrAlreadyApproved):
		status = http.StatusConflict
	case errors.Is(err, ErrLimitExceeded):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrContention):
		status = http.StatusServiceUnavailable
	default:
		if strings.HasPrefix(err.Error(), "unknown party") {
			status = http.StatusBadRequest
		}
	}
	httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
}
