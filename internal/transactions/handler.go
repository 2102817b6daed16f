package transactions

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"duobroker/internal/accounts"
	"duobroker/internal/httputil"
)

type accountResolver interface {
	Resolve(ctx context.Context, userID string) (accounts.Link, error)
}

type txLister interface {
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Transaction, error)
}

type Handler struct {
	store txLister
	accts accountResolver
}

func NewHandler(store txLister, accts accountResolver) *Handler {
	return &Handler{store: store, accts: accts}
}

// List returns the history of the caller's own linked brokerage account.
// The account id comes from the caller's link, never from the request.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, userID string) {
	link, err := h.accts.Resolve(r.Context(), userID)
	if errors.Is(err, accounts.ErrNotLinked) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "no linked brokerage account"})
		return
	}
	if err != nil {
		log.WithError(err).Error("resolve account link")
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to resolve account"})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	items, err := h.store.ListByAccount(r.Context(), link.BrokerageAccountID, limit)
	if err != nil {
		log.WithError(err).Error("list transactions")
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load transactions"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"account_id":   link.BrokerageAccountID,
		"transactions": items,
	})
}
