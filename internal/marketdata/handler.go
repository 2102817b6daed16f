package marketdata

import (
	"errors"
	"net/http"
	"strings"

	"duobroker/internal/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "symbol required"})
		return
	}
	q, err := h.service.Quote(r.Context(), symbol)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "symbol required"})
		return
	}
	bars, err := h.service.History(r.Context(), symbol, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"bars":   bars,
	})
}

func writeQuoteError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, ErrSymbolNotFound) {
		status = http.StatusNotFound
	}
	httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
}
