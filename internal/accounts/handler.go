package accounts

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

type linkRequest struct {
	BrokerageAccountID string `json:"brokerage_account_id"`
	Role               string `json:"role"`
	PartnerUserID      string `json:"partner_user_id"`
}

func (h *Handler) Link(w http.ResponseWriter, r *http.Request, userID string) {
	var req linkRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	link, err := h.service.Link(r.Context(), userID, req.BrokerageAccountID, Role(strings.ToLower(req.Role)), req.PartnerUserID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrAlreadyLinked) {
			status = http.StatusConflict
		}
		httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, link)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request, userID string) {
	link, err := h.service.Resolve(r.Context(), userID)
	if err != nil {
		writeLinkError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, link)
}

func (h *Handler) Partner(w http.ResponseWriter, r *http.Request, userID string) {
	link, err := h.service.PartnerOf(r.Context(), userID)
	if err != nil {
		writeLinkError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, link)
}

func writeLinkError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrNotLinked) || errors.Is(err, ErrNoPartner) {
		status = http.StatusNotFound
	}
	httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
}
