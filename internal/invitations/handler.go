package invitations

import (
	"errors"
	"net/http"

	"duobroker/internal/httputil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type sendInvitationRequest struct {
	PartnerEmail string `json:"partner_email"`
}

type verifyInvitationRequest struct {
	InvitationToken string `json:"invitation_token"`
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request, userID string) {
	var req sendInvitationRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	if _, err := h.svc.SendInvitation(r.Context(), userID, req.PartnerEmail); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "invitation sent successfully"})
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyInvitationRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	inviterID, err := h.svc.VerifyInvitation(r.Context(), req.InvitationToken)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidToken) {
			status = http.StatusNotFound
		}
		httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"inviter_id": inviterID})
}
