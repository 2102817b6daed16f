package auth

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"duobroker/internal/httputil"
)

// inviteVerifier closes the invitation loop at signup time: a partner
// registering through an invitation link proves the token first, and
// the invitation is marked accepted once the account exists.
type inviteVerifier interface {
	VerifyInvitation(ctx context.Context, token string) (inviterID string, err error)
	Accept(ctx context.Context, inviteeEmail string) error
}

type Handler struct {
	svc     *Service
	invites inviteVerifier
}

func NewHandler(svc *Service, invites inviteVerifier) *Handler {
	return &Handler{svc: svc, invites: invites}
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	InvitationToken string `json:"invitation_token,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}

	// Verify before touching user storage so a stale invitation link
	// never produces a half-registered partner.
	inviterID := ""
	if tok := strings.TrimSpace(req.InvitationToken); tok != "" {
		id, err := h.invites.VerifyInvitation(r.Context(), tok)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid invitation token"})
			return
		}
		inviterID = id
	}

	id, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()})
		return
	}

	if inviterID != "" {
		if err := h.invites.Accept(r.Context(), req.Email); err != nil {
			// The account exists either way; the invitation row just
			// stays pending until the partner links.
			log.WithError(err).WithField("email", req.Email).Warn("mark invitation accepted")
		}
	}

	resp := map[string]string{"user_id": id, "access_token": token}
	if inviterID != "" {
		resp["inviter_id"] = inviterID
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": user.ID, "email": user.Email})
}
