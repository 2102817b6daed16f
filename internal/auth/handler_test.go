package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInvites struct {
	gotToken  string
	inviterID string
	verifyErr error
	accepted  []string
}

func (s *stubInvites) VerifyInvitation(ctx context.Context, token string) (string, error) {
	s.gotToken = token
	return s.inviterID, s.verifyErr
}

func (s *stubInvites) Accept(ctx context.Context, inviteeEmail string) error {
	s.accepted = append(s.accepted, inviteeEmail)
	return nil
}

func TestRegisterRejectsInvalidInvitationToken(t *testing.T) {
	svc := NewService(nil, "duobroker-test", []byte("handler-test-secret"), time.Hour)
	invites := &stubInvites{verifyErr: errors.New("invalid invitation token")}
	h := NewHandler(svc, invites)

	body := `{"email":"partner@example.com","password":"hunter22","invitation_token":"expired-token"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	// The submitted token reached the verifier; nothing was accepted.
	assert.Equal(t, "expired-token", invites.gotToken)
	assert.Empty(t, invites.accepted)
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	svc := NewService(nil, "duobroker-test", []byte("handler-test-secret"), time.Hour)
	h := NewHandler(svc, &stubInvites{})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
