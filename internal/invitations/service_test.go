package invitations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewService(store, NewLogMailer(), []byte("test-secret"), 7*24*time.Hour, "https://example.com/signup")
	return svc, store
}

func TestSendAndVerifyInvitation(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	token, err := svc.SendInvitation(ctx, "inviter-1", "Partner@Example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	inv, err := store.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "partner@example.com", inv.InviteeEmail)
	assert.Equal(t, StatusPending, inv.Status)

	inviterID, err := svc.VerifyInvitation(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "inviter-1", inviterID)
}

func TestVerifyInvitationUnknownToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.VerifyInvitation(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A well-formed token that was never stored is still rejected.
	other := NewService(NewMemoryStore(), NewLogMailer(), []byte("test-secret"), time.Hour, "https://example.com/signup")
	token, err := other.SendInvitation(ctx, "inviter-2", "someone@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyInvitation(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSendInvitationValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.SendInvitation(ctx, "", "partner@example.com")
	assert.Error(t, err)
	_, err = svc.SendInvitation(ctx, "inviter-1", "  ")
	assert.Error(t, err)
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	_, err := svc.SendInvitation(ctx, "inviter-1", "partner@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, "partner@example.com"))
	inv, err := store.GetByToken(ctx, mustToken(t, store))
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, inv.Status)

	assert.ErrorIs(t, svc.Accept(ctx, "stranger@example.com"), ErrNotFound)
}

func mustToken(t *testing.T, store *MemoryStore) string {
	t.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, inv := range store.invs {
		return inv.Token
	}
	t.Fatal("no invitation stored")
	return ""
}
