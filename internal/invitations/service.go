package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid invitation token")

type Service struct {
	store         Store
	mailer        Mailer
	secret        []byte
	ttl           time.Duration
	signupBaseURL string
}

func NewService(store Store, mailer Mailer, secret []byte, ttl time.Duration, signupBaseURL string) *Service {
	return &Service{store: store, mailer: mailer, secret: secret, ttl: ttl, signupBaseURL: signupBaseURL}
}

// SendInvitation issues a signed invitation token for the inviter,
// stores the pending invitation keyed by the partner's email and hands
// the signup link off to the mailer.
func (s *Service) SendInvitation(ctx context.Context, inviterID, partnerEmail string) (string, error) {
	partnerEmail = strings.ToLower(strings.TrimSpace(partnerEmail))
	if inviterID == "" || partnerEmail == "" {
		return "", errors.New("inviter and partner email required")
	}
	token, err := s.signInvitationToken(inviterID)
	if err != nil {
		return "", err
	}
	inv := Invitation{
		InviteeEmail: partnerEmail,
		Token:        token,
		Status:       StatusPending,
		InviterID:    inviterID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Put(ctx, inv); err != nil {
		return "", fmt.Errorf("store invitation: %w", err)
	}
	link := fmt.Sprintf("%s?invitationToken=%s", s.signupBaseURL, token)
	if err := s.mailer.SendInvitation(ctx, partnerEmail, link); err != nil {
		return "", fmt.Errorf("send invitation: %w", err)
	}
	return token, nil
}

// VerifyInvitation resolves an invitation token back to the inviter.
// The token must both verify cryptographically and match a stored
// pending invitation.
func (s *Service) VerifyInvitation(ctx context.Context, token string) (string, error) {
	inviterID, err := s.parseInvitationToken(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	inv, err := s.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if inv.InviterID != inviterID {
		return "", ErrInvalidToken
	}
	return inv.InviterID, nil
}

// Accept marks the invitation consumed once the partner has signed up.
func (s *Service) Accept(ctx context.Context, inviteeEmail string) error {
	return s.store.MarkAccepted(ctx, strings.ToLower(strings.TrimSpace(inviteeEmail)))
}

func (s *Service) signInvitationToken(inviterID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   inviterID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Service) parseInvitationToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
