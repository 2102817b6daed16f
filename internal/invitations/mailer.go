package invitations

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type Mailer interface {
	SendInvitation(ctx context.Context, toEmail, invitationLink string) error
}

// LogMailer records the invitation instead of delivering it. Delivery
// belongs to an external mail provider; this keeps the flow usable in
// environments where none is configured.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendInvitation(ctx context.Context, toEmail, invitationLink string) error {
	log.WithFields(log.Fields{
		"to":   toEmail,
		"link": invitationLink,
	}).Info("invitation mail suppressed (no mailer configured)")
	return nil
}
