package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/rentfleet/rentfleet-backend/pkg/config"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

// Mailer delivers a rendered message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to string, msg Message) error
}

// SendgridMailer delivers through the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendgridMailer builds a mailer from the mail configuration.
func NewSendgridMailer(cfg config.MailConfig) (*SendgridMailer, error) {
	if cfg.SendgridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	return &SendgridMailer{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
	}, nil
}

// Send implements Mailer.
func (m *SendgridMailer) Send(ctx context.Context, to string, msg Message) error {
	html := msg.HTML
	if html == "" {
		html = msg.Plain
	}
	email := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail("", to), msg.Plain, html)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending mail")
	}
	if resp.StatusCode >= 400 {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("sendgrid rejected the message with status %d", resp.StatusCode))
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Used in
// dev environments without a SendGrid key.
type LogMailer struct {
	logg *logger.Logger
}

// NewLogMailer builds the dev mailer.
func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, to string, msg Message) error {
	m.logg.Info(
		m.logg.WithFields(ctx, map[string]any{"to": to, "subject": msg.Subject}),
		"mail delivery skipped (no sendgrid key)",
	)
	return nil
}
