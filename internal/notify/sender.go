package notify

import (
	"context"
	"fmt"

	"github.com/mailersend/mailersend-go"
	"github.com/rs/zerolog"
)

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type emailAPI interface {
	NewMessage() *mailersend.Message
	Send(ctx context.Context, message *mailersend.Message) (*mailersend.Response, error)
}

type MailerSend struct {
	email     emailAPI
	fromEmail string
	fromName  string
}

func NewMailerSend(apiKey, fromEmail, fromName string) *MailerSend {
	return &MailerSend{email: mailersend.NewMailersend(apiKey).Email, fromEmail: fromEmail, fromName: fromName}
}

func (m *MailerSend) Send(ctx context.Context, msg Message) error {
	message := m.email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Email: msg.To}})
	message.SetSubject(msg.Subject)
	message.SetText(msg.Text)
	message.SetHTML(msg.HTML)

	if _, err := m.email.Send(ctx, message); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	zerolog.Ctx(ctx).Info().
		Str("event", "email_logged").
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg(msg.Text)
	return nil
}
