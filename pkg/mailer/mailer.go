package mailer

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers rendered digests over SendGrid to a fixed recipient list.
type Mailer struct {
	client     *sendgrid.Client
	fromEmail  string
	fromName   string
	recipients []string
}

func New(apiKey, fromEmail, fromName string, recipients []string) *Mailer {
	return &Mailer{
		client:     sendgrid.NewSendClient(apiKey),
		fromEmail:  fromEmail,
		fromName:   fromName,
		recipients: recipients,
	}
}

// Send delivers one HTML message to every configured recipient.
func (m *Mailer) Send(subject, htmlBody string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)

	for _, rcpt := range m.recipients {
		to := mail.NewEmail("", rcpt)
		message := mail.NewSingleEmail(from, subject, to, "This digest requires an HTML-capable mail client.", htmlBody)

		response, err := m.client.Send(message)
		if err != nil {
			return fmt.Errorf("sending to %s: %w", rcpt, err)
		}
		if response.StatusCode >= 400 {
			return fmt.Errorf("sending to %s: status %d", rcpt, response.StatusCode)
		}
	}

	return nil
}
