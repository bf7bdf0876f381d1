// Package mail dispatches transactional email through SendGrid.
package mail

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender dispatches a password-reset link to a user. Implementations must
// return an error when the message was not accepted for delivery, so the
// caller can surface the failure instead of silently dropping the link.
type Sender interface {
	SendPasswordReset(toEmail, resetURL string) error
}

// SendGridSender sends mail through the SendGrid API.
type SendGridSender struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendGridSender creates a SendGridSender using the given API key and
// sender identity.
func NewSendGridSender(apiKey, fromName, fromAddr string) *SendGridSender {
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

// SendPasswordReset emails a reset link. The URL embeds the plaintext reset
// secret, so it must never be logged.
func (s *SendGridSender) SendPasswordReset(toEmail, resetURL string) error {
	from := mail.NewEmail(s.fromName, s.fromAddr)
	to := mail.NewEmail("", toEmail)
	subject := "Reset your password"

	plainTextContent := fmt.Sprintf("Reset your password using this link: %s\nThe link expires in 10 minutes.", resetURL)
	htmlContent := fmt.Sprintf(`<p>Reset your password using <a href="%s">this link</a>.</p><p>The link expires in 10 minutes.</p>`, resetURL)

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d", response.StatusCode)
	}

	log.Info().Str("email", toEmail).Msg("Password reset email sent")
	return nil
}
