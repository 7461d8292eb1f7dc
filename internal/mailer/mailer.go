// Package mailer sends the account emails. Failures are logged by the
// callers; a lost email never fails the request that triggered it.
package mailer

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/uptask/uptask-server/internal/config"
	"github.com/uptask/uptask-server/internal/models"
)

type SMTPMailer struct {
	logger      zerolog.Logger
	cfg         config.SMTPConfig
	frontendURL string
}

func NewSMTP(logger zerolog.Logger, cfg config.SMTPConfig, frontendURL string) *SMTPMailer {
	return &SMTPMailer{
		logger:      logger,
		cfg:         cfg,
		frontendURL: frontendURL,
	}
}

func (m *SMTPMailer) SendAccountConfirmation(user *models.User) error {
	body := fmt.Sprintf(`
<p>Hi %s, verify your UpTask account.</p>
<p>Your account is almost ready, you only need to confirm it at the following link:</p>
<a href="%s/confirm/%s">Confirm account</a>
<p>If you did not create this account, you can ignore this message.</p>
`, user.Name, m.frontendURL, user.Token)

	return m.send(user.Email, "UpTask - Confirm your account", body)
}

func (m *SMTPMailer) SendPasswordReset(user *models.User) error {
	body := fmt.Sprintf(`
<p>Hi %s, you requested a password reset.</p>
<p>Follow the link below to set a new password:</p>
<a href="%s/forgot-password/%s">Reset password</a>
<p>If you did not request this email, you can ignore this message.</p>
`, user.Name, m.frontendURL, user.Token)

	return m.send(user.Email, "UpTask - Reset your password", body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	err := dialer.DialAndSend(msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Debug().
		Str("to", to).
		Str("subject", subject).
		Msg("sent email")
	return nil
}
