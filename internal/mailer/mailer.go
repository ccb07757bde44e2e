// Package mailer sends the license delivery email through Resend.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"dropvoxsite/internal/config"
)

// Mailer delivers transactional email via the Resend API.
type Mailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

// New creates a Mailer from configuration.
func New(cfg config.EmailConfig, logger *slog.Logger) *Mailer {
	return &Mailer{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From,
		logger: logger.With(slog.String("component", "mailer")),
	}
}

// SendLicenseEmail emails the license key and activation instructions to a
// purchaser.
func (m *Mailer) SendLicenseEmail(ctx context.Context, toEmail, licenseKey string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{toEmail},
		Subject: "Your DropVox License Key",
		Html:    licenseEmailHTML(licenseKey),
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("sending license email: %w", err)
	}

	m.logger.InfoContext(ctx, "license email sent",
		slog.String("email_id", sent.Id))
	return nil
}

func licenseEmailHTML(licenseKey string) string {
	return fmt.Sprintf(`
		<h1>Thank you for purchasing DropVox!</h1>
		<p>Your license key is:</p>
		<div style="background: #f5f5f5; padding: 20px; border-radius: 8px; font-family: monospace; font-size: 24px; text-align: center; margin: 20px 0;">
			%s
		</div>
		<p>To activate:</p>
		<ol>
			<li>Open DropVox</li>
			<li>Click Settings &rarr; Enter License Key</li>
			<li>Paste your key and click Activate</li>
		</ol>
		<p>This license is valid for DropVox v1.x on up to 3 machines.</p>
		<p>Questions? Reply to this email.</p>
	`, licenseKey)
}
