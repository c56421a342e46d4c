package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lista/backend/internal/config"
	"github.com/lista/backend/pkg/logger"
)

// Mailer delivers the password reset email. Failures surface to the caller
// and are never retried.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email string) error
}

// SendGridMailer sends mail through the SendGrid v3 mail/send endpoint.
type SendGridMailer struct {
	apiKey      string
	fromEmail   string
	frontendURL string
	endpoint    string
	httpClient  *http.Client
}

var _ Mailer = (*SendGridMailer)(nil)

func NewSendGridMailer(cfg config.SendGridConfig, frontendURL string) *SendGridMailer {
	return &SendGridMailer{
		apiKey:      cfg.APIKey,
		fromEmail:   cfg.FromEmail,
		frontendURL: frontendURL,
		endpoint:    "https://api.sendgrid.com/v3/mail/send",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMail struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendGridContent `json:"content"`
}

func (m *SendGridMailer) SendPasswordReset(ctx context.Context, email string) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid: API key not configured")
	}

	resetLink := fmt.Sprintf("%s/change-password?email=%s", m.frontendURL, url.QueryEscape(email))

	payload := sendGridMail{
		From:    sendGridAddress{Email: m.fromEmail},
		Subject: "Password Reset Request",
		Content: []sendGridContent{{
			Type:  "text/plain",
			Value: fmt.Sprintf("Click the link to reset your password: %s", resetLink),
		}},
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []sendGridAddress `json:"to"`
	}{To: []sendGridAddress{{Email: email}}})

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, string(raw))
	}

	logger.Info("password_reset_email_sent", map[string]interface{}{
		"email": email,
	})
	return nil
}
