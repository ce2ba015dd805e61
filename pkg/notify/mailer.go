package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/config"
)

type Email struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// NewMailer picks the driver named in cfg.
func NewMailer(cfg *config.NotifierConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Driver {
	case "", "log":
		return &LogMailer{logger: logger.Named("mailer")}, nil
	case "brevo":
		return NewBrevoMailer(cfg, nil), nil
	default:
		return nil, fmt.Errorf("unknown notifier driver %q", cfg.Driver)
	}
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.logger.Info("Email",
		zap.String("to", email.ToEmail),
		zap.String("subject", email.Subject),
		zap.Int("html_bytes", len(email.HTML)))
	return nil
}

// BrevoMailer posts to the Brevo transactional email API.
type BrevoMailer struct {
	url         string
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
}

func NewBrevoMailer(cfg *config.NotifierConfig, client *http.Client) *BrevoMailer {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &BrevoMailer{
		url:         cfg.APIURL,
		apiKey:      cfg.APIKey,
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
		client:      client,
	}
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (m *BrevoMailer) Send(ctx context.Context, email Email) error {
	body, err := json.Marshal(brevoRequest{
		Sender:      brevoContact{Email: m.senderEmail, Name: m.senderName},
		To:          []brevoContact{{Email: email.ToEmail, Name: email.ToName}},
		Subject:     email.Subject,
		HTMLContent: email.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email api returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
