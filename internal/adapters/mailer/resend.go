package mailer

// Package mailer delivers feedback emails through a Resend-compatible HTTP
// API.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
)

// ResendMailer implements ports.Mailer against the Resend send endpoint.
type ResendMailer struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

// Config holds mailer construction parameters.
type Config struct {
	APIURL      string
	APIKey      string
	FromAddress string
	HTTPClient  *http.Client
}

// NewResendMailer creates a mailer. APIKey and FromAddress are required.
func NewResendMailer(cfg Config) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mailer API key is required")
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("mailer from address is required")
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.resend.com/emails"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ResendMailer{
		apiURL:     apiURL,
		apiKey:     cfg.APIKey,
		from:       cfg.FromAddress,
		httpClient: httpClient,
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Send delivers one email to the message recipients.
func (m *ResendMailer) Send(ctx context.Context, msg ports.Message) error {
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}
	if msg.Subject == "" {
		return errors.New("message has no subject")
	}

	body, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
