package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/contact"
	"github.com/simplebytes/contact-relay/internal/pkg/logger"
)

// MailLayerSender sends rendered HTML through the MailLayer send API.
type MailLayerSender struct {
	apiKey    string
	baseURL   string
	fromEmail string
	timeout   time.Duration
	client    HTTPDoer
}

type mailLayerPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NewMailLayerSender creates a MailLayer sender from configuration.
func NewMailLayerSender(cfg config.MailConfig) *MailLayerSender {
	return &MailLayerSender{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		fromEmail: cfg.FromEmail,
		timeout:   cfg.Timeout(),
		client:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (s *MailLayerSender) WithHTTPClient(d HTTPDoer) *MailLayerSender {
	s.client = d
	return s
}

// Send delivers one rendered notification.
func (s *MailLayerSender) Send(ctx context.Context, n contact.Notification) error {
	if n.Templated() {
		return fmt.Errorf("maillayer: notification %s is templated, expected rendered html", n.Kind)
	}
	if s.apiKey == "" {
		return fmt.Errorf("MailLayer API key not configured")
	}

	jsonData, err := json.Marshal(mailLayerPayload{
		From:    s.fromEmail,
		To:      n.To,
		ReplyTo: n.ReplyTo,
		Subject: n.Subject,
		HTML:    n.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/send", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{Transport: config.TransportMailLayer, Status: resp.StatusCode, Body: truncate(string(body))}
	}

	var result struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &result)
	logger.InfoCtx(ctx, "notification sent",
		"transport", config.TransportMailLayer, "kind", string(n.Kind), "to", n.To,
		"submission_id", n.SubmissionID, "message_id", result.ID)
	return nil
}
