package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/contact"
	"github.com/simplebytes/contact-relay/internal/pkg/logger"
)

// TemplateSender posts template sends to a transactional endpoint. The
// template identifier doubles as the credential.
type TemplateSender struct {
	endpoint string
	timeout  time.Duration
	client   HTTPDoer
}

type templatePayload struct {
	APIKey    string            `json:"apiKey"`
	To        string            `json:"to"`
	ReplyTo   string            `json:"replyTo,omitempty"`
	Variables map[string]string `json:"variables"`
}

// NewTemplateSender creates a template sender from configuration. BaseURL
// is the full send endpoint.
func NewTemplateSender(cfg config.MailConfig) *TemplateSender {
	return &TemplateSender{
		endpoint: cfg.BaseURL,
		timeout:  cfg.Timeout(),
		client:   &http.Client{Timeout: cfg.Timeout()},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (s *TemplateSender) WithHTTPClient(d HTTPDoer) *TemplateSender {
	s.client = d
	return s
}

// Send delivers one templated notification.
func (s *TemplateSender) Send(ctx context.Context, n contact.Notification) error {
	if !n.Templated() {
		return fmt.Errorf("template: notification %s has no template id", n.Kind)
	}

	jsonData, err := json.Marshal(templatePayload{
		APIKey:    n.TemplateID,
		To:        n.To,
		ReplyTo:   n.ReplyTo,
		Variables: n.Variables,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{Transport: config.TransportTemplate, Status: resp.StatusCode, Body: truncate(string(body))}
	}

	logger.InfoCtx(ctx, "notification sent",
		"transport", config.TransportTemplate, "kind", string(n.Kind), "to", n.To,
		"submission_id", n.SubmissionID)
	return nil
}
