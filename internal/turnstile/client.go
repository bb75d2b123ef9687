// Package turnstile verifies Cloudflare Turnstile challenge tokens.
package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/pkg/logger"
)

// HTTPDoer is the interface for executing HTTP requests. *http.Client
// satisfies it; tests substitute their own.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// VerifyResponse is the siteverify response body.
type VerifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	Action      string   `json:"action"`
	ErrorCodes  []string `json:"error-codes"`
}

// Client calls the siteverify endpoint.
type Client struct {
	secret    string
	verifyURL string
	timeout   time.Duration
	client    HTTPDoer
}

// NewClient creates a Turnstile client from configuration.
func NewClient(cfg config.TurnstileConfig) *Client {
	return &Client{
		secret:    cfg.SecretKey,
		verifyURL: cfg.VerifyURL,
		timeout:   cfg.Timeout(),
		client:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(d HTTPDoer) *Client {
	c.client = d
	return c
}

// Verify reports whether token is a valid, unexpired challenge solution.
// A missing token or secret fails without a network call. Transport
// errors, timeouts, non-2xx statuses and undecodable bodies all fail.
func (c *Client) Verify(ctx context.Context, token string) bool {
	if token == "" || c.secret == "" {
		if c.secret == "" {
			logger.WarnCtx(ctx, "turnstile secret not configured, rejecting submission")
		}
		return false
	}

	resp, err := c.siteverify(ctx, token)
	if err != nil {
		logger.WarnCtx(ctx, "turnstile verification unavailable", "error", err)
		return false
	}
	if !resp.Success {
		logger.InfoCtx(ctx, "turnstile rejected token", "error_codes", strings.Join(resp.ErrorCodes, ","))
	}
	return resp.Success
}

func (c *Client) siteverify(ctx context.Context, token string) (*VerifyResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteverify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("siteverify status %d: %s", resp.StatusCode, string(body))
	}

	var out VerifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
