// Package mailer builds the two contact notifications and delivers them.
//
// A strategy pairs a Composer (how content is produced) with a Sender (where
// it goes). The html strategy renders escaped layouts locally and sends them
// through MailLayer or SES; the template strategy hands raw variables to a
// transactional template endpoint.
package mailer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/contact"
)

const (
	maxResponseBytes = 64 << 10
	maxErrorBody     = 512
)

// HTTPDoer is the subset of *http.Client the HTTP transports need.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SendError is returned when a provider answers with a non-2xx status.
type SendError struct {
	Transport string
	Status    int
	Body      string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Transport, e.Status, e.Body)
}

// Strategy is a Composer and Sender paired under a name.
type Strategy struct {
	contact.Composer
	contact.Sender
	name string
}

// Name reports "<strategy>/<transport>".
func (s *Strategy) Name() string { return s.name }

// New selects the strategy and transport named in cfg.
func New(ctx context.Context, cfg *config.Config) (*Strategy, error) {
	var composer contact.Composer
	switch cfg.Mail.Strategy {
	case config.StrategyHTML:
		composer = HTMLComposer{}
	case config.StrategyTemplate:
		composer = TemplateComposer{
			ConfirmationID: cfg.Mail.Templates.Confirmation,
			AdminID:        cfg.Mail.Templates.Admin,
		}
	default:
		return nil, fmt.Errorf("unknown mail strategy %q", cfg.Mail.Strategy)
	}

	var sender contact.Sender
	switch cfg.Mail.Transport {
	case config.TransportMailLayer:
		sender = NewMailLayerSender(cfg.Mail)
	case config.TransportTemplate:
		sender = NewTemplateSender(cfg.Mail)
	case config.TransportSES:
		ses, err := NewSESSender(ctx, cfg.SES, cfg.Mail)
		if err != nil {
			return nil, fmt.Errorf("ses transport: %w", err)
		}
		sender = ses
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}

	return &Strategy{
		Composer: composer,
		Sender:   sender,
		name:     cfg.Mail.Strategy + "/" + cfg.Mail.Transport,
	}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
