package mailer

import (
	"context"
	"testing"

	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/contact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		strategy  string
		transport string
		wantName  string
		composer  contact.Composer
	}{
		{"html over maillayer", config.StrategyHTML, config.TransportMailLayer, "html/maillayer", HTMLComposer{}},
		{"html over ses", config.StrategyHTML, config.TransportSES, "html/ses", HTMLComposer{}},
		{"template", config.StrategyTemplate, config.TransportTemplate, "template/template",
			TemplateComposer{ConfirmationID: "c", AdminID: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Mail.Strategy = tt.strategy
			cfg.Mail.Transport = tt.transport
			cfg.Mail.Templates = config.TemplateIDs{Confirmation: "c", Admin: "a"}
			cfg.SES.AccessKey = "AKIDEXAMPLE"
			cfg.SES.SecretKey = "secret"

			s, err := New(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
			assert.Equal(t, tt.composer, s.Composer)

			var _ contact.Strategy = s
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Mail.Strategy = "carrier-pigeon"
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown mail strategy")

	cfg = config.Default()
	cfg.Mail.Transport = "fax"
	_, err = New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown mail transport")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))
	long := make([]byte, maxErrorBody+10)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, truncate(string(long)), maxErrorBody+3)
}
