package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/pkg/httputil"
)

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status  string                    `json:"status"` // "healthy", "degraded"
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the configuration state of one collaborator.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "degraded"
	Message string `json:"message,omitempty"`
}

// HealthChecker reports process health. The relay holds no connections, so
// checks inspect configuration only and never call upstream services.
type HealthChecker struct {
	cfg       *config.Config
	strategy  string
	startTime time.Time
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker(cfg *config.Config, strategyName string) *HealthChecker {
	return &HealthChecker{
		cfg:       cfg,
		strategy:  strategyName,
		startTime: time.Now(),
	}
}

const healthVersion = "1.0.0"

// HandleHealth reports "degraded" when a secret the contact flow depends on
// is missing. It always answers 200.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]ComponentCheck{
		"turnstile": hc.checkTurnstile(),
		"mail":      hc.checkMail(),
	}

	httputil.JSON(w, http.StatusOK, HealthStatus{
		Status:  determineOverallStatus(checks),
		Version: healthVersion,
		Uptime:  formatUptime(time.Since(hc.startTime)),
		Checks:  checks,
	})
}

// HandleLiveness always returns 200 while the process is running.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
		"uptime": formatUptime(time.Since(hc.startTime)),
	})
}

func (hc *HealthChecker) checkTurnstile() ComponentCheck {
	if hc.cfg.Turnstile.SecretKey == "" {
		return ComponentCheck{Status: "degraded", Message: "secret key not configured, every submission will fail verification"}
	}
	return ComponentCheck{Status: "up", Message: "configured"}
}

func (hc *HealthChecker) checkMail() ComponentCheck {
	m := hc.cfg.Mail
	if m.Transport == config.TransportMailLayer && m.APIKey == "" {
		return ComponentCheck{Status: "degraded", Message: fmt.Sprintf("%s: api key not configured", hc.strategy)}
	}
	return ComponentCheck{Status: "up", Message: hc.strategy}
}

func determineOverallStatus(checks map[string]ComponentCheck) string {
	for _, c := range checks {
		if c.Status != "up" {
			return "degraded"
		}
	}
	return "healthy"
}

// formatUptime produces a human-readable uptime string like "3d 4h 12m 5s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
