package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/simplebytes/contact-relay/internal/api"
	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/contact"
	"github.com/simplebytes/contact-relay/internal/mailer"
	"github.com/simplebytes/contact-relay/internal/pkg/logger"
	"github.com/simplebytes/contact-relay/internal/turnstile"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	return ln.Close()
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	_ = logger.Sync()
	os.Exit(1)
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if err := cfg.Validate(); err != nil {
		fatal("invalid config", err)
	}

	if cfg.Turnstile.SecretKey == "" {
		logger.Warn("TURNSTILE_SECRET_KEY not set, every submission will fail verification")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy, err := mailer.New(ctx, cfg)
	if err != nil {
		fatal("failed to initialize mailer", err)
	}
	verifier := turnstile.NewClient(cfg.Turnstile)
	handler := contact.NewHandler(cfg, verifier, strategy)
	server := api.NewServer(cfg, handler, strategy.Name())

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		fatal("pre-flight check failed", err)
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"contact_path", cfg.Server.ContactPath,
			"mail", strategy.Name(),
			"metrics", cfg.Metrics.Enabled)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	_ = logger.Sync()
}
