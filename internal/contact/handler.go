package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/metrics"
	"github.com/simplebytes/contact-relay/internal/pkg/httputil"
	"github.com/simplebytes/contact-relay/internal/pkg/logger"
)

// maxBodyBytes caps the submission body. The form's largest field is the
// free-text message.
const maxBodyBytes = 64 << 10

// Handler serves the contact endpoint. It holds no per-request state and
// is safe for concurrent use.
type Handler struct {
	allowedOrigin string
	adminEmail    string
	verifier      Verifier
	strategy      Strategy
}

// NewHandler creates a Handler from the process configuration and its two
// collaborators.
func NewHandler(cfg *config.Config, verifier Verifier, strategy Strategy) *Handler {
	return &Handler{
		allowedOrigin: cfg.CORS.AllowedOrigin,
		adminEmail:    cfg.Mail.AdminEmail,
		verifier:      verifier,
		strategy:      strategy,
	}
}

// SetCORSHeaders writes the static CORS header set carried by every response.
func (h *Handler) SetCORSHeaders(header http.Header) {
	header.Set("Access-Control-Allow-Origin", h.allowedOrigin)
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.SetCORSHeaders(w.Header())

	switch r.Method {
	case http.MethodOptions:
		httputil.NoContent(w)
		return
	case http.MethodPost:
	default:
		h.respond(r.Context(), w, fail(ReasonInvalidMethod, nil))
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.respond(r.Context(), w, fail(ReasonMalformedBody, fmt.Errorf("panic: %v", rec)))
		}
	}()

	sub, err := decodeSubmission(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.respond(r.Context(), w, fail(ReasonMalformedBody, err))
		return
	}

	h.respond(r.Context(), w, h.Process(r.Context(), *sub))
}

// decodeSubmission requires the body to be exactly one JSON object.
// A literal null and trailing data after the object are rejected.
func decodeSubmission(body io.Reader) (*Submission, error) {
	dec := json.NewDecoder(body)

	var sub *Submission
	if err := dec.Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if sub == nil {
		return nil, errors.New("decode body: null submission")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("decode body: trailing data after submission: %v", err)
	}
	return sub, nil
}

// Process runs a decoded submission through honeypot, validation,
// verification and notification, in that order.
func (h *Handler) Process(ctx context.Context, sub Submission) Result {
	if sub.IsSpam() {
		logger.InfoCtx(ctx, "honeypot triggered, faking success")
		return Result{Honeypot: true}
	}

	if reason := sub.Validate(); reason != ReasonNone {
		return fail(reason, nil)
	}

	verified := h.verifier.Verify(ctx, sub.TurnstileToken)
	metrics.RecordVerification(verified)
	if !verified {
		return fail(ReasonVerificationFailed, nil)
	}

	in := sub.inquiry(uuid.NewString())
	if err := h.dispatch(ctx, in); err != nil {
		return fail(ReasonDeliveryFailed, err)
	}

	logger.InfoCtx(ctx, "submission relayed",
		"submission_id", in.ID, "project", in.Project, "topic", in.Topic, "strategy", h.strategy.Name())
	return Result{}
}

// dispatch sends the admin alert before the confirmation. A failed admin
// alert aborts the request; a failed confirmation after a delivered alert
// is only logged.
func (h *Handler) dispatch(ctx context.Context, in Inquiry) error {
	alert := h.strategy.AdminAlert(in, h.adminEmail)
	err := h.strategy.Send(ctx, alert)
	metrics.RecordNotification(string(KindAdmin), err)
	if err != nil {
		return fmt.Errorf("admin alert for %s: %w", in.ID, err)
	}

	confirmation := h.strategy.Confirmation(in)
	err = h.strategy.Send(ctx, confirmation)
	metrics.RecordNotification(string(KindConfirmation), err)
	if err != nil {
		logger.WarnCtx(ctx, "confirmation not delivered, admin already notified",
			"submission_id", in.ID, "to", confirmation.To, "error", err)
	}
	return nil
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, res Result) {
	outcome := res.Reason.String()
	if res.Honeypot {
		outcome = "honeypot"
	}
	metrics.RecordSubmission(outcome)

	if res.OK() {
		httputil.OK(w)
		return
	}
	if res.Err != nil {
		reqID, _ := logger.RequestIDFromContext(ctx)
		httputil.SafeError(w, res.Status(), res.Err, res.Message(), "reason", outcome, "request_id", reqID)
		return
	}
	httputil.Fail(w, res.Status(), res.Message())
}
