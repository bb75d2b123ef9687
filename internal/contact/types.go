// Package contact implements the contact-form submission handler: method
// gating, honeypot and field validation, bot verification and the two
// outbound notifications that follow a valid submission.
package contact

import (
	"context"
	"net/http"
)

// Submission is the JSON body posted by the contact form. Every field is
// untrusted input.
type Submission struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Project        string `json:"project"`
	Topic          string `json:"topic"`
	Message        string `json:"message"`
	Website        string `json:"website"` // honeypot, hidden from humans
	TurnstileToken string `json:"turnstileToken"`
}

// Inquiry is a verified submission with project and topic codes resolved
// to display labels. It is what notifications are rendered from.
type Inquiry struct {
	ID      string
	Name    string
	Email   string
	Project string
	Topic   string
	Message string
}

// Kind identifies which of the two notifications a message is.
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindAdmin        Kind = "admin"
)

// Notification is one outbound email. Rendered strategies fill Subject and
// HTML; template strategies fill TemplateID and Variables.
type Notification struct {
	Kind         Kind
	SubmissionID string
	To           string
	ReplyTo      string

	Subject string
	HTML    string

	TemplateID string
	Variables  map[string]string
}

// Templated reports whether the notification delegates rendering to a
// remote template.
func (n Notification) Templated() bool { return n.TemplateID != "" }

// Verifier checks a challenge token with the verification service. Any
// failure, including an unreachable service, is reported as false.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Composer builds the two notifications for an inquiry.
type Composer interface {
	Confirmation(in Inquiry) Notification
	AdminAlert(in Inquiry, adminEmail string) Notification
}

// Strategy pairs a Composer with a Sender able to deliver what it composes.
type Strategy interface {
	Composer
	Sender
	Name() string
}

// Reason classifies how a request ended.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonInvalidMethod
	ReasonMalformedBody
	ReasonMissingFields
	ReasonInvalidEmail
	ReasonVerificationFailed
	ReasonDeliveryFailed
)

var reasonNames = map[Reason]string{
	ReasonNone:               "ok",
	ReasonInvalidMethod:      "invalid_method",
	ReasonMalformedBody:      "malformed_body",
	ReasonMissingFields:      "missing_fields",
	ReasonInvalidEmail:       "invalid_email",
	ReasonVerificationFailed: "verification_failed",
	ReasonDeliveryFailed:     "delivery_failed",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return "unknown"
}

// Client-facing messages. These strings are part of the form's contract.
const (
	MsgMethodNotAllowed   = "Method not allowed"
	MsgGenericError       = "An error occurred. Please try again."
	MsgMissingFields      = "All fields are required"
	MsgInvalidEmail       = "Invalid email address"
	MsgVerificationFailed = "Security verification failed. Please try again."
)

// Result is the outcome of one submission. A zero Result is success.
type Result struct {
	Reason Reason
	// Honeypot marks a fake success returned to a bot.
	Honeypot bool
	// Err carries the internal cause for server-side logging only.
	Err error
}

// OK reports whether the caller should be told the submission succeeded.
func (r Result) OK() bool { return r.Reason == ReasonNone }

// Status returns the HTTP status for the result.
func (r Result) Status() int {
	switch r.Reason {
	case ReasonNone:
		return http.StatusOK
	case ReasonInvalidMethod:
		return http.StatusMethodNotAllowed
	case ReasonMissingFields, ReasonInvalidEmail, ReasonVerificationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message, empty on success.
func (r Result) Message() string {
	switch r.Reason {
	case ReasonNone:
		return ""
	case ReasonInvalidMethod:
		return MsgMethodNotAllowed
	case ReasonMissingFields:
		return MsgMissingFields
	case ReasonInvalidEmail:
		return MsgInvalidEmail
	case ReasonVerificationFailed:
		return MsgVerificationFailed
	default:
		return MsgGenericError
	}
}

func fail(reason Reason, err error) Result {
	return Result{Reason: reason, Err: err}
}
