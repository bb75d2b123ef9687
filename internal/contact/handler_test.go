package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVerifier records every token it is asked about.
type fakeVerifier struct {
	pass   bool
	tokens []string
}

func (f *fakeVerifier) Verify(_ context.Context, token string) bool {
	f.tokens = append(f.tokens, token)
	return f.pass
}

// fakeStrategy composes minimal notifications and records sends.
type fakeStrategy struct {
	sent    []Notification
	failFor map[Kind]error
}

func (f *fakeStrategy) Name() string { return "fake" }

func (f *fakeStrategy) Confirmation(in Inquiry) Notification {
	return Notification{Kind: KindConfirmation, SubmissionID: in.ID, To: in.Email, Subject: "thanks " + in.Name}
}

func (f *fakeStrategy) AdminAlert(in Inquiry, admin string) Notification {
	return Notification{
		Kind:         KindAdmin,
		SubmissionID: in.ID,
		To:           admin,
		ReplyTo:      in.Email,
		Subject:      "[" + in.Project + "] " + in.Topic + " from " + in.Name,
	}
}

func (f *fakeStrategy) Send(_ context.Context, n Notification) error {
	f.sent = append(f.sent, n)
	return f.failFor[n.Kind]
}

func (f *fakeStrategy) sentTo(kind Kind) []Notification {
	var out []Notification
	for _, n := range f.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func setupHandler(t *testing.T, pass bool) (*Handler, *fakeVerifier, *fakeStrategy) {
	t.Helper()
	cfg := config.Default()
	cfg.Mail.AdminEmail = "owner@simplebytes.com"
	v := &fakeVerifier{pass: pass}
	s := &fakeStrategy{failFor: map[Kind]error{}}
	return NewHandler(cfg, v, s), v, s
}

func validSubmission() map[string]string {
	return map[string]string{
		"name":           "Jane Doe",
		"email":          "jane@example.com",
		"project":        "doodlify",
		"topic":          "bug",
		"message":        "The export button does nothing.",
		"website":        "",
		"turnstileToken": "token-123",
	}
}

func post(t *testing.T, h http.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool    `json:"success"`
	Message *string `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func assertFailure(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Message)
	assert.Equal(t, msg, *env.Message)
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "https://simplebytes.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestPreflightNeverInvokesLogic(t *testing.T) {
	h, v, s := setupHandler(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/", strings.NewReader(`{"website":"spam"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertCORS(t, rec)
	assert.Empty(t, v.tokens)
	assert.Empty(t, s.sent)
}

func TestMethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			h, v, s := setupHandler(t, true)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))

			assertFailure(t, rec, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
			assertCORS(t, rec)
			assert.Empty(t, v.tokens)
			assert.Empty(t, s.sent)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	tests := map[string]string{
		"not json":         "name=jane",
		"truncated":        `{"name":"Jane"`,
		"non-string field": `{"name":42}`,
		"empty":            "",
		"null":             "null",
		"trailing data":    `{"name":"Jane","email":"jane@example.com","project":"doodlify","topic":"bug","message":"hi","turnstileToken":"t"} trailing-garbage`,
		"two objects":      `{"name":"Jane"}{"name":"John"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			h, _, s := setupHandler(t, true)

			rec := post(t, h, body)

			assertFailure(t, rec, http.StatusInternalServerError, MsgGenericError)
			assertCORS(t, rec)
			assert.Empty(t, s.sent)
		})
	}
}

func TestTrailingWhitespaceIsAccepted(t *testing.T) {
	h, _, s := setupHandler(t, true)
	body, err := json.Marshal(validSubmission())
	require.NoError(t, err)

	rec := post(t, h, string(body)+"\n\t ")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.sent, 2)
}

func TestOversizeBodyIsMalformed(t *testing.T) {
	h, _, s := setupHandler(t, true)
	sub := validSubmission()
	sub["message"] = strings.Repeat("x", maxBodyBytes+1)

	rec := post(t, h, sub)

	assertFailure(t, rec, http.StatusInternalServerError, MsgGenericError)
	assert.Empty(t, s.sent)
}

func TestHoneypotFakesSuccess(t *testing.T) {
	for _, website := range []string{"http://spam.example", "  x  "} {
		t.Run(website, func(t *testing.T) {
			h, v, s := setupHandler(t, true)
			sub := validSubmission()
			sub["website"] = website
			// Even an otherwise invalid submission gets the fake success.
			sub["email"] = ""

			rec := post(t, h, sub)

			assert.Equal(t, http.StatusOK, rec.Code)
			env := decode(t, rec)
			assert.True(t, env.Success)
			assert.Nil(t, env.Message)
			assertCORS(t, rec)
			assert.Empty(t, v.tokens, "verifier must not be called")
			assert.Empty(t, s.sent, "no notification may be sent")
		})
	}
}

func TestBlankHoneypotIsIgnored(t *testing.T) {
	h, _, s := setupHandler(t, true)
	sub := validSubmission()
	sub["website"] = "   \t"

	rec := post(t, h, sub)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.sent, 2)
}

func TestByteOrderMarkHoneypotIsIgnored(t *testing.T) {
	h, v, s := setupHandler(t, true)
	sub := validSubmission()
	sub["website"] = "\ufeff"

	rec := post(t, h, sub)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, v.tokens, 1)
	assert.Len(t, s.sent, 2)
}

func TestMissingFields(t *testing.T) {
	for _, field := range []string{"name", "email", "project", "topic", "message"} {
		t.Run(field, func(t *testing.T) {
			h, v, s := setupHandler(t, true)
			sub := validSubmission()
			delete(sub, field)

			rec := post(t, h, sub)

			assertFailure(t, rec, http.StatusBadRequest, MsgMissingFields)
			assert.Empty(t, v.tokens)
			assert.Empty(t, s.sent)
		})
	}
}

func TestInvalidEmail(t *testing.T) {
	for _, email := range []string{"no-at-sign", "a@b", "a b@c.com", "a@@b.com", "@b.com", "a@b."} {
		t.Run(email, func(t *testing.T) {
			h, v, s := setupHandler(t, true)
			sub := validSubmission()
			sub["email"] = email

			rec := post(t, h, sub)

			assertFailure(t, rec, http.StatusBadRequest, MsgInvalidEmail)
			assert.Empty(t, v.tokens)
			assert.Empty(t, s.sent)
		})
	}
}

func TestVerificationFailedSendsNothing(t *testing.T) {
	h, v, s := setupHandler(t, false)

	rec := post(t, h, validSubmission())

	assertFailure(t, rec, http.StatusBadRequest, MsgVerificationFailed)
	assertCORS(t, rec)
	assert.Equal(t, []string{"token-123"}, v.tokens)
	assert.Empty(t, s.sent)
}

func TestSuccessSendsExactlyTwoNotifications(t *testing.T) {
	h, v, s := setupHandler(t, true)

	rec := post(t, h, validSubmission())

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assertCORS(t, rec)
	assert.Len(t, v.tokens, 1)
	require.Len(t, s.sent, 2)

	admin := s.sentTo(KindAdmin)
	require.Len(t, admin, 1)
	assert.Equal(t, "owner@simplebytes.com", admin[0].To)
	assert.Equal(t, "jane@example.com", admin[0].ReplyTo)
	assert.Equal(t, "[Doodlify] Bug Report from Jane Doe", admin[0].Subject)

	confirmation := s.sentTo(KindConfirmation)
	require.Len(t, confirmation, 1)
	assert.Equal(t, "jane@example.com", confirmation[0].To)
	assert.Empty(t, confirmation[0].ReplyTo)

	assert.NotEmpty(t, admin[0].SubmissionID)
	assert.Equal(t, admin[0].SubmissionID, confirmation[0].SubmissionID)
}

func TestUnknownCodesPassThrough(t *testing.T) {
	h, _, s := setupHandler(t, true)
	sub := validSubmission()
	sub["project"] = "side-quest"
	sub["topic"] = "feedback"

	rec := post(t, h, sub)

	require.Equal(t, http.StatusOK, rec.Code)
	admin := s.sentTo(KindAdmin)
	require.Len(t, admin, 1)
	assert.Equal(t, "[side-quest] feedback from Jane Doe", admin[0].Subject)
}

func TestAdminFailureAbortsBeforeConfirmation(t *testing.T) {
	h, _, s := setupHandler(t, true)
	s.failFor[KindAdmin] = errors.New("maillayer error 502: bad gateway")

	rec := post(t, h, validSubmission())

	assertFailure(t, rec, http.StatusInternalServerError, MsgGenericError)
	assert.NotContains(t, rec.Body.String(), "maillayer")
	require.Len(t, s.sent, 1)
	assert.Equal(t, KindAdmin, s.sent[0].Kind)
	assert.Empty(t, s.sentTo(KindConfirmation), "submitter must not be told the message arrived")
}

func TestConfirmationFailureAfterAdminStillSucceeds(t *testing.T) {
	h, _, s := setupHandler(t, true)
	s.failFor[KindConfirmation] = errors.New("mailbox unavailable")

	rec := post(t, h, validSubmission())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).Success)
	assert.Len(t, s.sentTo(KindAdmin), 1)
	assert.Len(t, s.sentTo(KindConfirmation), 1)
}

type panickingStrategy struct{ fakeStrategy }

func (p *panickingStrategy) AdminAlert(Inquiry, string) Notification { panic("renderer bug") }

func TestPanicIsMappedToGenericError(t *testing.T) {
	cfg := config.Default()
	h := NewHandler(cfg, &fakeVerifier{pass: true}, &panickingStrategy{})

	rec := post(t, h, validSubmission())

	assertFailure(t, rec, http.StatusInternalServerError, MsgGenericError)
	assertCORS(t, rec)
}

func TestResultMapping(t *testing.T) {
	tests := []struct {
		reason Reason
		status int
		msg    string
		name   string
	}{
		{ReasonNone, http.StatusOK, "", "ok"},
		{ReasonInvalidMethod, http.StatusMethodNotAllowed, MsgMethodNotAllowed, "invalid_method"},
		{ReasonMalformedBody, http.StatusInternalServerError, MsgGenericError, "malformed_body"},
		{ReasonMissingFields, http.StatusBadRequest, MsgMissingFields, "missing_fields"},
		{ReasonInvalidEmail, http.StatusBadRequest, MsgInvalidEmail, "invalid_email"},
		{ReasonVerificationFailed, http.StatusBadRequest, MsgVerificationFailed, "verification_failed"},
		{ReasonDeliveryFailed, http.StatusInternalServerError, MsgGenericError, "delivery_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Result{Reason: tt.reason}
			assert.Equal(t, tt.status, r.Status())
			assert.Equal(t, tt.msg, r.Message())
			assert.Equal(t, tt.name, tt.reason.String())
		})
	}
}
