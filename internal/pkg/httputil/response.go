package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/simplebytes/contact-relay/internal/pkg/logger"
)

// Envelope is the response body shape shared by every endpoint the browser
// form talks to: {"success": bool, "message"?: string}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// JSON writes a JSON response with the given status code. The data is
// serialized and Content-Type is set automatically.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("json encode failed", "error", err)
	}
}

// OK writes 200 {"success":true}.
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, Envelope{Success: true})
}

// Fail writes a failure envelope with a client-facing message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// NoContent writes a 204 response with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// SafeError logs the internal error server side and writes publicMsg only,
// so upstream details never reach the caller.
func SafeError(w http.ResponseWriter, status int, internalErr error, publicMsg string, fields ...any) {
	if internalErr != nil {
		logger.Error(publicMsg, append(fields, "status", status, "error", internalErr)...)
	}
	Fail(w, status, publicMsg)
}
