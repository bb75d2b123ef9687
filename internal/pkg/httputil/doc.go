// Package httputil provides shared HTTP response helpers for handlers.
//
// Handlers use these instead of writing raw http.ResponseWriter calls so
// every response has the same JSON envelope, Content-Type and error logging.
package httputil
