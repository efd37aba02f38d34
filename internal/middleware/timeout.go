package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout is the default request timeout
	DefaultRequestTimeout = 30 * time.Second
	// ScanRequestTimeout covers a synchronous OCR or speech round trip
	ScanRequestTimeout = 90 * time.Second
)

// Timeout bounds handler run time. http.TimeoutHandler cancels the request
// context and answers 503 when the deadline passes.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, `{"success":false,"error":"Service Unavailable","message":"request timed out"}`)
	}
}
