package middleware

import (
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benvon/bakatracker/internal/request"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hsts     bool
		tls      bool
		wantHSTS bool
	}{
		{name: "plain http", hsts: true},
		{name: "tls without hsts", tls: true},
		{name: "tls with hsts", hsts: true, tls: true, wantHSTS: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			w := httptest.NewRecorder()
			SecurityHeaders(tt.hsts)(okHandler).ServeHTTP(w, req)

			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff")
			}
			if w.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("missing X-Frame-Options")
			}
			if got := w.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{name: "get needs nothing", method: http.MethodGet, want: http.StatusOK},
		{name: "json post", method: http.MethodPost, contentType: "application/json; charset=utf-8", body: "{}", want: http.StatusOK},
		{name: "bodyless post", method: http.MethodPost, want: http.StatusOK},
		{name: "missing with body", method: http.MethodPatch, body: "{}", want: http.StatusBadRequest},
		{name: "form post", method: http.MethodPut, contentType: "application/x-www-form-urlencoded", body: "a=b", want: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, "/api/v1/tasks", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			ContentType(okHandler).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	t.Parallel()

	readAll := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		for {
			_, err := r.Body.Read(buf)
			if err != nil {
				if errors.Is(err, io.EOF) {
					w.WriteHeader(http.StatusOK)
				} else {
					w.WriteHeader(http.StatusRequestEntityTooLarge)
				}
				return
			}
		}
	})

	t.Run("declared length too large", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		MaxRequestSize(8)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("streamed body too large", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		MaxRequestSize(8)(readAll).ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("within limit", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		MaxRequestSize(0)(readAll).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.RequestID(r.Context())
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(request.RequestIDHeader, "abc-123")
	RequestID(handler).ServeHTTP(w, req)
	if seen != "abc-123" || w.Header().Get(request.RequestIDHeader) != "abc-123" {
		t.Errorf("propagated id = %q header %q", seen, w.Header().Get(request.RequestIDHeader))
	}

	w = httptest.NewRecorder()
	RequestID(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 || w.Header().Get(request.RequestIDHeader) != seen {
		t.Errorf("generated id = %q", seen)
	}
}

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		event  string
	}{
		{status: http.StatusOK},
		{status: http.StatusUnauthorized, event: "security_event"},
		{status: http.StatusForbidden, event: "security_event"},
		{status: http.StatusTooManyRequests, event: "rate_limit_violation"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			core, logs := observer.New(zap.WarnLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			Audit(zap.New(core))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))

			if tt.event == "" {
				if logs.Len() != 0 {
					t.Errorf("unexpected entries: %v", logs.All())
				}
				return
			}
			if logs.FilterMessage(tt.event).Len() != 1 {
				t.Errorf("expected %s entry", tt.event)
			}
		})
	}
}
