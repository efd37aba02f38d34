package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/request"
	"github.com/benvon/bakatracker/internal/services/oidc"
	"go.uber.org/zap"
)

type fakeVerifier struct {
	claims *models.JWTClaims
	err    error
	got    string
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*models.JWTClaims, error) {
	f.got = token
	return f.claims, f.err
}

func TestAuth(t *testing.T) {
	t.Parallel()

	owner := &models.JWTClaims{Sub: "1234", Email: "owner@example.com", EmailVerified: true, Name: "Owner"}

	tests := []struct {
		name       string
		header     string
		verifier   *fakeVerifier
		wantStatus int
		wantToken  string
	}{
		{name: "missing header", verifier: &fakeVerifier{claims: owner}, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", verifier: &fakeVerifier{claims: owner}, wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer  ", verifier: &fakeVerifier{claims: owner}, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", verifier: &fakeVerifier{err: errors.New("exp not satisfied")}, wantStatus: http.StatusUnauthorized, wantToken: "bad"},
		{name: "someone else", header: "Bearer other", verifier: &fakeVerifier{err: fmt.Errorf("verify: %w", oidc.ErrNotOwner)}, wantStatus: http.StatusForbidden, wantToken: "other"},
		{name: "owner", header: "Bearer good", verifier: &fakeVerifier{claims: owner}, wantStatus: http.StatusOK, wantToken: "good"},
		{name: "lowercase scheme", header: "bearer good", verifier: &fakeVerifier{claims: owner}, wantStatus: http.StatusOK, wantToken: "good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen *models.User
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = request.UserFromContext(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			Auth(tt.verifier, zap.NewNop())(handler).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.verifier.got != tt.wantToken {
				t.Errorf("verified token = %q, want %q", tt.verifier.got, tt.wantToken)
			}
			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.Email != "owner@example.com" || seen.Subject != "1234" {
					t.Errorf("user in context = %+v", seen)
				}
			}
		})
	}
}

func TestNoAuth(t *testing.T) {
	t.Parallel()

	var seen *models.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.UserFromContext(r)
	})

	NoAuth("me@example.com")(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == nil || seen.Email != "me@example.com" {
		t.Errorf("user = %+v", seen)
	}
}
