package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	logpkg "github.com/benvon/bakatracker/internal/logger"
	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/request"
	"github.com/benvon/bakatracker/internal/services/oidc"
	"go.uber.org/zap"
)

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.JWTClaims, error)
}

// Auth creates authentication middleware that only admits the tracker owner
func Auth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logpkg.OrNop(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondError(w, r, http.StatusUnauthorized, "Missing or malformed Authorization header")
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn("token_verification_failed",
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				if errors.Is(err, oidc.ErrNotOwner) || errors.Is(err, oidc.ErrEmailNotVerified) {
					respondError(w, r, http.StatusForbidden, "This tracker belongs to another account")
					return
				}
				respondError(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user := &models.User{
				Subject:       claims.Sub,
				Email:         claims.Email,
				Name:          claims.Name,
				EmailVerified: claims.EmailVerified,
			}
			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}

// NoAuth attaches a fixed owner to every request. Used when AUTH_DISABLED is set.
func NoAuth(ownerEmail string) func(http.Handler) http.Handler {
	user := &models.User{Subject: "local", Email: ownerEmail, Name: "Local owner", EmailVerified: true}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
