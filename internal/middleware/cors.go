package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const defaultOrigin = "http://localhost:3000"

// ParseOrigins splits a comma separated origin list, dropping blanks and duplicates.
func ParseOrigins(s string) []string {
	var origins []string
	seen := make(map[string]bool)
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	return origins
}

// CORSOptions is the rs/cors configuration for the given origins.
func CORSOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{defaultOrigin}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	}
}

// NewCORSReloader builds CORS from the cors_allowed_origins setting, falling
// back to frontendURL (FRONTEND_URL) when the setting is absent.
func NewCORSReloader(settings SettingsGetter, frontendURL string, log *zap.Logger, interval time.Duration) *Reloader {
	fallback := ParseOrigins(frontendURL)
	return &Reloader{
		interval: interval,
		build: func(ctx context.Context) func(http.Handler) http.Handler {
			origins := fallback
			if settings != nil {
				value, err := settings.Get(ctx, models.SettingCORSOrigins)
				switch {
				case err == nil:
					if parsed := ParseOrigins(value); len(parsed) > 0 {
						origins = parsed
					}
				case !errors.Is(err, storage.ErrNotFound):
					log.Warn("failed_to_load_cors_origins_using_fallback", zap.Error(err))
				}
			}
			return cors.New(CORSOptions(origins)).Handler
		},
	}
}
