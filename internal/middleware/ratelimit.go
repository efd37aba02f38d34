package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/request"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	defaultRatelimitRate = "120-M"
	ratelimitPrefix      = "bakatracker_ratelimit"
)

// NewRateLimitStore returns a Redis limiter store, or an in-process one when
// client is nil.
func NewRateLimitStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          ratelimitPrefix,
			CleanUpInterval: time.Minute,
		}), nil
	}
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: ratelimitPrefix,
	})
}

// NewRateLimitReloader limits requests per client IP using the rate_limit
// setting. The default rate is written to settings when none exists.
func NewRateLimitReloader(settings SettingsStore, store limiter.Store, defaultRate string, log *zap.Logger, interval time.Duration) *Reloader {
	if defaultRate == "" {
		defaultRate = defaultRatelimitRate
	}
	return &Reloader{
		interval: interval,
		build: func(ctx context.Context) func(http.Handler) http.Handler {
			rateStr := loadRate(ctx, settings, defaultRate, log)
			rate, err := limiter.NewRateFromFormatted(rateStr)
			if err != nil {
				log.Error("failed_to_parse_rate_limit_using_default",
					zap.Error(err),
					zap.String("rate_str", rateStr),
					zap.String("default_rate", defaultRate),
				)
				if rate, err = limiter.NewRateFromFormatted(defaultRate); err != nil {
					log.Error("failed_to_parse_default_rate_limit", zap.Error(err))
					return nil
				}
			}
			return RateLimit(store, rate, log)
		},
	}
}

func loadRate(ctx context.Context, settings SettingsStore, defaultRate string, log *zap.Logger) string {
	if settings == nil {
		return defaultRate
	}
	value, err := settings.Get(ctx, models.SettingRateLimit)
	switch {
	case err == nil && value != "":
		return value
	case err == nil || errors.Is(err, storage.ErrNotFound):
		if setErr := settings.Set(ctx, models.SettingRateLimit, defaultRate); setErr != nil {
			log.Error("failed_to_save_default_ratelimit_config",
				zap.Error(setErr),
				zap.String("default_rate", defaultRate),
			)
		}
	default:
		log.Warn("failed_to_load_ratelimit_config_using_default",
			zap.Error(err),
			zap.String("default_rate", defaultRate),
		)
	}
	return defaultRate
}

// RateLimit is a fixed-rate limiter keyed on the client IP.
func RateLimit(store limiter.Store, rate limiter.Rate, log *zap.Logger) func(http.Handler) http.Handler {
	instance := limiter.New(store, rate)
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, "Rate limit exceeded, slow down")
		}),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("rate_limiter_store_error", zap.Error(err))
			respondError(w, r, http.StatusInternalServerError, "Rate limiter unavailable")
		}),
	)
	return mw.Handler
}
