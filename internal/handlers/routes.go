package handlers

import (
	"time"

	"github.com/benvon/bakatracker/internal/cache"
	"github.com/benvon/bakatracker/internal/metrics"
	"github.com/benvon/bakatracker/internal/middleware"
	"github.com/benvon/bakatracker/internal/queue"
	"github.com/benvon/bakatracker/internal/services/scan"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// API bundles what the /api/v1 routes need
type API struct {
	Store storage.Store
	Scans *scan.Service
	// ScanStore and Queue back /scans; the routes are not mounted when either is nil
	ScanStore cache.ScanStore
	Queue     queue.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Register mounts the API under /api/v1. protect runs before every API
// route, typically authentication then rate limiting.
func (a *API) Register(r *mux.Router, protect ...mux.MiddlewareFunc) *mux.Router {
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(protect...)

	standard := func(prefix string) *mux.Router {
		sub := apiRouter.PathPrefix(prefix).Subrouter()
		sub.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
		sub.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
		return sub
	}
	media := func(prefix string) *mux.Router {
		sub := apiRouter.PathPrefix(prefix).Subrouter()
		sub.Use(middleware.MaxRequestSize(middleware.MaxScanRequestSize))
		sub.Use(middleware.Timeout(middleware.ScanRequestTimeout))
		return sub
	}

	NewAuthHandler().RegisterRoutes(standard("/auth"))
	NewTaskHandler(a.Store.Tasks(), a.Logger, a.Now).RegisterRoutes(standard("/tasks"))
	NewSettingsHandler(a.Store.Settings(), a.Logger).RegisterRoutes(standard("/settings"))
	NewVoiceHandler(a.Store.Tasks(), a.Store.Habits(), a.Logger, a.Now).RegisterRoutes(standard("/voice"))

	// Habits and their logs live under two prefixes
	habits := apiRouter.NewRoute().Subrouter()
	habits.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	habits.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	NewHabitHandler(a.Store.Habits(), a.Store.HabitLogs(), a.Logger, a.Now).RegisterRoutes(habits)

	if a.Scans != nil {
		NewExtractHandler(a.Scans, a.Now).RegisterRoutes(standard(""))
		NewScanHandler(a.Scans, a.Metrics, a.Logger, a.Now).RegisterRoutes(media("/scan"))
	}
	if a.ScanStore != nil && a.Queue != nil {
		NewScanJobHandler(a.ScanStore, a.Queue, a.Logger, a.Now).RegisterRoutes(media("/scans"))
	}

	return apiRouter
}
