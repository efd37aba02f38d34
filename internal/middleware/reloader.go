package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// SettingsGetter reads one setting; it matches storage.SettingsRepository.
type SettingsGetter interface {
	Get(ctx context.Context, key string) (string, error)
}

// SettingsStore reads and writes settings.
type SettingsStore interface {
	SettingsGetter
	Set(ctx context.Context, key, value string) error
}

// Reloader holds a middleware that is rebuilt from settings on an interval.
// CORS and rate limiting both use it. The middleware is applied per request,
// so one Reloader can sit in front of any number of routes.
type Reloader struct {
	build    func(ctx context.Context) func(http.Handler) http.Handler
	interval time.Duration

	once    sync.Once
	mu      sync.RWMutex
	current func(http.Handler) http.Handler
}

// Middleware returns the reloading middleware, building it the first time.
func (r *Reloader) Middleware() func(http.Handler) http.Handler {
	r.once.Do(func() { r.Reload(context.Background()) })
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			mw := r.current
			r.mu.RUnlock()
			if mw == nil {
				next.ServeHTTP(w, req)
				return
			}
			mw(next).ServeHTTP(w, req)
		})
	}
}

// Start runs the reload loop until ctx is cancelled.
func (r *Reloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reload(ctx)
		}
	}
}

// Reload rebuilds the middleware now. A nil build result keeps the previous one.
func (r *Reloader) Reload(ctx context.Context) {
	mw := r.build(ctx)
	if mw == nil {
		return
	}
	r.mu.Lock()
	r.current = mw
	r.mu.Unlock()
}
