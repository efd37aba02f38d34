package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
	"go.uber.org/zap"
)

type fakeSettings struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

func preflight(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	got := ParseOrigins(" https://a.example/ ,https://b.example,,https://a.example")
	want := []string{"https://a.example", "https://b.example"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestCORSReloader(t *testing.T) {
	t.Parallel()

	settings := &fakeSettings{}
	r := NewCORSReloader(settings, "http://localhost:3000", zap.NewNop(), 0)
	h := r.Middleware()(okHandler)

	if got := preflight(h, "http://localhost:3000").Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("fallback origin not allowed, got %q", got)
	}
	if got := preflight(h, "https://tracker.example").Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow for unknown origin: %q", got)
	}

	_ = settings.Set(context.Background(), models.SettingCORSOrigins, "https://tracker.example")
	r.Reload(context.Background())

	if got := preflight(h, "https://tracker.example").Header().Get("Access-Control-Allow-Origin"); got != "https://tracker.example" {
		t.Errorf("reloaded origin not allowed, got %q", got)
	}
	if got := preflight(h, "http://localhost:3000").Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("setting should replace the fallback, got %q", got)
	}
}

func TestCORSReloader_SettingsError(t *testing.T) {
	t.Parallel()

	r := NewCORSReloader(&fakeSettings{err: errors.New("sheets down")}, "https://app.example", zap.NewNop(), 0)
	h := r.Middleware()(okHandler)

	if got := preflight(h, "https://app.example").Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("fallback not used on error, got %q", got)
	}
}

func TestRateLimitReloader(t *testing.T) {
	t.Parallel()

	store, err := NewRateLimitStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	settings := &fakeSettings{}
	r := NewRateLimitReloader(settings, store, "2-M", zap.NewNop(), 0)
	h := r.Middleware()(okHandler)

	if v, _ := settings.Get(context.Background(), models.SettingRateLimit); v != "2-M" {
		t.Errorf("default rate not seeded, got %q", v)
	}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second client status = %d", w.Code)
	}
}

func TestRateLimitReloader_BadSettingFallsBack(t *testing.T) {
	t.Parallel()

	store, _ := NewRateLimitStore(nil)
	settings := &fakeSettings{values: map[string]string{models.SettingRateLimit: "lots"}}
	r := NewRateLimitReloader(settings, store, "1-H", zap.NewNop(), 0)
	h := r.Middleware()(okHandler)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.3:1"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("request %d status = %d, want %d", i, w.Code, want)
		}
	}
}

func TestReloader_Start(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	builds := 0
	r := &Reloader{
		interval: 5 * time.Millisecond,
		build: func(ctx context.Context) func(http.Handler) http.Handler {
			mu.Lock()
			builds++
			mu.Unlock()
			return func(next http.Handler) http.Handler { return next }
		},
	}
	r.Middleware()(okHandler)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	r.Start(ctx)

	mu.Lock()
	defer mu.Unlock()
	if builds < 2 {
		t.Errorf("builds = %d, want initial build plus reloads", builds)
	}
}


func TestReloader_SharedAcrossRoutes(t *testing.T) {
	t.Parallel()

	r := &Reloader{
		build: func(ctx context.Context) func(http.Handler) http.Handler {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					w.Header().Set("X-Reloaded", "yes")
					next.ServeHTTP(w, req)
				})
			}
		},
	}
	mw := r.Middleware()

	routes := map[string]http.Handler{}
	for _, name := range []string{"tasks", "habits"} {
		name := name
		routes[name] = mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(name))
		}))
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for name, h := range routes {
			wg.Add(1)
			go func(name string, h http.Handler) {
				defer wg.Done()
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+name, nil))
				if w.Body.String() != name || w.Header().Get("X-Reloaded") != "yes" {
					t.Errorf("route %s served %q", name, w.Body.String())
				}
			}(name, h)
		}
	}
	wg.Wait()
}
