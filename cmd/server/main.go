package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/bakatracker/internal/cache"
	"github.com/benvon/bakatracker/internal/config"
	"github.com/benvon/bakatracker/internal/handlers"
	"github.com/benvon/bakatracker/internal/logger"
	"github.com/benvon/bakatracker/internal/metrics"
	"github.com/benvon/bakatracker/internal/middleware"
	"github.com/benvon/bakatracker/internal/queue"
	"github.com/benvon/bakatracker/internal/services/oidc"
	"github.com/benvon/bakatracker/internal/services/scan"
	"github.com/benvon/bakatracker/internal/storage/backend"
	"github.com/benvon/bakatracker/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "bakatracker-api"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("speech_provider", cfg.SpeechProvider),
		zap.Bool("auth_disabled", cfg.AuthDisabled),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx := context.Background()

	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else if tp, err := telemetry.InitTracer(ctx, serviceName, version, cfg.OTELEndpoint); err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracingEnabled = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer otelCancel()
				if err := telemetry.Shutdown(otelCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	store, err := backend.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("failed_to_close_storage", zap.Error(err))
		}
	}()

	// Redis backs rate limiting and async scans; both degrade to in-process without it
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	}

	var jobQueue queue.JobQueue
	var scanStore cache.ScanStore
	if cfg.AsyncScansEnabled() {
		jobQueue = connectQueue(cfg.RabbitMQURL, zapLogger)
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		scanStore = cache.NewRedisStore(redisClient, cache.DefaultTTL)
	} else {
		zapLogger.Info("async_scans_disabled", zap.String("reason", "REDIS_URL and RABBITMQ_URL are both required"))
	}

	m := metrics.New()
	scans := scan.NewFromConfig(ctx, cfg, m, zapLogger)

	var authMW mux.MiddlewareFunc
	if cfg.AuthDisabled {
		zapLogger.Warn("authentication_disabled", zap.String("owner_email", logger.SanitizeEmail(cfg.OwnerEmail)))
		authMW = middleware.NoAuth(cfg.OwnerEmail)
	} else {
		verifier := oidc.NewVerifier(oidc.NewJWKSManager(nil), cfg.GoogleClientID, cfg.OwnerEmail)
		authMW = middleware.Auth(verifier, zapLogger)
	}

	rateLimitStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}

	healthChecker := handlers.NewHealthChecker(map[string]handlers.CheckFunc{
		"store": store.Ping,
		"redis": pingRedis(redisClient),
		"queue": queueCheck(jobQueue),
	})

	r := mux.NewRouter()

	// Middleware registered first runs outermost
	if tracingEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(store.Settings(), cfg.FrontendURL, zapLogger, time.Minute)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.ContentType)
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Metrics(m))

	// Rate limiting applies to the API only, never to health checks
	rateLimitReloader := middleware.NewRateLimitReloader(store.Settings(), rateLimitStore, cfg.RateLimit, zapLogger, time.Minute)

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.Version(version)).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")
	handlers.NewOpenAPIHandler().RegisterRoutes(r)

	api := &handlers.API{
		Store:     store,
		Scans:     scans,
		ScanStore: scanStore,
		Metrics:   m,
		Logger:    zapLogger,
	}
	if jobQueue != nil {
		api.Queue = jobQueue
	}
	api.Register(r, authMW, rateLimitReloader.Middleware())

	// Preflight requests are answered by the CORS middleware before routing
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      middleware.ScanRequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	reloadCtx, reloadCancel := context.WithCancel(ctx)
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue retries with exponential backoff to ride out broker startup
func connectQueue(url string, zapLogger *zap.Logger) queue.JobQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
		}
		lastErr = err

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}

func pingRedis(client *redis.Client) handlers.CheckFunc {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

func queueCheck(q queue.JobQueue) handlers.CheckFunc {
	if q == nil {
		return nil
	}
	return q.HealthCheck
}
