package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageSheets   = "sheets"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Speech providers
const (
	SpeechGoogle = "google"
	SpeechOpenAI = "openai"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	FrontendURL     string
	EnableHSTS      bool
	ServerDebugMode bool
	WorkerDebugMode bool

	StorageBackend        string
	DatabaseURL           string
	GoogleCredentialsFile string
	SpreadsheetID         string
	SpreadsheetTitle      string

	SpeechProvider string
	OpenAIKey      string
	OpenAIBaseURL  string
	SpeechModel    string

	OwnerEmail     string
	GoogleClientID string
	AuthDisabled   bool

	RedisURL         string
	RateLimit        string
	RabbitMQURL      string
	RabbitMQPrefetch int

	WorkerMetricsPort string

	MaxCandidates int

	OTELEnabled  bool
	OTELEndpoint string
}

// lookupFunc matches os.LookupEnv
type lookupFunc func(key string) (string, bool)

// Load loads configuration from environment variables, falling back to the
// YAML file named by CONFIG_FILE for keys the environment leaves unset
func Load() (*Config, error) {
	lookup := lookupFunc(os.LookupEnv)
	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		fileValues, err := readFile(path)
		if err != nil {
			return nil, err
		}
		lookup = withFallback(lookup, fileValues)
	}
	return load(lookup)
}

func load(lookup lookupFunc) (*Config, error) {
	e := env{lookup: lookup}
	cfg := &Config{
		ServerPort:      e.get("SERVER_PORT", "8080"),
		FrontendURL:     e.get("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:      e.getBool("ENABLE_HSTS", false),
		ServerDebugMode: e.getBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode: e.getBool("WORKER_DEBUG_MODE", false),

		StorageBackend:        strings.ToLower(e.get("STORAGE_BACKEND", StorageSheets)),
		DatabaseURL:           e.get("DATABASE_URL", ""),
		GoogleCredentialsFile: e.get("GOOGLE_CREDENTIALS_FILE", ""),
		SpreadsheetID:         e.get("SPREADSHEET_ID", ""),
		SpreadsheetTitle:      e.get("SPREADSHEET_TITLE", "BakaTracker Data"),

		SpeechProvider: strings.ToLower(e.get("SPEECH_PROVIDER", SpeechGoogle)),
		OpenAIKey:      e.get("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  e.get("OPENAI_BASE_URL", ""),
		SpeechModel:    e.get("SPEECH_MODEL", ""),

		OwnerEmail:     strings.ToLower(e.get("OWNER_EMAIL", "")),
		GoogleClientID: e.get("GOOGLE_CLIENT_ID", ""),
		AuthDisabled:   e.getBool("AUTH_DISABLED", false),

		RedisURL:         e.get("REDIS_URL", ""),
		RateLimit:        e.get("RATE_LIMIT", "120-M"),
		RabbitMQURL:      e.get("RABBITMQ_URL", ""),
		RabbitMQPrefetch: e.getInt("RABBITMQ_PREFETCH", 1),

		WorkerMetricsPort: e.get("WORKER_METRICS_PORT", "9091"),

		MaxCandidates: e.getInt("MAX_CANDIDATES", 10),

		OTELEnabled:  e.getBool("OTEL_ENABLED", false),
		OTELEndpoint: e.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	switch cfg.StorageBackend {
	case StorageSheets, StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q (must be 'sheets', 'postgres', or 'memory')", cfg.StorageBackend)
	}

	switch cfg.SpeechProvider {
	case SpeechGoogle, SpeechOpenAI:
	default:
		return nil, fmt.Errorf("invalid SPEECH_PROVIDER %q (must be 'google' or 'openai')", cfg.SpeechProvider)
	}

	if cfg.MaxCandidates <= 0 {
		return nil, fmt.Errorf("MAX_CANDIDATES must be positive, got %d", cfg.MaxCandidates)
	}

	return cfg, nil
}

// ValidateServer checks the settings only the API server needs
func (c *Config) ValidateServer() error {
	if c.AuthDisabled {
		return nil
	}
	if c.OwnerEmail == "" {
		return fmt.Errorf("OWNER_EMAIL is required unless AUTH_DISABLED=true")
	}
	if c.GoogleClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required unless AUTH_DISABLED=true")
	}
	return nil
}

// ValidateWorker checks the settings the scan worker needs
func (c *Config) ValidateWorker() error {
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for the scan worker")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required for the scan worker")
	}
	return nil
}

// AsyncScansEnabled reports whether queued scans can be submitted
func (c *Config) AsyncScansEnabled() bool {
	return c.RabbitMQURL != "" && c.RedisURL != ""
}

// readFile parses a flat YAML mapping of the same keys as the environment
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

func withFallback(primary lookupFunc, fallback map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok && v != "" {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}

type env struct {
	lookup lookupFunc
}

func (e env) get(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (e env) getBool(key string, defaultValue bool) bool {
	if value, ok := e.lookup(key); ok && value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e env) getInt(key string, defaultValue int) int {
	if value, ok := e.lookup(key); ok && value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
