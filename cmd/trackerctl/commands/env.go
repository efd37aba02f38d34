// Package commands implements the trackerctl subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/benvon/bakatracker/internal/config"
	"github.com/benvon/bakatracker/internal/extract"
	"github.com/benvon/bakatracker/internal/logger"
	"go.uber.org/zap"
)

// Env carries what commands touching configured services share
type Env struct {
	debug *bool
}

// NewEnv returns an Env reading the --debug flag through debug
func NewEnv(debug *bool) *Env {
	return &Env{debug: debug}
}

// Load reads the configuration and builds a logger. Without --debug the
// logger discards everything so command output stays machine readable.
func (e *Env) Load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if e.debug == nil || !*e.debug {
		return cfg, zap.NewNop(), nil
	}
	log, err := logger.NewDevelopmentLogger(true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// referenceTime is midnight of date in the local zone, or now when date is empty
func referenceTime(date string, now time.Time) (time.Time, error) {
	if date == "" {
		return now, nil
	}
	ref, err := time.ParseInLocation(extract.DateLayout, date, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
	}
	return ref, nil
}
