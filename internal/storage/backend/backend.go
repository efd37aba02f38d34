// Package backend opens the storage backend named in the configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/benvon/bakatracker/internal/config"
	"github.com/benvon/bakatracker/internal/database"
	"github.com/benvon/bakatracker/internal/google"
	"github.com/benvon/bakatracker/internal/sheets"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/benvon/bakatracker/internal/storage/memory"
	"go.uber.org/zap"
)

// Open returns the configured store. The sheets backend creates a new
// spreadsheet when no SPREADSHEET_ID is configured.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("storage_opened", zap.String("backend", config.StoragePostgres))
		return database.NewStore(db), nil

	case config.StorageMemory:
		logger.Warn("storage_opened", zap.String("backend", config.StorageMemory))
		return memory.New(), nil

	case config.StorageSheets:
		session, err := OpenSheets(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.SpreadsheetID == "" {
			logger.Warn("spreadsheet_created_set_SPREADSHEET_ID",
				zap.String("spreadsheet_id", session.SpreadsheetID()),
			)
		}
		logger.Info("storage_opened",
			zap.String("backend", config.StorageSheets),
			zap.String("spreadsheet_id", session.SpreadsheetID()),
		)
		return sheets.NewStore(session), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// OpenSheets opens (or creates) the configured spreadsheet
func OpenSheets(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sheets.Session, error) {
	httpClient, err := google.HTTPClient(ctx, cfg.GoogleCredentialsFile, google.ScopeSpreadsheets)
	if err != nil {
		return nil, err
	}
	api, err := sheets.NewClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	return sheets.OpenOrCreate(ctx, api, cfg.SpreadsheetID, cfg.SpreadsheetTitle, logger)
}
