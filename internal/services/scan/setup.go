package scan

import (
	"context"

	"github.com/benvon/bakatracker/internal/config"
	"github.com/benvon/bakatracker/internal/extract"
	"github.com/benvon/bakatracker/internal/google"
	"github.com/benvon/bakatracker/internal/metrics"
	"github.com/benvon/bakatracker/internal/services/ocr"
	"github.com/benvon/bakatracker/internal/services/speech"
	"go.uber.org/zap"
)

// NewFromConfig builds the Service used by the server, worker and CLI.
// Missing Google credentials disable OCR and Google speech instead of
// failing, so text extraction keeps working without them.
func NewFromConfig(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []Option{WithMetrics(m), WithLogger(logger)}

	googleClient, err := google.HTTPClient(ctx, cfg.GoogleCredentialsFile, google.ScopeCloudPlatform)
	if err != nil {
		logger.Warn("google_credentials_unavailable_ocr_disabled", zap.Error(err))
		googleClient = nil
	} else {
		vision, err := ocr.NewVisionClient(ctx, googleClient, logger)
		if err != nil {
			logger.Warn("failed_to_create_vision_client_ocr_disabled", zap.Error(err))
		} else {
			opts = append(opts, WithRecognizer(vision))
		}
	}

	registry := speech.DefaultRegistry(googleClient, logger)
	opts = append(opts, WithSpeech(registry, cfg.SpeechProvider, map[string]string{
		speech.SettingAPIKey:  cfg.OpenAIKey,
		speech.SettingBaseURL: cfg.OpenAIBaseURL,
		speech.SettingModel:   cfg.SpeechModel,
	}))

	extractor := extract.New(extract.WithMaxCandidates(cfg.MaxCandidates))
	return NewService(extractor, opts...)
}
