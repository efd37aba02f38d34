package speech

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Settings keys understood by the default providers
const (
	SettingAPIKey  = "api_key"
	SettingBaseURL = "base_url"
	SettingModel   = "model"
)

// DefaultRegistry returns a registry with the google and openai providers.
// googleClient is the authenticated client used by the google provider.
func DefaultRegistry(googleClient *http.Client, logger *zap.Logger) *ProviderRegistry {
	r := NewProviderRegistry()
	r.Register("google", func(ctx context.Context, _ map[string]string) (Transcriber, error) {
		if googleClient == nil {
			return nil, errors.New("google speech provider requires Google credentials")
		}
		return NewGoogleProvider(ctx, googleClient, logger)
	})
	r.Register("openai", func(_ context.Context, s map[string]string) (Transcriber, error) {
		if s[SettingAPIKey] == "" {
			return nil, errors.New("openai speech provider requires OPENAI_API_KEY")
		}
		return NewOpenAIProvider(s[SettingAPIKey], s[SettingBaseURL], s[SettingModel], logger), nil
	})
	return r
}
