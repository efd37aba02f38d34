package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/benvon/bakatracker/internal/services/upstream"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"
)

// DefaultLanguage is the recognition language for Cloud Speech
const DefaultLanguage = "en-US"

// GoogleProvider implements Transcriber with Cloud Speech-to-Text
type GoogleProvider struct {
	svc      *speechapi.Service
	language string
	logger   *zap.Logger
}

var _ Transcriber = (*GoogleProvider)(nil)

// NewGoogleProvider creates a Cloud Speech client from an authenticated HTTP client
func NewGoogleProvider(ctx context.Context, httpClient *http.Client, logger *zap.Logger, opts ...option.ClientOption) (*GoogleProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := speechapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Speech service: %w", err)
	}
	return &GoogleProvider{svc: svc, language: DefaultLanguage, logger: logger}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

// Transcribe joins the top alternative of every result with a space
func (p *GoogleProvider) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if err := validate(audio); err != nil {
		return "", err
	}

	req := &speechapi.RecognizeRequest{
		Config: &speechapi.RecognitionConfig{
			LanguageCode:               p.language,
			Encoding:                   encodingFor(audio.MIMEType),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechapi.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio.Data),
		},
	}

	resp, err := p.svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", upstream.FromGoogle("speech", err))
	}

	parts := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(result.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	transcript := strings.Join(parts, " ")

	p.logger.Debug("speech_recognized",
		zap.Int("audio_bytes", len(audio.Data)),
		zap.Int("results", len(resp.Results)),
		zap.Int("transcript_length", len(transcript)),
	)
	return transcript, nil
}

// encodingFor maps a container type to a Cloud Speech encoding. WAV and
// FLAC carry their own header so the service can infer them.
func encodingFor(mimeType string) string {
	base, _, _ := strings.Cut(strings.ToLower(mimeType), ";")
	switch strings.TrimSpace(base) {
	case "audio/webm":
		return "WEBM_OPUS"
	case "audio/ogg", "audio/opus":
		return "OGG_OPUS"
	case "audio/flac", "audio/x-flac":
		return "FLAC"
	case "audio/amr":
		return "AMR"
	case "audio/mpeg", "audio/mp3":
		return "MP3"
	default:
		return "ENCODING_UNSPECIFIED"
	}
}
