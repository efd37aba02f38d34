package speech

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/bakatracker/internal/services/upstream"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the transcription model used when none is configured
	DefaultOpenAIModel = openai.AudioModelWhisper1
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for transcription calls
	DefaultTimeout = 60 * time.Second
)

// OpenAIProvider implements Transcriber with the OpenAI transcription API
type OpenAIProvider struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

var _ Transcriber = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI transcription provider
func NewOpenAIProvider(apiKey, baseURL, model string, logger *zap.Logger) *OpenAIProvider {
	if model == "" {
		model = string(DefaultOpenAIModel)
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{client: client, model: model, logger: logger}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Transcribe uploads the clip and returns the recognised text
func (p *OpenAIProvider) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if err := validate(audio); err != nil {
		return "", err
	}

	mimeType := audio.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(audio.Data), "clip"+extensionFor(mimeType), mimeType),
		Model:    openai.AudioModel(p.model),
		Language: openai.String("en"),
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", upstream.FromOpenAI(err))
	}

	transcript := strings.TrimSpace(resp.Text)
	p.logger.Debug("speech_recognized",
		zap.String("model", p.model),
		zap.Int("audio_bytes", len(audio.Data)),
		zap.Int("transcript_length", len(transcript)),
	)
	return transcript, nil
}

// extensionFor picks a file name extension the transcription API accepts
func extensionFor(mimeType string) string {
	base, _, _ := strings.Cut(strings.ToLower(mimeType), ";")
	switch strings.TrimSpace(base) {
	case "audio/webm":
		return ".webm"
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	default:
		return ".wav"
	}
}
