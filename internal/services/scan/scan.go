// Package scan runs recognition (OCR or speech) followed by event extraction.
// It is shared by the synchronous HTTP endpoints and the queue worker.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benvon/bakatracker/internal/extract"
	"github.com/benvon/bakatracker/internal/logger"
	"github.com/benvon/bakatracker/internal/metrics"
	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/services/ocr"
	"github.com/benvon/bakatracker/internal/services/speech"
	"github.com/benvon/bakatracker/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrInvalidMedia marks input that no retry can fix: empty or oversized
// content, or an unknown speech provider.
var ErrInvalidMedia = errors.New("invalid media")

// ErrUnavailable is returned when the recognizer for a kind is not configured.
var ErrUnavailable = errors.New("recognizer not configured")

// Outcome is recognised text plus the candidates found in it.
type Outcome struct {
	Text       string                   `json:"text"`
	Candidates []extract.CandidateEvent `json:"candidates"`
}

// Service wires the recognizers to the extractor.
type Service struct {
	recognizer      ocr.Recognizer
	registry        *speech.ProviderRegistry
	defaultProvider string
	settings        map[string]string
	extractor       *extract.Extractor
	metrics         *metrics.Metrics
	logger          *zap.Logger

	mu           sync.Mutex
	transcribers map[string]speech.Transcriber
}

// Option configures a Service.
type Option func(*Service)

// WithRecognizer sets the OCR backend.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(s *Service) { s.recognizer = r }
}

// WithSpeech sets the speech registry, the provider used when a request
// names none, and the settings passed to provider factories.
func WithSpeech(registry *speech.ProviderRegistry, defaultProvider string, settings map[string]string) Option {
	return func(s *Service) {
		s.registry = registry
		s.defaultProvider = defaultProvider
		s.settings = settings
	}
}

// WithMetrics records extraction and scan metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = logger.OrNop(l) }
}

// NewService creates a Service. extractor must not be nil.
func NewService(extractor *extract.Extractor, opts ...Option) *Service {
	s := &Service{
		extractor:    extractor,
		logger:       zap.NewNop(),
		transcribers: make(map[string]speech.Transcriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract runs the extractor on text against ref and records metrics.
func (s *Service) Extract(text string, ref time.Time) []extract.CandidateEvent {
	start := time.Now()
	candidates := s.extractor.ExtractAt(text, ref)
	s.metrics.ObserveExtraction(len(candidates), time.Since(start))
	return candidates
}

// Image recognises text in an image and extracts candidates from it.
func (s *Service) Image(ctx context.Context, data []byte, ref time.Time) (out *Outcome, err error) {
	ctx, span := telemetry.StartSpan(ctx, "scan.image", attribute.Int("scan.bytes", len(data)))
	defer func() { telemetry.EndSpan(span, err) }()

	if s.recognizer == nil {
		return nil, fmt.Errorf("image scan: %w", ErrUnavailable)
	}
	if len(data) == 0 || len(data) > ocr.MaxImageBytes {
		return nil, fmt.Errorf("image scan: %w: %d bytes", ErrInvalidMedia, len(data))
	}

	text, err := s.recognizer.RecognizeText(ctx, data)
	if err != nil {
		if errors.Is(err, ocr.ErrEmptyImage) {
			return nil, fmt.Errorf("image scan: %w", ErrInvalidMedia)
		}
		return nil, fmt.Errorf("image scan: %w", err)
	}

	s.logger.Debug("image_text_recognized",
		zap.Int("text_length", len(text)),
		zap.String("text", logger.SanitizeRecognizedText(text)),
	)
	return &Outcome{Text: text, Candidates: s.Extract(text, ref)}, nil
}

// Audio transcribes a clip with provider (the default when empty) and
// extracts candidates from the transcript.
func (s *Service) Audio(ctx context.Context, audio speech.Audio, provider string, ref time.Time) (out *Outcome, err error) {
	ctx, span := telemetry.StartSpan(ctx, "scan.audio",
		attribute.Int("scan.bytes", len(audio.Data)),
		attribute.String("scan.mime_type", audio.MIMEType),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if len(audio.Data) == 0 || len(audio.Data) > speech.MaxAudioBytes {
		return nil, fmt.Errorf("audio scan: %w: %d bytes", ErrInvalidMedia, len(audio.Data))
	}

	t, err := s.transcriber(ctx, provider)
	if err != nil {
		return nil, err
	}

	text, err := t.Transcribe(ctx, audio)
	if err != nil {
		if errors.Is(err, speech.ErrEmptyAudio) {
			return nil, fmt.Errorf("audio scan: %w", ErrInvalidMedia)
		}
		return nil, fmt.Errorf("audio scan (%s): %w", t.Name(), err)
	}

	s.logger.Debug("audio_transcribed",
		zap.String("provider", t.Name()),
		zap.Int("text_length", len(text)),
		zap.String("text", logger.SanitizeRecognizedText(text)),
	)
	return &Outcome{Text: text, Candidates: s.Extract(text, ref)}, nil
}

// Run dispatches on kind. It is what the queue worker calls.
func (s *Service) Run(ctx context.Context, kind models.ScanKind, data []byte, mimeType, provider string, ref time.Time) (*Outcome, error) {
	switch kind {
	case models.ScanKindImage:
		return s.Image(ctx, data, ref)
	case models.ScanKindAudio:
		return s.Audio(ctx, speech.Audio{Data: data, MIMEType: mimeType}, provider, ref)
	default:
		return nil, fmt.Errorf("%w: unknown scan kind %q", ErrInvalidMedia, kind)
	}
}

// transcriber resolves and caches a provider by name.
func (s *Service) transcriber(ctx context.Context, name string) (speech.Transcriber, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("audio scan: %w", ErrUnavailable)
	}
	if name == "" {
		name = s.defaultProvider
	}
	name = strings.ToLower(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transcribers[name]; ok {
		return t, nil
	}

	t, err := s.registry.GetProvider(ctx, name, s.settings)
	if err != nil {
		var notFound *speech.ErrProviderNotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("audio scan: %w: %v", ErrInvalidMedia, err)
		}
		return nil, fmt.Errorf("audio scan: %w: %v", ErrUnavailable, err)
	}
	s.transcribers[name] = t
	return t, nil
}

// Permanent reports whether err can never succeed on retry.
func Permanent(err error) bool {
	return errors.Is(err, ErrInvalidMedia) || errors.Is(err, ErrUnavailable)
}
