// Package speech turns recorded audio into a transcript. Providers are
// registered by name so the deployment picks one with SPEECH_PROVIDER.
package speech

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrEmptyAudio is returned when no audio bytes are supplied
var ErrEmptyAudio = errors.New("audio is empty")

// MaxAudioBytes bounds synchronous recognition requests
const MaxAudioBytes = 10 << 20

// Audio is a recorded clip and its container type, e.g. "audio/webm"
type Audio struct {
	Data     []byte
	MIMEType string
}

// Transcriber converts audio into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
	Name() string
}

// ProviderFactory creates a transcriber from provider settings
type ProviderFactory func(ctx context.Context, settings map[string]string) (Transcriber, error)

// ProviderRegistry stores available speech providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[strings.ToLower(name)] = factory
}

// GetProvider creates the named provider
func (r *ProviderRegistry) GetProvider(ctx context.Context, name string, settings map[string]string) (Transcriber, error) {
	factory, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(ctx, settings)
}

// Names lists registered providers in sorted order
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ErrProviderNotFound is returned when a provider is not registered
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "speech provider not found: " + e.Name
}

func validate(audio Audio) error {
	if len(audio.Data) == 0 {
		return ErrEmptyAudio
	}
	if len(audio.Data) > MaxAudioBytes {
		return errors.New("audio clip too large for synchronous recognition")
	}
	return nil
}
