package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/bakatracker/internal/models"
)

// MemoryStore is a process-local ScanStore. Entries expire lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	results map[string]memoryEntry[models.ScanResult]
	media   map[string]memoryEntry[Media]
}

type memoryEntry[T any] struct {
	value   T
	expires time.Time
}

// NewMemoryStore returns an empty store. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		results: make(map[string]memoryEntry[models.ScanResult]),
		media:   make(map[string]memoryEntry[Media]),
	}
}

func (s *MemoryStore) SaveResult(_ context.Context, result *models.ScanResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *result
	r.Candidates = append(r.Candidates[:0:0], result.Candidates...)
	s.results[result.ID] = memoryEntry[models.ScanResult]{value: r, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) GetResult(_ context.Context, id string) (*models.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.results[id]
	if !ok || !s.now().Before(e.expires) {
		delete(s.results, id)
		return nil, ErrNotFound
	}
	r := e.value
	r.Candidates = append(r.Candidates[:0:0], e.value.Candidates...)
	return &r, nil
}

func (s *MemoryStore) SaveMedia(_ context.Context, id string, media *Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := Media{Data: append([]byte(nil), media.Data...), MIMEType: media.MIMEType}
	s.media[id] = memoryEntry[Media]{value: m, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) GetMedia(_ context.Context, id string) (*Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.media[id]
	if !ok || !s.now().Before(e.expires) {
		delete(s.media, id)
		return nil, ErrNotFound
	}
	m := e.value
	return &m, nil
}

func (s *MemoryStore) DeleteMedia(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.media, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
