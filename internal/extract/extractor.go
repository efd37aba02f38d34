package extract

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Extractor finds candidate events in free text. It holds no mutable state
// and is safe for concurrent use.
type Extractor struct {
	now           func() time.Time
	newID         func() string
	maxCandidates int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the source of the reference instant. It is read once per
// Extract call.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMaxCandidates caps the number of candidates returned. Non-positive
// values keep the default.
func WithMaxCandidates(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxCandidates = n
		}
	}
}

// WithIDGenerator overrides candidate id generation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Extractor) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// New creates an Extractor using the system clock.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		now:           time.Now,
		newID:         newEventID,
		maxCandidates: DefaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractEvents runs a default Extractor against ref.
func ExtractEvents(text string, ref time.Time) []CandidateEvent {
	return New().ExtractAt(text, ref)
}

// Extract returns candidates found in text using the configured clock as the
// reference date.
func (e *Extractor) Extract(text string) []CandidateEvent {
	return e.ExtractAt(text, e.now())
}

// ExtractAt returns candidates found in text, resolving relative dates
// against ref. It never fails; text without candidates yields an empty slice.
func (e *Extractor) ExtractAt(text string, ref time.Time) []CandidateEvent {
	refDate := ref.Format(DateLayout)
	events := make([]CandidateEvent, 0)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if ev, ok := e.extractLine(line, ref, refDate); ok {
			events = append(events, ev)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Confidence > events[j].Confidence
	})
	if len(events) > e.maxCandidates {
		events = events[:e.maxCandidates]
	}
	return events
}

func (e *Extractor) extractLine(line string, ref time.Time, refDate string) (CandidateEvent, bool) {
	date := matchDate(line, ref)
	clock, rest := matchTime(date.rest)
	title := sanitizeTitle(rest)

	hasDate := date.found()
	hasTime := clock != ""
	if title == "" {
		return CandidateEvent{}, false
	}
	if !hasDate && !hasTime && !plausibleTitle(title) {
		return CandidateEvent{}, false
	}

	ev := CandidateEvent{
		ID:            e.newID(),
		Title:         title,
		Date:          refDate,
		Time:          clock,
		SourceSnippet: snippet(line, SnippetLength),
		Confidence:    ConfidenceText,
		Selected:      hasDate || hasTime,
	}
	if date.date != "" {
		ev.Date = date.date
	}
	switch {
	case hasDate:
		ev.Confidence = ConfidenceDate
	case hasTime:
		ev.Confidence = ConfidenceTime
	}
	return ev, true
}

// plausibleTitle admits short task-like lines and rejects noise and
// paragraph-sized OCR output.
func plausibleTitle(title string) bool {
	n := utf8.RuneCountInString(title)
	return n > minTitleLength && n < maxTitleLength
}

func newEventID() string {
	return "event_" + uuid.NewString()
}
