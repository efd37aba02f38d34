package models

import (
	"time"

	"github.com/benvon/bakatracker/internal/extract"
)

// ScanKind is the type of media submitted for recognition
type ScanKind string

const (
	ScanKindImage ScanKind = "image"
	ScanKindAudio ScanKind = "audio"
)

// ScanStatus tracks an asynchronous scan through the worker
type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// ScanResult is the outcome of recognising text in an image or audio clip
// and extracting candidate events from it
type ScanResult struct {
	ID         string                   `json:"id"`
	Kind       ScanKind                 `json:"kind"`
	Status     ScanStatus               `json:"status"`
	Text       string                   `json:"text"`
	Candidates []extract.CandidateEvent `json:"candidates"`
	Error      string                   `json:"error,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// Done reports whether the scan reached a terminal status
func (s *ScanResult) Done() bool {
	return s.Status == ScanStatusCompleted || s.Status == ScanStatusFailed
}
