package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeScanImage runs OCR and event extraction on a stored image
	JobTypeScanImage JobType = "scan_image"
	// JobTypeScanAudio runs transcription and event extraction on a stored audio clip
	JobTypeScanAudio JobType = "scan_audio"
)

// DefaultMaxRetries is the retry budget given to new jobs.
const DefaultMaxRetries = 3

// Job represents a job in the queue. Media bytes are not carried in the
// message; the worker loads them from the scan store by ScanID.
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	ScanID     string     `json:"scan_id"`
	MIMEType   string     `json:"mime_type,omitempty"`
	Provider   string     `json:"provider,omitempty"`   // speech provider override, audio jobs only
	NotBefore  *time.Time `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewJob creates a new scan job
func NewJob(jobType JobType, scanID, mimeType string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		ScanID:     scanID,
		MIMEType:   mimeType,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}

// Valid reports whether the job names a known type and a scan.
func (j *Job) Valid() bool {
	switch j.Type {
	case JobTypeScanImage, JobTypeScanAudio:
		return j.ScanID != ""
	default:
		return false
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// Retry returns a copy of the job scheduled to run after delay, with the
// retry count incremented and a fresh message id.
func (j *Job) Retry(delay time.Duration) *Job {
	next := *j
	next.ID = uuid.New()
	next.IncrementRetry()
	notBefore := time.Now().Add(delay)
	next.NotBefore = &notBefore
	return &next
}
