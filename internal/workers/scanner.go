package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/bakatracker/internal/cache"
	"github.com/benvon/bakatracker/internal/logger"
	"github.com/benvon/bakatracker/internal/metrics"
	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/queue"
	"github.com/benvon/bakatracker/internal/services/scan"
	"github.com/benvon/bakatracker/internal/services/upstream"
	"go.uber.org/zap"
)

// ScanProcessor processes asynchronous scan jobs
type ScanProcessor struct {
	scans    *scan.Service
	store    cache.ScanStore
	jobQueue queue.Publisher // For re-enqueueing jobs with delays
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewScanProcessor creates a new scan processor. jobQueue may be nil, in
// which case retryable failures are requeued immediately.
func NewScanProcessor(
	scans *scan.Service,
	store cache.ScanStore,
	jobQueue queue.Publisher,
	m *metrics.Metrics,
	log *zap.Logger,
) *ScanProcessor {
	return &ScanProcessor{
		scans:    scans,
		store:    store,
		jobQueue: jobQueue,
		metrics:  m,
		logger:   logger.OrNop(log),
		now:      time.Now,
	}
}

func kindFor(t queue.JobType) (models.ScanKind, bool) {
	switch t {
	case queue.JobTypeScanImage:
		return models.ScanKindImage, true
	case queue.JobTypeScanAudio:
		return models.ScanKindAudio, true
	}
	return "", false
}

// ProcessJob runs one scan job and settles its message.
func (p *ScanProcessor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	kind, ok := kindFor(job.Type)
	if !ok {
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			p.logger.Warn("scan_job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	result, err := p.loadResult(ctx, job, kind)
	if err != nil {
		return p.requeue(msg, job, err)
	}

	media, err := p.store.GetMedia(ctx, job.ScanID)
	if errors.Is(err, cache.ErrNotFound) {
		return p.fail(ctx, msg, job, result, errors.New("scan content expired before processing"))
	}
	if err != nil {
		return p.requeue(msg, job, err)
	}

	mimeType := job.MIMEType
	if mimeType == "" {
		mimeType = media.MIMEType
	}

	start := p.now()
	// Relative dates resolve against the submission time, not the retry time.
	outcome, err := p.scans.Run(ctx, kind, media.Data, mimeType, job.Provider, job.CreatedAt)
	if err != nil {
		return p.handleJobError(ctx, msg, job, result, err)
	}

	result.Status = models.ScanStatusCompleted
	result.Text = outcome.Text
	result.Candidates = outcome.Candidates
	result.Error = ""
	result.UpdatedAt = p.now()
	if err := p.store.SaveResult(ctx, result); err != nil {
		return p.requeue(msg, job, fmt.Errorf("failed to save scan result: %w", err))
	}
	p.dropMedia(ctx, job.ScanID)

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}

	p.metrics.ObserveScan(string(kind), "async", string(models.ScanStatusCompleted), p.now().Sub(start))
	p.logger.Info("scan_job_completed",
		zap.String("scan_id", job.ScanID),
		zap.String("kind", string(kind)),
		zap.Int("candidates", len(outcome.Candidates)),
		zap.Int("retry_count", job.RetryCount),
	)
	return nil
}

// loadResult returns the stored pending result, creating one when the
// server did not record it.
func (p *ScanProcessor) loadResult(ctx context.Context, job *queue.Job, kind models.ScanKind) (*models.ScanResult, error) {
	result, err := p.store.GetResult(ctx, job.ScanID)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		return nil, fmt.Errorf("failed to load scan result: %w", err)
	}
	return &models.ScanResult{
		ID:        job.ScanID,
		Kind:      kind,
		Status:    models.ScanStatusPending,
		CreatedAt: job.CreatedAt,
		UpdatedAt: p.now(),
	}, nil
}

// handleJobError retries upstream throttling and transient failures with
// backoff and records everything else as a failed scan.
func (p *ScanProcessor) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, result *models.ScanResult, err error) error {
	p.metrics.IncUpstreamError(providerOf(err), errorClass(err))

	if scan.Permanent(err) || !upstream.IsRetryable(err) || !job.CanRetry() {
		return p.fail(ctx, msg, job, result, err)
	}

	if p.jobQueue == nil {
		// No way to delay; requeue and let the broker redeliver.
		return p.requeue(msg, job, err)
	}

	delay := upstream.GetRetryDelay(err, job.RetryCount)
	next := job.Retry(delay)
	if enqueueErr := p.jobQueue.Enqueue(ctx, next); enqueueErr != nil {
		p.logger.Error("scan_job_reenqueue_failed",
			zap.String("scan_id", job.ScanID),
			zap.Error(enqueueErr),
		)
		return p.requeue(msg, job, fmt.Errorf("failed to re-enqueue: %w", enqueueErr))
	}

	if ackErr := msg.Ack(); ackErr != nil {
		p.logger.Warn("scan_job_ack_failed", zap.String("scan_id", job.ScanID), zap.Error(ackErr))
	}

	p.metrics.IncJobRetry()
	p.logger.Warn("scan_job_retry_scheduled",
		zap.String("scan_id", job.ScanID),
		zap.Int("attempt", next.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Duration("delay", delay),
		zap.String("error", logger.SanitizeError(err)),
	)
	return nil
}

// fail records a terminal failure on the result and acks the message.
func (p *ScanProcessor) fail(ctx context.Context, msg queue.MessageInterface, job *queue.Job, result *models.ScanResult, cause error) error {
	result.Status = models.ScanStatusFailed
	result.Error = failureMessage(cause)
	result.UpdatedAt = p.now()
	if err := p.store.SaveResult(ctx, result); err != nil {
		return p.requeue(msg, job, fmt.Errorf("failed to save failed scan: %w", err))
	}
	p.dropMedia(ctx, job.ScanID)

	if ackErr := msg.Ack(); ackErr != nil {
		p.logger.Warn("scan_job_ack_failed", zap.String("scan_id", job.ScanID), zap.Error(ackErr))
	}

	p.metrics.ObserveScan(string(result.Kind), "async", string(models.ScanStatusFailed), 0)
	return fmt.Errorf("scan %s failed after %d retries: %w", job.ScanID, job.RetryCount, cause)
}

// requeue returns the message to the broker for immediate redelivery.
func (p *ScanProcessor) requeue(msg queue.MessageInterface, job *queue.Job, cause error) error {
	if nackErr := msg.Nack(true); nackErr != nil {
		p.logger.Warn("scan_job_nack_failed", zap.String("scan_id", job.ScanID), zap.Error(nackErr))
	}
	return fmt.Errorf("scan %s requeued: %w", job.ScanID, cause)
}

func (p *ScanProcessor) dropMedia(ctx context.Context, scanID string) {
	if err := p.store.DeleteMedia(ctx, scanID); err != nil {
		p.logger.Warn("scan_media_delete_failed", zap.String("scan_id", scanID), zap.Error(err))
	}
}

// failureMessage is the user-facing reason stored on a failed scan.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, scan.ErrInvalidMedia):
		return "the submitted content could not be processed"
	case errors.Is(err, scan.ErrUnavailable):
		return "recognition is not configured for this kind of scan"
	case upstream.IsQuotaError(err):
		return "recognition quota exhausted, try again later"
	case upstream.IsRateLimitError(err):
		return "recognition service is busy, try again later"
	}
	return logger.SanitizeString(err.Error(), 200)
}

func providerOf(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Provider != "" {
		return apiErr.Provider
	}
	return "unknown"
}

func errorClass(err error) string {
	switch {
	case upstream.IsQuotaError(err):
		return "quota"
	case upstream.IsRateLimitError(err):
		return "rate_limit"
	case scan.Permanent(err), !upstream.IsRetryable(err):
		return "permanent"
	}
	return "other"
}
