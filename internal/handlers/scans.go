package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/bakatracker/internal/cache"
	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/queue"
	"github.com/benvon/bakatracker/internal/services/ocr"
	"github.com/benvon/bakatracker/internal/services/speech"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ScanJobHandler accepts scans for the worker and reports their results
type ScanJobHandler struct {
	store  cache.ScanStore
	queue  queue.Publisher
	logger *zap.Logger
	now    func() time.Time
}

// NewScanJobHandler creates a new asynchronous scan handler
func NewScanJobHandler(store cache.ScanStore, jobQueue queue.Publisher, logger *zap.Logger, now func() time.Time) *ScanJobHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanJobHandler{store: store, queue: jobQueue, logger: logger, now: clockOrNow(now)}
}

// RegisterRoutes registers scan job routes on the given router
// The router should already have the /api/v1/scans prefix
func (h *ScanJobHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.SubmitScan).Methods("POST")
	r.HandleFunc("/{id}", h.GetScan).Methods("GET")
}

// SubmitScanRequest is the body of POST /scans
type SubmitScanRequest struct {
	Kind          models.ScanKind `json:"kind" validate:"required,scan_kind"`
	ContentBase64 string          `json:"content_base64" validate:"required"`
	MIMEType      string          `json:"mime_type" validate:"max=100"`
	Provider      string          `json:"provider,omitempty" validate:"max=50"`
}

// SubmitScanResponse acknowledges a queued scan
type SubmitScanResponse struct {
	ID     string            `json:"id"`
	Status models.ScanStatus `json:"status"`
}

// SubmitScan handles POST /scans
func (h *ScanJobHandler) SubmitScan(w http.ResponseWriter, r *http.Request) {
	var req SubmitScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	jobType, limit := queue.JobTypeScanImage, ocr.MaxImageBytes
	if req.Kind == models.ScanKindAudio {
		if req.MIMEType == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "mime_type is required for audio scans")
			return
		}
		jobType, limit = queue.JobTypeScanAudio, speech.MaxAudioBytes
	}

	data, err := decodeBase64(req.ContentBase64)
	if err != nil || len(data) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "content_base64 is not valid base64")
		return
	}
	if len(data) > limit {
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
			fmt.Sprintf("Content exceeds maximum size of %d bytes", limit))
		return
	}

	ctx := r.Context()
	now := h.now()
	result := &models.ScanResult{
		ID:        models.NewScanID(),
		Kind:      req.Kind,
		Status:    models.ScanStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.SaveMedia(ctx, result.ID, &cache.Media{Data: data, MIMEType: req.MIMEType}); err != nil {
		h.logger.Error("failed_to_store_scan_media", zap.String("scan_id", result.ID), zap.Error(err))
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to store scan content")
		return
	}
	if err := h.store.SaveResult(ctx, result); err != nil {
		h.logger.Error("failed_to_store_scan_result", zap.String("scan_id", result.ID), zap.Error(err))
		h.dropMedia(r, result.ID)
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to store scan")
		return
	}

	job := queue.NewJob(jobType, result.ID, req.MIMEType)
	job.CreatedAt = now
	job.Provider = req.Provider
	if err := h.queue.Enqueue(ctx, job); err != nil {
		h.logger.Error("failed_to_enqueue_scan_job", zap.String("scan_id", result.ID), zap.Error(err))
		h.dropMedia(r, result.ID)
		result.Status = models.ScanStatusFailed
		result.Error = "scan could not be queued"
		result.UpdatedAt = h.now()
		if saveErr := h.store.SaveResult(ctx, result); saveErr != nil {
			h.logger.Warn("failed_to_mark_scan_failed", zap.String("scan_id", result.ID), zap.Error(saveErr))
		}
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to queue scan")
		return
	}

	h.logger.Info("scan_job_enqueued",
		zap.String("scan_id", result.ID),
		zap.String("kind", string(req.Kind)),
		zap.Int("bytes", len(data)),
	)
	w.Header().Set("Location", "/api/v1/scans/"+result.ID)
	respondJSON(w, http.StatusAccepted, SubmitScanResponse{ID: result.ID, Status: result.Status})
}

// GetScan handles GET /scans/{id}
func (h *ScanJobHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.store.GetResult(r.Context(), id)
	if errors.Is(err, cache.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Scan not found")
		return
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve scan")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ScanJobHandler) dropMedia(r *http.Request, id string) {
	if err := h.store.DeleteMedia(r.Context(), id); err != nil {
		h.logger.Warn("failed_to_delete_scan_media", zap.String("scan_id", id), zap.Error(err))
	}
}
