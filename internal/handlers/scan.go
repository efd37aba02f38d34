package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/bakatracker/internal/metrics"
	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/services/scan"
	"github.com/benvon/bakatracker/internal/services/speech"
	"github.com/benvon/bakatracker/internal/services/upstream"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ScanHandler runs recognition and extraction within the request
type ScanHandler struct {
	scans   *scan.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewScanHandler creates a new synchronous scan handler
func NewScanHandler(scans *scan.Service, m *metrics.Metrics, logger *zap.Logger, now func() time.Time) *ScanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanHandler{scans: scans, metrics: m, logger: logger, now: clockOrNow(now)}
}

// RegisterRoutes registers scan routes on the given router
// The router should already have the /api/v1/scan prefix
func (h *ScanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/image", h.ScanImage).Methods("POST")
	r.HandleFunc("/audio", h.ScanAudio).Methods("POST")
}

// ImageScanRequest is the body of POST /scan/image
type ImageScanRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

// AudioScanRequest is the body of POST /scan/audio
type AudioScanRequest struct {
	AudioBase64 string `json:"audio_base64" validate:"required"`
	MIMEType    string `json:"mime_type" validate:"required,max=100"`
	Provider    string `json:"provider,omitempty" validate:"max=50"`
}

// ScanImage handles POST /scan/image
func (h *ScanHandler) ScanImage(w http.ResponseWriter, r *http.Request) {
	var req ImageScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	data, err := decodeBase64(req.ImageBase64)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "image_base64 is not valid base64")
		return
	}

	start := time.Now()
	outcome, err := h.scans.Image(r.Context(), data, h.now())
	h.finish(w, models.ScanKindImage, start, outcome, err)
}

// ScanAudio handles POST /scan/audio
func (h *ScanHandler) ScanAudio(w http.ResponseWriter, r *http.Request) {
	var req AudioScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	data, err := decodeBase64(req.AudioBase64)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "audio_base64 is not valid base64")
		return
	}

	start := time.Now()
	audio := speech.Audio{Data: data, MIMEType: req.MIMEType}
	outcome, err := h.scans.Audio(r.Context(), audio, req.Provider, h.now())
	h.finish(w, models.ScanKindAudio, start, outcome, err)
}

func (h *ScanHandler) finish(w http.ResponseWriter, kind models.ScanKind, start time.Time, outcome *scan.Outcome, err error) {
	if err != nil {
		h.metrics.ObserveScan(string(kind), "sync", string(models.ScanStatusFailed), time.Since(start))
		h.logger.Warn("scan_failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		respondScanError(w, err)
		return
	}

	h.metrics.ObserveScan(string(kind), "sync", string(models.ScanStatusCompleted), time.Since(start))
	respondJSON(w, http.StatusOK, outcome)
}

// respondScanError maps recognition failures to a response
func respondScanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scan.ErrInvalidMedia):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "The submitted media could not be recognised")
	case errors.Is(err, scan.ErrUnavailable):
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Recognition is not configured")
	case upstream.IsQuotaError(err), upstream.IsRateLimitError(err):
		respondJSONError(w, http.StatusTooManyRequests, "Too Many Requests", "Recognition provider is throttling requests, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		respondJSONError(w, http.StatusGatewayTimeout, "Gateway Timeout", "Recognition timed out")
	default:
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Recognition failed")
	}
}

// decodeBase64 accepts raw standard base64 or a data URL
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return data, nil
}
