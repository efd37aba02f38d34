package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/bakatracker/internal/extract"
	"github.com/benvon/bakatracker/internal/services/scan"
	"github.com/gorilla/mux"
)

// MaxExtractTextLength bounds the text accepted by /extract
const MaxExtractTextLength = 100000

// ExtractHandler runs event extraction on submitted text
type ExtractHandler struct {
	scans *scan.Service
	now   func() time.Time
}

// NewExtractHandler creates a new extract handler. now defaults to time.Now.
func NewExtractHandler(scans *scan.Service, now func() time.Time) *ExtractHandler {
	return &ExtractHandler{scans: scans, now: clockOrNow(now)}
}

// RegisterRoutes registers extract routes on the /api/v1 router
func (h *ExtractHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/extract", h.Extract).Methods("POST")
}

// ExtractRequest is the body of POST /extract. Empty text is valid and
// yields no candidates. Date, when set, replaces today as the reference for
// relative dates.
type ExtractRequest struct {
	Text string `json:"text" validate:"max=100000"`
	Date string `json:"date,omitempty" validate:"date_ymd"`
}

// ExtractResponse carries the candidates found in the text
type ExtractResponse struct {
	Candidates []extract.CandidateEvent `json:"candidates"`
}

// Extract handles POST /extract
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ref, err := referenceTime(h.now(), req.Date)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ExtractResponse{Candidates: h.scans.Extract(req.Text, ref)})
}

// referenceTime returns now, or midnight of date in now's location
func referenceTime(now time.Time, date string) (time.Time, error) {
	if date == "" {
		return now, nil
	}
	return time.ParseInLocation(extract.DateLayout, date, now.Location())
}

func clockOrNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
