package handlers

import (
	"net/http"
	"regexp"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

var settingKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,100}$`)

// SettingsHandler handles key/value settings
type SettingsHandler struct {
	settings storage.SettingsRepository
	logger   *zap.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings storage.SettingsRepository, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{settings: settings, logger: logger}
}

// RegisterRoutes registers settings routes on the given router
// The router should already have the /settings prefix
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListSettings).Methods("GET")
	r.HandleFunc("/{key}", h.GetSetting).Methods("GET")
	r.HandleFunc("/{key}", h.PutSetting).Methods("PUT")
}

// PutSettingRequest represents a setting update
type PutSettingRequest struct {
	Value string `json:"value" validate:"max=10000"`
}

// ListSettings handles GET /settings
func (h *SettingsHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// GetSetting handles GET /settings/{key}
func (h *SettingsHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key, ok := settingKey(w, r)
	if !ok {
		return
	}

	value, err := h.settings.Get(r.Context(), key)
	if err != nil {
		respondStoreError(w, err, "setting")
		return
	}
	respondJSON(w, http.StatusOK, models.Setting{Key: key, Value: value})
}

// PutSetting handles PUT /settings/{key}. Missing keys are created.
func (h *SettingsHandler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key, ok := settingKey(w, r)
	if !ok {
		return
	}

	var req PutSettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if key == models.SettingRateLimit {
		if _, err := limiter.NewRateFromFormatted(req.Value); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "rate_limit must look like 120-M")
			return
		}
	}

	if err := h.settings.Set(r.Context(), key, req.Value); err != nil {
		h.logger.Error("failed_to_save_setting", zap.String("key", key), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save setting")
		return
	}

	h.logger.Info("setting_updated", zap.String("key", key))
	respondJSON(w, http.StatusOK, models.Setting{Key: key, Value: req.Value})
}

func settingKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := mux.Vars(r)["key"]
	if !settingKeyPattern.MatchString(key) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid setting key")
		return "", false
	}
	return key, true
}
