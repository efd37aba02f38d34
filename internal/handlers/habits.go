package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/bakatracker/internal/extract"
	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/benvon/bakatracker/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HabitHandler handles habit and habit log requests
type HabitHandler struct {
	habits storage.HabitRepository
	logs   storage.HabitLogRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habits storage.HabitRepository, logs storage.HabitLogRepository, logger *zap.Logger, now func() time.Time) *HabitHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HabitHandler{habits: habits, logs: logs, logger: logger, now: clockOrNow(now)}
}

// RegisterRoutes registers habit routes on the /api/v1 router
func (h *HabitHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/habits", h.ListHabits).Methods("GET")
	r.HandleFunc("/habits", h.CreateHabit).Methods("POST")
	r.HandleFunc("/habits/{id}", h.UpdateHabit).Methods("PATCH")
	r.HandleFunc("/habits/{id}", h.DeleteHabit).Methods("DELETE")
	r.HandleFunc("/habits/{id}/logs", h.LogHabit).Methods("POST")
	r.HandleFunc("/habit-logs", h.ListLogs).Methods("GET")
}

// CreateHabitRequest represents a create habit request
type CreateHabitRequest struct {
	Name      string                `json:"name" validate:"required,max=200"`
	Icon      string                `json:"icon" validate:"max=50"`
	Color     string                `json:"color" validate:"max=50"`
	Frequency models.HabitFrequency `json:"frequency" validate:"omitempty,habit_frequency"`
	Goal      int                   `json:"goal" validate:"gte=0,lte=100"`
}

// UpdateHabitRequest represents an update habit request. Streak is derived
// from the habit's logs and cannot be set.
type UpdateHabitRequest struct {
	Name      *string                `json:"name,omitempty" validate:"omitempty,max=200"`
	Icon      *string                `json:"icon,omitempty" validate:"omitempty,max=50"`
	Color     *string                `json:"color,omitempty" validate:"omitempty,max=50"`
	Frequency *models.HabitFrequency `json:"frequency,omitempty" validate:"omitempty,habit_frequency"`
	Goal      *int                   `json:"goal,omitempty" validate:"omitempty,gte=1,lte=100"`
}

// LogHabitRequest records a habit for a day. Date defaults to today and
// Completed to true.
type LogHabitRequest struct {
	Date      string `json:"date" validate:"date_ymd"`
	Completed *bool  `json:"completed,omitempty"`
	Notes     string `json:"notes" validate:"max=1000"`
}

// ListHabits handles GET /habits
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	habits, err := h.habits.List(ctx)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve habits")
		return
	}
	logs, err := h.logs.List(ctx)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve habit logs")
		return
	}
	today := h.now()
	for _, habit := range habits {
		habit.Streak = models.CalculateStreak(habit.ID, logs, today)
	}
	respondJSON(w, http.StatusOK, habits)
}

// CreateHabit handles POST /habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req CreateHabitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := validation.SanitizeText(req.Name)
	if name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name is required and cannot be empty after sanitization")
		return
	}

	habit := &models.Habit{
		ID:        models.NewHabitID(),
		Name:      name,
		Icon:      req.Icon,
		Color:     req.Color,
		Frequency: req.Frequency,
		Goal:      req.Goal,
		CreatedAt: h.now().UTC(),
	}
	habit.ApplyDefaults()

	if err := h.habits.Create(r.Context(), habit); err != nil {
		h.logger.Error("failed_to_create_habit", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create habit")
		return
	}
	respondJSON(w, http.StatusCreated, habit)
}

// UpdateHabit handles PATCH /habits/{id}
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req UpdateHabitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	habit, err := h.habits.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err, "habit")
		return
	}

	if req.Name != nil {
		name := validation.SanitizeText(*req.Name)
		if name == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name cannot be empty")
			return
		}
		habit.Name = name
	}
	if req.Icon != nil {
		habit.Icon = *req.Icon
	}
	if req.Color != nil {
		habit.Color = *req.Color
	}
	if req.Frequency != nil {
		habit.Frequency = *req.Frequency
	}
	if req.Goal != nil {
		habit.Goal = *req.Goal
	}
	habit.ApplyDefaults()
	if err := h.refreshStreak(ctx, habit); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve habit logs")
		return
	}

	if err := h.habits.Update(ctx, habit); err != nil {
		respondStoreError(w, err, "habit")
		return
	}
	respondJSON(w, http.StatusOK, habit)
}

// DeleteHabit handles DELETE /habits/{id}
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.habits.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondStoreError(w, err, "habit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogHabit handles POST /habits/{id}/logs
func (h *HabitHandler) LogHabit(w http.ResponseWriter, r *http.Request) {
	var req LogHabitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	habit, err := h.habits.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err, "habit")
		return
	}

	entry := &models.HabitLog{
		ID:        models.NewHabitLogID(),
		HabitID:   habit.ID,
		Date:      req.Date,
		Completed: true,
		Notes:     validation.SanitizeText(req.Notes),
	}
	if entry.Date == "" {
		entry.Date = h.now().Format(extract.DateLayout)
	}
	if req.Completed != nil {
		entry.Completed = *req.Completed
	}

	if err := h.logs.Create(ctx, entry); err != nil {
		h.logger.Error("failed_to_log_habit", zap.String("habit_id", habit.ID), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to log habit")
		return
	}

	// The log is already stored; a stale streak is recomputed on the next read.
	if err := h.refreshStreak(ctx, habit); err == nil {
		err = h.habits.Update(ctx, habit)
	}
	if err != nil {
		h.logger.Warn("failed_to_update_streak", zap.String("habit_id", habit.ID), zap.Error(err))
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *HabitHandler) refreshStreak(ctx context.Context, habit *models.Habit) error {
	logs, err := h.logs.List(ctx)
	if err != nil {
		return err
	}
	habit.Streak = models.CalculateStreak(habit.ID, logs, h.now())
	return nil
}

// ListLogs handles GET /habit-logs?date=YYYY-MM-DD; date defaults to today
func (h *HabitHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.now().Format(extract.DateLayout)
	} else if err := validation.ValidateDate(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	logs, err := h.logs.ListByDate(r.Context(), date)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve habit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
