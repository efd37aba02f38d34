package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/benvon/bakatracker/internal/validation"
	"github.com/benvon/bakatracker/internal/voice"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// VoiceHandler turns spoken commands into tasks and habits
type VoiceHandler struct {
	tasks  storage.TaskRepository
	habits storage.HabitRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewVoiceHandler creates a new voice command handler
func NewVoiceHandler(tasks storage.TaskRepository, habits storage.HabitRepository, logger *zap.Logger, now func() time.Time) *VoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoiceHandler{tasks: tasks, habits: habits, logger: logger, now: clockOrNow(now)}
}

// RegisterRoutes registers voice routes on the given router
// The router should already have the /voice prefix
func (h *VoiceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analyze", h.Analyze).Methods("POST")
	r.HandleFunc("/apply", h.Apply).Methods("POST")
}

// VoiceRequest carries a transcript
type VoiceRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// VoiceApplyResponse is the command and the record it created
type VoiceApplyResponse struct {
	Command voice.Command `json:"command"`
	Task    *models.Task  `json:"task,omitempty"`
	Habit   *models.Habit `json:"habit,omitempty"`
}

// Analyze handles POST /voice/analyze
func (h *VoiceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req VoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, voice.Analyze(req.Text, h.now()))
}

// Apply handles POST /voice/apply
func (h *VoiceHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req VoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cmd := voice.Analyze(req.Text, h.now())
	name := validation.SanitizeText(cmd.Name)
	if name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Could not find a name in the command")
		return
	}

	ctx := r.Context()
	resp := VoiceApplyResponse{Command: cmd}
	switch cmd.Kind {
	case voice.KindHabit:
		habit := &models.Habit{
			ID:        models.NewHabitID(),
			Name:      name,
			Frequency: models.HabitFrequencyDaily,
			CreatedAt: h.now().UTC(),
		}
		habit.ApplyDefaults()
		if err := h.habits.Create(ctx, habit); err != nil {
			h.logger.Error("failed_to_create_habit_from_voice", zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create habit")
			return
		}
		resp.Habit = habit
	default:
		task := &models.Task{
			ID:        models.NewTaskID(),
			Title:     name,
			DueDate:   cmd.Date,
			DueTime:   cmd.Time,
			CreatedAt: h.now().UTC(),
		}
		task.ApplyDefaults()
		if err := h.tasks.Create(ctx, task); err != nil {
			h.logger.Error("failed_to_create_task_from_voice", zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
			return
		}
		resp.Task = task
	}

	h.logger.Info("voice_command_applied", zap.String("kind", string(cmd.Kind)))
	respondJSON(w, http.StatusCreated, resp)
}
