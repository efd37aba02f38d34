package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/benvon/bakatracker/internal/extract"
	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/benvon/bakatracker/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	tasks  storage.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks storage.TaskRepository, logger *zap.Logger, now func() time.Time) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{tasks: tasks, logger: logger, now: clockOrNow(now)}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/from-candidates", h.CreateFromCandidates).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteTask).Methods("POST")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"required,max=500"`
	Description string              `json:"description" validate:"max=5000"`
	DueDate     string              `json:"due_date" validate:"date_ymd"`
	DueTime     string              `json:"due_time" validate:"max=50"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,task_priority"`
	Category    string              `json:"category" validate:"max=50"`
}

// UpdateTaskRequest represents an update task request
type UpdateTaskRequest struct {
	Title       *string              `json:"title,omitempty" validate:"omitempty,max=500"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=5000"`
	DueDate     *string              `json:"due_date,omitempty" validate:"omitempty,date_ymd"`
	DueTime     *string              `json:"due_time,omitempty" validate:"omitempty,max=50"`
	Priority    *models.TaskPriority `json:"priority,omitempty" validate:"omitempty,task_priority"`
	Category    *string              `json:"category,omitempty" validate:"omitempty,max=50"`
	Completed   *bool                `json:"completed,omitempty"`
}

// FromCandidatesRequest carries reviewed candidates; only selected ones are saved
type FromCandidatesRequest struct {
	Candidates []extract.CandidateEvent `json:"candidates" validate:"required"`
}

// FromCandidatesResponse lists the tasks created from candidates
type FromCandidatesResponse struct {
	Tasks   []*models.Task `json:"tasks"`
	Created int            `json:"created"`
}

// ListTasks handles GET /tasks with optional date and completed filters
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	date := query.Get("date")
	if date != "" {
		if err := validation.ValidateDate(date); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	var completed *bool
	if c := query.Get("completed"); c != "" {
		parsed, err := strconv.ParseBool(c)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "completed must be true or false")
			return
		}
		completed = &parsed
	}

	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	filtered := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if date != "" && t.DueDate != date {
			continue
		}
		if completed != nil && t.Completed != *completed {
			continue
		}
		filtered = append(filtered, t)
	}

	respondJSON(w, http.StatusOK, filtered)
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title := validation.SanitizeText(req.Title)
	if title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}

	task := &models.Task{
		ID:          models.NewTaskID(),
		Title:       title,
		Description: validation.SanitizeText(req.Description),
		DueDate:     req.DueDate,
		DueTime:     validation.SanitizeText(req.DueTime),
		Priority:    req.Priority,
		Category:    validation.SanitizeText(req.Category),
		CreatedAt:   h.now().UTC(),
	}
	task.ApplyDefaults()

	if err := h.tasks.Create(r.Context(), task); err != nil {
		h.logger.Error("failed_to_create_task", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// CreateFromCandidates handles POST /tasks/from-candidates
func (h *TaskHandler) CreateFromCandidates(w http.ResponseWriter, r *http.Request) {
	var req FromCandidatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pending := make([]*models.Task, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if !c.Selected {
			continue
		}
		title := validation.SanitizeText(c.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Selected candidate "+c.ID+" has an empty title")
			return
		}
		if c.Date != "" {
			if err := validation.ValidateDate(c.Date); err != nil {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
				return
			}
		}
		task := &models.Task{
			ID:          models.NewTaskID(),
			Title:       title,
			Description: c.SourceSnippet,
			DueDate:     c.Date,
			DueTime:     c.Time,
			Category:    models.TaskCategoryScan,
			CreatedAt:   h.now().UTC(),
		}
		task.ApplyDefaults()
		pending = append(pending, task)
	}

	if len(pending) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "No candidates selected")
		return
	}

	created := make([]*models.Task, 0, len(pending))
	for _, task := range pending {
		if err := h.tasks.Create(r.Context(), task); err != nil {
			h.logger.Error("failed_to_create_task_from_candidate",
				zap.Int("created", len(created)),
				zap.Error(err),
			)
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create tasks")
			return
		}
		created = append(created, task)
	}

	h.logger.Info("tasks_created_from_candidates", zap.Int("created", len(created)))
	respondJSON(w, http.StatusCreated, FromCandidatesResponse{Tasks: created, Created: len(created)})
}

// GetTask handles GET /tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err, "task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	task, err := h.tasks.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err, "task")
		return
	}

	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty")
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = validation.SanitizeText(*req.Description)
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if req.DueTime != nil {
		task.DueTime = validation.SanitizeText(*req.DueTime)
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Category != nil {
		task.Category = validation.SanitizeText(*req.Category)
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	task.ApplyDefaults()

	if err := h.tasks.Update(ctx, task); err != nil {
		respondStoreError(w, err, "task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondStoreError(w, err, "task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask handles POST /tasks/{id}/complete. It toggles completion.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	task, err := h.tasks.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err, "task")
		return
	}

	task.Completed = !task.Completed
	if err := h.tasks.Update(ctx, task); err != nil {
		respondStoreError(w, err, "task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}
