package models

import (
	"time"
)

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task categories
const (
	TaskCategoryGeneral = "general"
	// TaskCategoryScan marks tasks created from extracted candidates
	TaskCategoryScan = "scan"
)

// Task represents a task row in the tracker
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     string       `json:"due_date"` // YYYY-MM-DD, empty when unscheduled
	DueTime     string       `json:"due_time"` // free-form, as recognised
	Priority    TaskPriority `json:"priority"`
	Category    string       `json:"category"`
	Completed   bool         `json:"completed"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ApplyDefaults fills unset fields the way new rows are written
func (t *Task) ApplyDefaults() {
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	if t.Category == "" {
		t.Category = TaskCategoryGeneral
	}
}
