package sheets

import (
	"strconv"
	"time"

	"github.com/benvon/bakatracker/internal/models"
)

func formatBool(b bool) string { return strconv.FormatBool(b) }

func parseBool(s string) bool { return s == "true" || s == "TRUE" }

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime accepts RFC 3339 and the millisecond form browsers write
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func taskValues(t *models.Task) map[string]string {
	return map[string]string{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"dueDate":     t.DueDate,
		"dueTime":     t.DueTime,
		"priority":    string(t.Priority),
		"category":    t.Category,
		"completed":   formatBool(t.Completed),
		"createdAt":   formatTime(t.CreatedAt),
	}
}

func taskFromValues(v map[string]string) *models.Task {
	return &models.Task{
		ID:          v["id"],
		Title:       v["title"],
		Description: v["description"],
		DueDate:     v["dueDate"],
		DueTime:     v["dueTime"],
		Priority:    models.TaskPriority(v["priority"]),
		Category:    v["category"],
		Completed:   parseBool(v["completed"]),
		CreatedAt:   parseTime(v["createdAt"]),
	}
}

func habitValues(h *models.Habit) map[string]string {
	return map[string]string{
		"id":        h.ID,
		"name":      h.Name,
		"icon":      h.Icon,
		"color":     h.Color,
		"frequency": string(h.Frequency),
		"createdAt": formatTime(h.CreatedAt),
		"streak":    strconv.Itoa(h.Streak),
		"goal":      strconv.Itoa(h.Goal),
	}
}

func habitFromValues(v map[string]string) *models.Habit {
	return &models.Habit{
		ID:        v["id"],
		Name:      v["name"],
		Icon:      v["icon"],
		Color:     v["color"],
		Frequency: models.HabitFrequency(v["frequency"]),
		CreatedAt: parseTime(v["createdAt"]),
		Streak:    parseInt(v["streak"]),
		Goal:      parseInt(v["goal"]),
	}
}

func habitLogValues(l *models.HabitLog) map[string]string {
	return map[string]string{
		"id":        l.ID,
		"habitId":   l.HabitID,
		"date":      l.Date,
		"completed": formatBool(l.Completed),
		"notes":     l.Notes,
	}
}

func habitLogFromValues(v map[string]string) *models.HabitLog {
	return &models.HabitLog{
		ID:        v["id"],
		HabitID:   v["habitId"],
		Date:      v["date"],
		Completed: parseBool(v["completed"]),
		Notes:     v["notes"],
	}
}
