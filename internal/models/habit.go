package models

import "time"

// HabitFrequency represents how often a habit should be done
type HabitFrequency string

const (
	HabitFrequencyDaily  HabitFrequency = "daily"
	HabitFrequencyWeekly HabitFrequency = "weekly"
)

// Defaults applied when a habit is created without them
const (
	DefaultHabitIcon  = "check_circle"
	DefaultHabitColor = "primary"
	DefaultHabitGoal  = 1
)

// Habit represents a tracked habit
type Habit struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Icon      string         `json:"icon"`
	Color     string         `json:"color"`
	Frequency HabitFrequency `json:"frequency"`
	CreatedAt time.Time      `json:"created_at"`
	Streak    int            `json:"streak"`
	Goal      int            `json:"goal"`
}

// ApplyDefaults fills unset fields the way new rows are written
func (h *Habit) ApplyDefaults() {
	if h.Icon == "" {
		h.Icon = DefaultHabitIcon
	}
	if h.Color == "" {
		h.Color = DefaultHabitColor
	}
	if h.Frequency == "" {
		h.Frequency = HabitFrequencyDaily
	}
	if h.Goal <= 0 {
		h.Goal = DefaultHabitGoal
	}
}

// HabitLog records whether a habit was done on a given day
type HabitLog struct {
	ID        string `json:"id"`
	HabitID   string `json:"habit_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
	Notes     string `json:"notes"`
}

// CalculateStreak counts consecutive completed days ending on today.
// Logs for other habits are ignored. A day without a completed log ends the
// streak, so a habit not yet done today has a streak of zero.
func CalculateStreak(habitID string, logs []*HabitLog, today time.Time) int {
	done := make(map[string]bool)
	for _, l := range logs {
		if l.HabitID == habitID && l.Completed {
			done[l.Date] = true
		}
	}
	streak := 0
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for done[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
