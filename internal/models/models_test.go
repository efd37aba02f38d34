package models

import (
	"testing"
	"time"
)

func TestTaskPriority_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value TaskPriority
		valid bool
	}{
		{"low", TaskPriorityLow, true},
		{"medium", TaskPriorityMedium, true},
		{"high", TaskPriorityHigh, true},
		{"invalid", TaskPriority("urgent"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			switch tt.value {
			case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
				if !tt.valid {
					t.Errorf("Expected %s to be invalid", tt.value)
				}
			default:
				if tt.valid {
					t.Errorf("Expected %s to be valid", tt.value)
				}
			}
		})
	}
}

func TestScanResult_Done(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ScanStatus
		done   bool
	}{
		{ScanStatusPending, false},
		{ScanStatusCompleted, true},
		{ScanStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			s := &ScanResult{Status: tt.status}
			if got := s.Done(); got != tt.done {
				t.Errorf("Expected Done()=%v for %s, got %v", tt.done, tt.status, got)
			}
		})
	}
}

func TestTask_ApplyDefaults(t *testing.T) {
	t.Parallel()

	task := &Task{Title: "Buy milk"}
	task.ApplyDefaults()
	if task.Priority != TaskPriorityMedium {
		t.Errorf("Expected default priority medium, got %s", task.Priority)
	}
	if task.Category != TaskCategoryGeneral {
		t.Errorf("Expected default category general, got %s", task.Category)
	}

	scan := &Task{Title: "Dentist", Priority: TaskPriorityHigh, Category: TaskCategoryScan}
	scan.ApplyDefaults()
	if scan.Priority != TaskPriorityHigh || scan.Category != TaskCategoryScan {
		t.Errorf("ApplyDefaults overwrote set fields: %+v", scan)
	}
}

func TestHabit_ApplyDefaults(t *testing.T) {
	t.Parallel()

	h := &Habit{Name: "Read"}
	h.ApplyDefaults()
	if h.Icon != DefaultHabitIcon || h.Color != DefaultHabitColor {
		t.Errorf("Expected default icon and color, got %q %q", h.Icon, h.Color)
	}
	if h.Frequency != HabitFrequencyDaily {
		t.Errorf("Expected daily frequency, got %s", h.Frequency)
	}
	if h.Goal != DefaultHabitGoal {
		t.Errorf("Expected goal %d, got %d", DefaultHabitGoal, h.Goal)
	}
}

func TestNewIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"task", NewTaskID, TaskIDPrefix},
		{"habit", NewHabitID, HabitIDPrefix},
		{"log", NewHabitLogID, HabitLogIDPrefix},
		{"scan", NewScanID, ScanIDPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, b := tt.gen(), tt.gen()
			if a == b {
				t.Errorf("Expected unique ids, got %s twice", a)
			}
			if len(a) != len(tt.prefix)+36 || a[:len(tt.prefix)] != tt.prefix {
				t.Errorf("Unexpected id format %q", a)
			}
		})
	}
}

func TestCalculateStreak(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 12, 11, 15, 4, 0, 0, time.UTC)
	log := func(habit, date string, completed bool) *HabitLog {
		return &HabitLog{HabitID: habit, Date: date, Completed: completed}
	}

	tests := []struct {
		name string
		logs []*HabitLog
		want int
	}{
		{"no logs", nil, 0},
		{"done today only", []*HabitLog{log("h1", "2024-12-11", true)}, 1},
		{
			"three days running",
			[]*HabitLog{log("h1", "2024-12-09", true), log("h1", "2024-12-11", true), log("h1", "2024-12-10", true)},
			3,
		},
		{
			"gap ends the streak",
			[]*HabitLog{log("h1", "2024-12-11", true), log("h1", "2024-12-10", true), log("h1", "2024-12-08", true)},
			2,
		},
		{"not yet done today", []*HabitLog{log("h1", "2024-12-10", true), log("h1", "2024-12-09", true)}, 0},
		{"duplicate day counts once", []*HabitLog{log("h1", "2024-12-11", true), log("h1", "2024-12-11", true)}, 1},
		{"skipped day is not done", []*HabitLog{log("h1", "2024-12-11", false)}, 0},
		{"other habits ignored", []*HabitLog{log("h2", "2024-12-11", true), log("h1", "2024-12-11", true), log("h2", "2024-12-10", true)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateStreak("h1", tt.logs, today); got != tt.want {
				t.Errorf("CalculateStreak() = %d, want %d", got, tt.want)
			}
		})
	}

	monthEnd := []*HabitLog{log("h1", "2025-03-01", true), log("h1", "2025-02-28", true), log("h1", "2025-02-27", true)}
	if got := CalculateStreak("h1", monthEnd, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)); got != 3 {
		t.Errorf("CalculateStreak() across month end = %d, want 3", got)
	}
}
