package models

import "github.com/google/uuid"

// Record id prefixes
const (
	TaskIDPrefix     = "task_"
	HabitIDPrefix    = "habit_"
	HabitLogIDPrefix = "log_"
	ScanIDPrefix     = "scan_"
)

// NewTaskID returns a fresh task id
func NewTaskID() string { return TaskIDPrefix + uuid.NewString() }

// NewHabitID returns a fresh habit id
func NewHabitID() string { return HabitIDPrefix + uuid.NewString() }

// NewHabitLogID returns a fresh habit log id
func NewHabitLogID() string { return HabitLogIDPrefix + uuid.NewString() }

// NewScanID returns a fresh scan id
func NewScanID() string { return ScanIDPrefix + uuid.NewString() }
