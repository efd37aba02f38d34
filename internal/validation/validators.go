package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/benvon/bakatracker/internal/extract"
	"github.com/benvon/bakatracker/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Registration only fails on programmer error
	for tag, fn := range map[string]validator.Func{
		"task_priority":   validateTaskPriority,
		"habit_frequency": validateHabitFrequency,
		"scan_kind":       validateScanKind,
		"date_ymd":        validateDate,
	} {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

func validateTaskPriority(fl validator.FieldLevel) bool {
	return ValidateTaskPriority(fl.Field().String()) == nil
}

func validateHabitFrequency(fl validator.FieldLevel) bool {
	return ValidateHabitFrequency(fl.Field().String()) == nil
}

func validateScanKind(fl validator.FieldLevel) bool {
	switch models.ScanKind(fl.Field().String()) {
	case models.ScanKindImage, models.ScanKindAudio:
		return true
	default:
		return false
	}
}

// validateDate accepts YYYY-MM-DD; empty values are left to `required`
func validateDate(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if v == "" {
		return true
	}
	return ValidateDate(v) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskPriority validates a TaskPriority string value
func ValidateTaskPriority(value string) error {
	switch models.TaskPriority(value) {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', or 'high')", value)
	}
}

// ValidateHabitFrequency validates a HabitFrequency string value
func ValidateHabitFrequency(value string) error {
	switch models.HabitFrequency(value) {
	case models.HabitFrequencyDaily, models.HabitFrequencyWeekly:
		return nil
	default:
		return fmt.Errorf("invalid frequency: %s (must be 'daily' or 'weekly')", value)
	}
}

// ValidateDate validates a YYYY-MM-DD calendar date
func ValidateDate(value string) error {
	if _, err := time.Parse(extract.DateLayout, value); err != nil {
		return fmt.Errorf("invalid date: %s (must be YYYY-MM-DD)", value)
	}
	return nil
}

// Struct validates s and flattens validator errors into one readable message
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
