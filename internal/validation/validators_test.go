package validation

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim", "  hello  ", "hello"},
		{"control removed", "a\x00b\x07c", "abc"},
		{"newlines kept", "line1\nline2\r\n", "line1\nline2"},
		{"tabs kept", "a\tb", "a\tb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateTaskPriority(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"low", "medium", "high"} {
		if err := ValidateTaskPriority(v); err != nil {
			t.Errorf("ValidateTaskPriority(%q) unexpected error: %v", v, err)
		}
	}
	if err := ValidateTaskPriority("urgent"); err == nil {
		t.Error("ValidateTaskPriority(urgent) expected error")
	}
}

func TestValidateHabitFrequency(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"daily", "weekly"} {
		if err := ValidateHabitFrequency(v); err != nil {
			t.Errorf("ValidateHabitFrequency(%q) unexpected error: %v", v, err)
		}
	}
	if err := ValidateHabitFrequency("monthly"); err == nil {
		t.Error("ValidateHabitFrequency(monthly) expected error")
	}
}

func TestValidateDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"2024-12-11", false},
		{"2024-02-29", false},
		{"2023-02-29", true},
		{"12/11/2024", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			if err := ValidateDate(tt.value); (err != nil) != tt.wantErr {
				t.Errorf("ValidateDate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	t.Parallel()

	type input struct {
		Title    string `validate:"required,max=10"`
		Priority string `validate:"omitempty,task_priority"`
		Due      string `validate:"date_ymd"`
		Kind     string `validate:"required,scan_kind"`
	}

	tests := []struct {
		name    string
		in      input
		wantErr string
	}{
		{"valid", input{Title: "Call", Priority: "high", Due: "2024-12-11", Kind: "image"}, ""},
		{"empty due ok", input{Title: "Call", Kind: "audio"}, ""},
		{"missing title", input{Kind: "image"}, "title failed required"},
		{"bad priority", input{Title: "Call", Priority: "asap", Kind: "image"}, "priority failed task_priority"},
		{"bad date", input{Title: "Call", Due: "tomorrow", Kind: "image"}, "due failed date_ymd"},
		{"bad kind", input{Title: "Call", Kind: "video"}, "kind failed scan_kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Struct(tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Struct() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Struct() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
