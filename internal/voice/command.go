// Package voice interprets a short spoken command such as
// "remind me to stretch every morning at 7am" as either a one-off task or
// a daily habit.
package voice

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/bakatracker/internal/extract"
)

// Kind is what a command creates.
type Kind string

const (
	KindTask  Kind = "task"
	KindHabit Kind = "habit"
)

// FrequencyOnce is reported for task commands.
const FrequencyOnce = "once"

// FrequencyDaily is reported for habit commands.
const FrequencyDaily = "daily"

var habitPhrases = []string{"every day", "daily", "habit", "every morning", "every night"}

var (
	meridiemTime = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`)
	atTime       = regexp.MustCompile(`(?i)at\s+(\d{1,2}):?(\d{2})?\s*(am|pm)?`)

	// Each filler is removed once, first occurrence only.
	fillers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)remind me to`),
		regexp.MustCompile(`(?i)every day`),
		regexp.MustCompile(`(?i)daily`),
		regexp.MustCompile(`(?i)at \d{1,2}(:\d{2})?\s*(am|pm)?`),
		regexp.MustCompile(`(?i)create a (habit|task)`),
	}
)

// Command is the interpretation of a transcript.
type Command struct {
	Kind         Kind   `json:"type"`
	Name         string `json:"name"`
	Time         string `json:"time,omitempty"`
	Date         string `json:"date,omitempty"`
	Frequency    string `json:"frequency"`
	OriginalText string `json:"original_text"`
}

// Analyze interprets text against ref. Task commands carry a due date: the
// first date expression in the text, or ref's date when there is none.
func Analyze(text string, ref time.Time) Command {
	cmd := Command{
		Kind:         KindTask,
		Frequency:    FrequencyOnce,
		OriginalText: text,
	}

	lower := strings.ToLower(text)
	for _, phrase := range habitPhrases {
		if strings.Contains(lower, phrase) {
			cmd.Kind = KindHabit
			cmd.Frequency = FrequencyDaily
			break
		}
	}

	if m := meridiemTime.FindString(text); m != "" {
		cmd.Time = m
	} else if m := atTime.FindString(text); m != "" {
		cmd.Time = m
	}

	if cmd.Kind == KindTask {
		cmd.Date = ref.Format(extract.DateLayout)
		if d, ok := extract.ResolveDate(text, ref); ok {
			cmd.Date = d
		}
	}

	cmd.Name = cleanName(text)
	return cmd
}

func cleanName(text string) string {
	name := text
	for _, re := range fillers {
		if loc := re.FindStringIndex(name); loc != nil {
			name = name[:loc[0]] + name[loc[1]:]
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
