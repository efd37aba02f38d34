package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		wantRaw  string
		wantDate string
		wantRest string
	}{
		{name: "numeric with four digit year", line: "exam 15/12/2024", wantRaw: "15/12/2024", wantDate: "2024-12-15", wantRest: "exam "},
		{name: "numeric with two digit year", line: "renew 1-2-25 car", wantRaw: "1-2-25", wantDate: "2025-02-01", wantRest: "renew  car"},
		{name: "numeric without year", line: "party 3/4", wantRaw: "3/4", wantDate: "2024-04-03", wantRest: "party "},
		{name: "numeric invalid month", line: "thing 13/13", wantRaw: "13/13", wantDate: "", wantRest: "thing "},
		{name: "day month with suffix and period", line: "talk 15th Dec. room 4", wantRaw: "15th Dec.", wantDate: "2024-12-15", wantRest: "talk  room 4"},
		{name: "day month full name", line: "2 January review", wantRaw: "2 January", wantDate: "2024-01-02", wantRest: " review"},
		{name: "month day", line: "Dec 15th deadline", wantRaw: "Dec 15th", wantDate: "2024-12-15", wantRest: " deadline"},
		{name: "month day without rollover", line: "Jan 2 kickoff", wantRaw: "Jan 2", wantDate: "2024-01-02", wantRest: " kickoff"},
		{name: "month name matched on first three letters", line: "September 9 trip", wantRaw: "September 9", wantDate: "2024-09-09", wantRest: " trip"},
		{name: "month day impossible day", line: "Feb 30 party", wantRaw: "Feb 30", wantDate: "", wantRest: " party"},
		{name: "today", line: "call today", wantRaw: "today", wantDate: "2024-12-11", wantRest: "call "},
		{name: "tomorrow mixed case", line: "Call TOMORROW", wantRaw: "TOMORROW", wantDate: "2024-12-12", wantRest: "Call "},
		{name: "next weekday", line: "demo next Friday", wantRaw: "next Friday", wantDate: "2024-12-13", wantRest: "demo "},
		{name: "next same weekday skips a week", line: "next wednesday gym", wantRaw: "next wednesday", wantDate: "2024-12-18", wantRest: " gym"},
		{name: "next earlier weekday", line: "next monday", wantRaw: "next monday", wantDate: "2024-12-16", wantRest: ""},
		{name: "numeric family wins over relative", line: "today or 5/6", wantRaw: "5/6", wantDate: "2024-06-05", wantRest: "today or "},
		{name: "all relative occurrences removed", line: "today and today", wantRaw: "today", wantDate: "2024-12-11", wantRest: " and "},
		{name: "time range is not a numeric date", line: "meeting 10:30-11:30 room", wantRaw: "", wantDate: "", wantRest: "meeting 10:30-11:30 room"},
		{name: "date after a time range", line: "shift 9:00-17:00 on 5/6", wantRaw: "5/6", wantDate: "2024-06-05", wantRest: "shift 9:00-17:00 on "},
		{name: "date followed by a colon label", line: "5/6: submit", wantRaw: "5/6", wantDate: "2024-06-05", wantRest: ": submit"},
		{name: "no date", line: "buy milk", wantRaw: "", wantDate: "", wantRest: "buy milk"},
		{name: "month word inside another word", line: "decide on marketing", wantRaw: "", wantDate: "", wantRest: "decide on marketing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := matchDate(tt.line, refTime)
			assert.Equal(t, tt.wantRaw, m.raw)
			assert.Equal(t, tt.wantDate, m.date)
			assert.Equal(t, tt.wantRest, m.rest)
			assert.Equal(t, tt.wantRaw != "", m.found())
		})
	}
}

func TestNextWeekday(t *testing.T) {
	t.Parallel()

	wednesday := time.Date(2024, time.December, 11, 0, 0, 0, 0, time.UTC)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		got := nextWeekday(wednesday, wd)
		assert.Equal(t, wd, got.Weekday())
		assert.True(t, got.After(wednesday))
		assert.LessOrEqual(t, got.Sub(wednesday), 7*24*time.Hour)
	}
}

func TestResolveDate(t *testing.T) {
	t.Parallel()

	got, ok := ResolveDate("  tomorrow ", refTime)
	assert.True(t, ok)
	assert.Equal(t, "2024-12-12", got)

	_, ok = ResolveDate("someday", refTime)
	assert.False(t, ok)

	_, ok = ResolveDate("31/04", refTime)
	assert.False(t, ok)
}

func TestMatchTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line     string
		wantRaw  string
		wantRest string
	}{
		{line: "call at 3:00 PM", wantRaw: "3:00 PM", wantRest: "call at "},
		{line: "call at 3:00PM sharp", wantRaw: "3:00PM", wantRest: "call at  sharp"},
		{line: "train 15:45", wantRaw: "15:45", wantRest: "train "},
		{line: "lunch at Noon", wantRaw: "Noon", wantRest: "lunch at "},
		{line: "deploy at midnight", wantRaw: "midnight", wantRest: "deploy at "},
		{line: "afternoon walk", wantRaw: "", wantRest: "afternoon walk"},
		{line: "9:00 and 10:00 calls", wantRaw: "9:00", wantRest: " and  calls"},
		{line: "noon or 11:30", wantRaw: "11:30", wantRest: "noon or "},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			raw, rest := matchTime(tt.line)
			assert.Equal(t, tt.wantRaw, raw)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}
