package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthPattern matches full or abbreviated English month names. The month is
// resolved from the first three letters only.
const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

const weekdayPattern = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// datePattern is one family of date expressions. normalize receives the
// submatches of re and the reference date; it reports false when the matched
// text does not describe a real calendar date.
type datePattern struct {
	name      string
	re        *regexp.Regexp
	normalize func(m []string, ref time.Time) (time.Time, bool)
	// accept, when set, rejects matches at [start, end) of line
	accept func(line string, start, end int) bool
}

// datePatterns is tried in order; the first family that matches wins.
var datePatterns = []datePattern{
	{
		name:      "numeric",
		re:        regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{4}|\d{2}))?\b`),
		normalize: normalizeNumeric,
		accept:    outsideClock,
	},
	{
		name:      "day_month",
		re:        regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s*` + monthPattern + `\b\.?`),
		normalize: normalizeDayMonth,
	},
	{
		name:      "month_day",
		re:        regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s*(\d{1,2})(?:st|nd|rd|th)?\b`),
		normalize: normalizeMonthDay,
	},
	{
		name:      "relative",
		re:        regexp.MustCompile(`(?i)\b(today|tomorrow|next\s+` + weekdayPattern + `)\b`),
		normalize: normalizeRelative,
	},
}

// dateMatch is the outcome of scanning one line for a date.
type dateMatch struct {
	// raw is the matched substring, empty when nothing matched.
	raw string
	// date is the normalized ISO date, empty when raw could not be resolved.
	date string
	// rest is the line with every occurrence of the winning pattern removed.
	rest string
}

func (m dateMatch) found() bool { return m.raw != "" }

// matchDate finds the first date expression in line, trying pattern families
// in priority order.
func matchDate(line string, ref time.Time) dateMatch {
	for _, p := range datePatterns {
		var first []int
		var rest strings.Builder
		last := 0
		for _, loc := range p.re.FindAllStringSubmatchIndex(line, -1) {
			if p.accept != nil && !p.accept(line, loc[0], loc[1]) {
				continue
			}
			if first == nil {
				first = loc
			}
			rest.WriteString(line[last:loc[0]])
			last = loc[1]
		}
		if first == nil {
			continue
		}
		rest.WriteString(line[last:])

		sub := submatches(line, first)
		m := dateMatch{raw: sub[0], rest: rest.String()}
		if d, ok := p.normalize(sub, ref); ok {
			m.date = d.Format(DateLayout)
		}
		return m
	}
	return dateMatch{rest: line}
}

func submatches(s string, loc []int) []string {
	sub := make([]string, len(loc)/2)
	for i := range sub {
		if loc[2*i] >= 0 {
			sub[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return sub
}

// outsideClock rejects a numeric date that touches a clock time, such as
// the "30-11" inside "10:30-11:30".
func outsideClock(line string, start, end int) bool {
	if start >= 2 && line[start-1] == ':' && isDigit(line[start-2]) {
		return false
	}
	if end+1 < len(line) && line[end] == ':' && isDigit(line[end+1]) {
		return false
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// ResolveDate normalizes a single date expression such as "today",
// "next friday", "Dec 15" or "15/12/2024" against ref. It reports false when
// text is not a recognised date expression or names an impossible date.
func ResolveDate(text string, ref time.Time) (string, bool) {
	m := matchDate(strings.TrimSpace(text), ref)
	if m.date == "" {
		return "", false
	}
	return m.date, true
}

// normalizeNumeric reads D/M/Y day first. Two digit years are in the 2000s;
// a missing year means the reference year.
func normalizeNumeric(m []string, ref time.Time) (time.Time, bool) {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := ref.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	}
	return calendarDate(year, time.Month(month), day, ref.Location())
}

func normalizeDayMonth(m []string, ref time.Time) (time.Time, bool) {
	day, _ := strconv.Atoi(m[1])
	return calendarDate(ref.Year(), monthFromName(m[2]), day, ref.Location())
}

// normalizeMonthDay always uses the reference year, so "Jan 2" read in
// December lands in the past.
func normalizeMonthDay(m []string, ref time.Time) (time.Time, bool) {
	day, _ := strconv.Atoi(m[2])
	return calendarDate(ref.Year(), monthFromName(m[1]), day, ref.Location())
}

func normalizeRelative(m []string, ref time.Time) (time.Time, bool) {
	today := startOfDay(ref)
	keyword := strings.ToLower(m[1])
	switch {
	case keyword == "today":
		return today, true
	case keyword == "tomorrow":
		return today.AddDate(0, 0, 1), true
	case m[2] != "":
		return nextWeekday(today, weekdays[strings.ToLower(m[2])]), true
	}
	return time.Time{}, false
}

// nextWeekday returns the first day strictly after from that falls on target.
func nextWeekday(from time.Time, target time.Weekday) time.Time {
	days := int(target) - int(from.Weekday())
	if days <= 0 {
		days += 7
	}
	return from.AddDate(0, 0, days)
}

func monthFromName(name string) time.Month {
	if len(name) < 3 {
		return 0
	}
	return months[strings.ToLower(name[:3])]
}

// calendarDate builds a date and rejects values time.Date would silently
// normalize, such as month 13 or February 30.
func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
