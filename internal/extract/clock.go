package extract

import "regexp"

// timePatterns is tried in order; the first family that matches wins. The
// matched text is kept verbatim, it is never converted to 24-hour form.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}(?:\s*[ap]m\b)?`),
	regexp.MustCompile(`(?i)\b(?:noon|midnight)\b`),
}

// matchTime returns the first time expression in line and the line with every
// occurrence of the winning pattern removed.
func matchTime(line string) (raw, rest string) {
	for _, re := range timePatterns {
		if raw = re.FindString(line); raw != "" {
			return raw, re.ReplaceAllString(line, "")
		}
	}
	return "", line
}
