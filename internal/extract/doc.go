// Package extract turns raw recognised text (OCR output, speech transcripts)
// into candidate calendar events that can be reviewed and saved as tasks.
//
// Extraction works line by line. Each line is scanned for a date token, then
// for a time token, and whatever text remains becomes the candidate title:
//
//	raw text -> lines -> date match -> time match -> title cleanup -> score
//
// Candidates are ordered by confidence (stable for ties) and capped at
// DefaultMaxCandidates. Date and time detection are heuristic: the first
// pattern family that matches wins, and relative expressions such as
// "tomorrow" or "next friday" are resolved against a single reference date
// taken once per call.
//
// Usage:
//
//	ex := extract.New()
//	for _, c := range ex.Extract("Dentist tomorrow at 3:00 PM") {
//	    fmt.Println(c.Title, c.Date, c.Time, c.Confidence)
//	}
package extract
