package extract

// Confidence levels assigned to candidates.
const (
	// ConfidenceDate is used when a date pattern matched the line, even if the
	// matched text could not be turned into a calendar date.
	ConfidenceDate = 0.9
	// ConfidenceTime is used when only a time pattern matched.
	ConfidenceTime = 0.7
	// ConfidenceText is used for lines admitted by the title length heuristic alone.
	ConfidenceText = 0.5
)

const (
	// DefaultMaxCandidates caps the number of candidates returned per call.
	DefaultMaxCandidates = 10
	// SnippetLength is the number of characters of the source line kept for provenance.
	SnippetLength = 80
	// minTitleLength and maxTitleLength bound (exclusively) the title length of
	// lines that carry neither a date nor a time.
	minTitleLength = 5
	maxTitleLength = 100
	// DateLayout is the ISO calendar date layout used for CandidateEvent.Date.
	DateLayout = "2006-01-02"
)

// CandidateEvent is a provisional task suggestion produced by the extractor.
// Callers may edit Title, Date, Time and Selected before saving it.
type CandidateEvent struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	SourceSnippet string  `json:"source_snippet"`
	Confidence    float64 `json:"confidence"`
	Selected      bool    `json:"selected"`
}
