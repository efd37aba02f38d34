package google

const (
	// ScopeSpreadsheets grants read/write access to spreadsheets
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	// ScopeCloudPlatform covers Cloud Vision and Cloud Speech-to-Text
	ScopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"
)

// DefaultScopes are requested when the caller does not name any.
var DefaultScopes = []string{
	ScopeSpreadsheets,
	ScopeCloudPlatform,
}
