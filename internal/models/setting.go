package models

// Setting is a key/value preference stored alongside the tracker data
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Settings the server reads at runtime. Both are reloaded periodically so a
// change made through the settings API takes effect without a restart.
const (
	// SettingCORSOrigins is a comma separated list of allowed browser origins
	SettingCORSOrigins = "cors_allowed_origins"
	// SettingRateLimit is a ulule/limiter formatted rate such as "120-M"
	SettingRateLimit = "rate_limit"
)
