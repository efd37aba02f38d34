package models

// User is the authenticated caller, taken from a verified Google ID token
type User struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}
