package models

// JWTClaims represents the claims extracted from a Google ID token
type JWTClaims struct {
	Sub           string `json:"sub"`            // Subject (Google account ID)
	Email         string `json:"email"`          // User email
	EmailVerified bool   `json:"email_verified"` // Whether Google verified the email
	Name          string `json:"name"`           // User name
	Exp           int64  `json:"exp"`            // Expiration time
	Iat           int64  `json:"iat"`            // Issued at
	Iss           string `json:"iss"`            // Issuer
	Aud           string `json:"aud"`            // Audience
}
