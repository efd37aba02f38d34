package oidc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Google ID tokens carry either form of the issuer
var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

var (
	// ErrNotOwner is returned for a valid token that belongs to someone else
	ErrNotOwner = errors.New("token does not belong to the tracker owner")
	// ErrEmailNotVerified is returned when Google has not verified the email
	ErrEmailNotVerified = errors.New("token email is not verified")
)

// Verifier verifies Google ID tokens for a single owner account
type Verifier struct {
	jwksManager *JWKSManager
	jwksURL     string
	issuers     []string
	clientID    string
	ownerEmail  string
	now         func() time.Time
}

// VerifierOption customises a Verifier
type VerifierOption func(*Verifier)

// WithJWKSURL overrides the key set location
func WithJWKSURL(url string) VerifierOption {
	return func(v *Verifier) { v.jwksURL = url }
}

// WithIssuers overrides the accepted issuers
func WithIssuers(issuers ...string) VerifierOption {
	return func(v *Verifier) { v.issuers = issuers }
}

// WithClock sets the time used for expiry checks
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a verifier accepting tokens issued to clientID for ownerEmail
func NewVerifier(jwksManager *JWKSManager, clientID, ownerEmail string, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		jwksManager: jwksManager,
		jwksURL:     GoogleJWKSURL,
		issuers:     googleIssuers,
		clientID:    clientID,
		ownerEmail:  strings.ToLower(ownerEmail),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks signature, expiry, audience, issuer and owner, then extracts claims
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithAudience(v.clientID),
		jwt.WithClock(jwt.ClockFunc(v.now)),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	if !v.trustedIssuer(token.Issuer()) {
		return nil, fmt.Errorf("token issuer mismatch: got %q", token.Issuer())
	}

	claims := &models.JWTClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
	}
	if aud := token.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}
	if email, ok := token.Get("email"); ok {
		claims.Email, _ = email.(string)
	}
	if name, ok := token.Get("name"); ok {
		claims.Name, _ = name.(string)
	}
	if verified, ok := token.Get("email_verified"); ok {
		switch val := verified.(type) {
		case bool:
			claims.EmailVerified = val
		case string:
			claims.EmailVerified = val == "true"
		}
	}

	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	if v.ownerEmail != "" && !strings.EqualFold(claims.Email, v.ownerEmail) {
		return nil, ErrNotOwner
	}

	return claims, nil
}

func (v *Verifier) trustedIssuer(iss string) bool {
	for _, trusted := range v.issuers {
		if iss == trusted {
			return true
		}
	}
	return false
}
