package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	testClientID = "client-123.apps.googleusercontent.com"
	testOwner    = "owner@example.com"
)

type testIssuer struct {
	key     jwk.Key
	server  *httptest.Server
	fetches atomic.Int32
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	priv, err := jwk.FromRaw(raw)
	if err != nil {
		t.Fatalf("jwk.FromRaw: %v", err)
	}
	_ = priv.Set(jwk.KeyIDKey, "test-kid")
	_ = priv.Set(jwk.AlgorithmKey, jwa.RS256)

	pub, err := jwk.PublicKeyOf(priv)
	if err != nil {
		t.Fatalf("jwk.PublicKeyOf: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	body, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal set: %v", err)
	}

	ti := &testIssuer{key: priv}
	ti.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ti.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(ti.server.Close)
	return ti
}

func (ti *testIssuer) sign(t *testing.T, mutate func(*jwt.Builder) *jwt.Builder) string {
	t.Helper()
	now := time.Now()
	b := jwt.NewBuilder().
		Issuer("https://accounts.google.com").
		Subject("1234567890").
		Audience([]string{testClientID}).
		IssuedAt(now).
		Expiration(now.Add(time.Hour)).
		Claim("email", testOwner).
		Claim("email_verified", true).
		Claim("name", "Tracker Owner")
	if mutate != nil {
		b = mutate(b)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, ti.key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func (ti *testIssuer) verifier() *Verifier {
	return NewVerifier(NewJWKSManager(ti.server.Client()), testClientID, testOwner, WithJWKSURL(ti.server.URL))
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	v := ti.verifier()

	claims, err := v.Verify(context.Background(), ti.sign(t, nil))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Sub != "1234567890" {
		t.Errorf("Sub = %q, want 1234567890", claims.Sub)
	}
	if claims.Email != testOwner {
		t.Errorf("Email = %q, want %q", claims.Email, testOwner)
	}
	if claims.Name != "Tracker Owner" {
		t.Errorf("Name = %q", claims.Name)
	}
	if claims.Aud != testClientID {
		t.Errorf("Aud = %q, want %q", claims.Aud, testClientID)
	}
	if !claims.EmailVerified {
		t.Error("EmailVerified = false, want true")
	}
}

func TestVerifier_Rejects(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	v := ti.verifier()

	tests := []struct {
		name    string
		mutate  func(*jwt.Builder) *jwt.Builder
		wantErr error
	}{
		{
			name: "expired",
			mutate: func(b *jwt.Builder) *jwt.Builder {
				return b.Expiration(time.Now().Add(-time.Hour))
			},
		},
		{
			name: "wrong audience",
			mutate: func(b *jwt.Builder) *jwt.Builder {
				return b.Audience([]string{"someone-else"})
			},
		},
		{
			name: "wrong issuer",
			mutate: func(b *jwt.Builder) *jwt.Builder {
				return b.Issuer("https://evil.example.com")
			},
		},
		{
			name: "other account",
			mutate: func(b *jwt.Builder) *jwt.Builder {
				return b.Claim("email", "intruder@example.com")
			},
			wantErr: ErrNotOwner,
		},
		{
			name: "unverified email",
			mutate: func(b *jwt.Builder) *jwt.Builder {
				return b.Claim("email_verified", false)
			},
			wantErr: ErrEmailNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := v.Verify(context.Background(), ti.sign(t, tt.mutate))
			if err == nil {
				t.Fatal("Verify() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifier_Garbage(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	if _, err := ti.verifier().Verify(context.Background(), "not.a.token"); err == nil {
		t.Error("Verify() expected error for garbage token")
	}
}

func TestVerifier_StringEmailVerified(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	token := ti.sign(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Claim("email_verified", "true").Claim("email", "OWNER@example.com")
	})
	if _, err := ti.verifier().Verify(context.Background(), token); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestJWKSManager_Caches(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	m := NewJWKSManager(ti.server.Client())

	for i := 0; i < 3; i++ {
		if _, err := m.GetJWKS(context.Background(), ti.server.URL); err != nil {
			t.Fatalf("GetJWKS() error = %v", err)
		}
	}
	if got := ti.fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}

	m.Invalidate(ti.server.URL)
	if _, err := m.GetJWKS(context.Background(), ti.server.URL); err != nil {
		t.Fatalf("GetJWKS() error = %v", err)
	}
	if got := ti.fetches.Load(); got != 2 {
		t.Errorf("fetches after invalidate = %d, want 2", got)
	}
}

func TestJWKSManager_BadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	if _, err := NewJWKSManager(srv.Client()).GetJWKS(context.Background(), srv.URL); err == nil {
		t.Error("GetJWKS() expected error for 503")
	}
}
