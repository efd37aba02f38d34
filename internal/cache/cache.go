// Package cache holds asynchronous scan state: the submitted media while a
// job is queued and the ScanResult the worker produces.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/benvon/bakatracker/internal/models"
)

// DefaultTTL is how long scan results and media are kept.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned when a scan id is unknown or has expired.
var ErrNotFound = errors.New("scan not found")

// Media is the raw content submitted for a scan.
type Media struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"`
}

// ScanStore persists scan results and their pending media.
type ScanStore interface {
	SaveResult(ctx context.Context, result *models.ScanResult) error
	GetResult(ctx context.Context, id string) (*models.ScanResult, error)
	SaveMedia(ctx context.Context, id string, media *Media) error
	GetMedia(ctx context.Context, id string) (*Media, error)
	DeleteMedia(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
