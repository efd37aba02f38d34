// Package upstream classifies failures from the recognition providers
// (Cloud Vision, Cloud Speech, OpenAI) so callers can decide whether and
// when to retry.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"google.golang.org/api/googleapi"
)

var (
	// ErrRateLimited indicates the provider rate limit was exceeded
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded indicates the provider quota was exhausted
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// APIError represents an error returned by a provider API
type APIError struct {
	Provider    string
	Message     string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool // quota exhaustion, as opposed to a transient rate limit
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d, code %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
}

// Is lets errors.Is match ErrRateLimited and ErrQuotaExceeded
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.IsPermanent
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests && !e.IsPermanent
	}
	return false
}

// FromGoogle converts a googleapi error into an APIError; other errors are returned unchanged
func FromGoogle(provider string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	apiErr := &APIError{
		Provider:   provider,
		Message:    gerr.Message,
		StatusCode: gerr.Code,
	}
	for _, item := range gerr.Errors {
		if apiErr.Code == "" {
			apiErr.Code = item.Reason
		}
		if strings.Contains(strings.ToLower(item.Reason), "quota") && item.Reason != "rateLimitExceeded" {
			apiErr.IsPermanent = gerr.Code == http.StatusForbidden
		}
	}
	if gerr.Code == http.StatusTooManyRequests {
		apiErr.RetryAfter = retryAfter(gerr.Header)
	}
	return apiErr
}

// FromOpenAI converts an openai-go error into an APIError; other errors are returned unchanged
func FromOpenAI(err error) error {
	var oerr *openai.Error
	if !errors.As(err, &oerr) {
		return err
	}
	apiErr := &APIError{
		Provider:    "openai",
		Message:     oerr.Message,
		Code:        oerr.Code,
		StatusCode:  oerr.StatusCode,
		IsPermanent: oerr.Code == "insufficient_quota",
	}
	if oerr.Response != nil && oerr.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = retryAfter(oerr.Response.Header)
	}
	return apiErr
}

func retryAfter(h http.Header) *time.Duration {
	if h == nil {
		return nil
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return nil
	}
	d := time.Duration(secs) * time.Second
	return &d
}

// IsRateLimitError checks if an error is a transient rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "billing")
}

// IsRetryable reports whether a later attempt could succeed
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests ||
			apiErr.StatusCode >= http.StatusInternalServerError ||
			apiErr.IsPermanent
	}
	// Transport failures carry no status; assume transient
	return true
}

// GetRetryDelay calculates the delay before retrying based on error type
func GetRetryDelay(err error, attempt int) time.Duration {
	// Shift is clamped to [0, 10] so the multiplication cannot overflow
	var shift uint
	switch {
	case attempt <= 0:
		shift = 0
	case attempt > 10:
		shift = 10
	default:
		shift = uint(attempt)
	}

	if IsQuotaError(err) {
		delay := time.Hour * time.Duration(1<<shift)
		if delay > 24*time.Hour {
			delay = 24 * time.Hour
		}
		return delay
	}

	if IsRateLimitError(err) {
		delay := 30 * time.Second * time.Duration(1<<shift)
		if delay > 15*time.Minute {
			delay = 15 * time.Minute
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter != nil && *apiErr.RetryAfter > delay {
			delay = *apiErr.RetryAfter
		}
		return delay
	}

	delay := 5 * time.Second * time.Duration(1<<shift)
	if delay > 5*time.Minute {
		delay = 5 * time.Minute
	}
	return delay
}
