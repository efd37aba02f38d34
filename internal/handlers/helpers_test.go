package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/bakatracker/internal/storage"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		data     any
		validate func(*testing.T, *http.Response)
	}{
		{
			name:   "simple object",
			status: http.StatusOK,
			data:   map[string]string{"message": "hello"},
			validate: func(t *testing.T, resp *http.Response) {
				if resp.StatusCode != http.StatusOK {
					t.Errorf("Expected status 200, got %d", resp.StatusCode)
				}

				contentType := resp.Header.Get("Content-Type")
				if contentType != "application/json" {
					t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
				}

				var body map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if success, ok := body["success"].(bool); !ok || !success {
					t.Error("Expected success to be true")
				}

				if _, ok := body["timestamp"].(string); !ok {
					t.Error("Expected timestamp to be present")
				}

				if data, ok := body["data"].(map[string]any); !ok {
					t.Error("Expected data to be present")
				} else {
					if msg, ok := data["message"].(string); !ok || msg != "hello" {
						t.Errorf("Expected message 'hello', got %v", data["message"])
					}
				}
			},
		},
		{
			name:   "nil data",
			status: http.StatusCreated,
			data:   nil,
			validate: func(t *testing.T, resp *http.Response) {
				if resp.StatusCode != http.StatusCreated {
					t.Errorf("Expected status 201, got %d", resp.StatusCode)
				}

				var body map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if body["data"] != nil {
					t.Error("Expected data to be nil")
				}
			},
		},
		{
			name:   "array data",
			status: http.StatusOK,
			data:   []string{"a", "b", "c"},
			validate: func(t *testing.T, resp *http.Response) {
				var body map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if data, ok := body["data"].([]any); !ok {
					t.Error("Expected data to be an array")
				} else {
					if len(data) != 3 {
						t.Errorf("Expected array length 3, got %d", len(data))
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondJSON(w, tt.status, tt.data)

			resp := w.Result()
			defer resp.Body.Close()

			if tt.validate != nil {
				tt.validate(t, resp)
			}
		})
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		errorType string
		message   string
		validate  func(*testing.T, *http.Response)
	}{
		{
			name:      "bad request",
			status:    http.StatusBadRequest,
			errorType: "Bad Request",
			message:   "Invalid input",
			validate: func(t *testing.T, resp *http.Response) {
				if resp.StatusCode != http.StatusBadRequest {
					t.Errorf("Expected status 400, got %d", resp.StatusCode)
				}

				contentType := resp.Header.Get("Content-Type")
				if contentType != "application/json" {
					t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
				}

				var body map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if success, ok := body["success"].(bool); !ok || success {
					t.Error("Expected success to be false")
				}

				if errorType, ok := body["error"].(string); !ok || errorType != "Bad Request" {
					t.Errorf("Expected error 'Bad Request', got '%v'", body["error"])
				}

				if msg, ok := body["message"].(string); !ok || msg != "Invalid input" {
					t.Errorf("Expected message 'Invalid input', got '%v'", body["message"])
				}

				if _, ok := body["timestamp"].(string); !ok {
					t.Error("Expected timestamp to be present")
				}
			},
		},
		{
			name:      "internal server error",
			status:    http.StatusInternalServerError,
			errorType: "Internal Server Error",
			message:   "Database connection failed",
			validate: func(t *testing.T, resp *http.Response) {
				if resp.StatusCode != http.StatusInternalServerError {
					t.Errorf("Expected status 500, got %d", resp.StatusCode)
				}

				var body map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if errorType, ok := body["error"].(string); !ok || errorType != "Internal Server Error" {
					t.Errorf("Expected error 'Internal Server Error', got '%v'", body["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondJSONError(w, tt.status, tt.errorType, tt.message)

			resp := w.Result()
			defer resp.Body.Close()

			if tt.validate != nil {
				tt.validate(t, resp)
			}
		})
	}
}

// Test helper to verify timestamp is valid RFC3339
func TestRespondJSONTimestamp(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusOK, "test")

	resp := w.Result()
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	timestamp, ok := body["timestamp"].(string)
	if !ok {
		t.Fatal("Timestamp not found in response")
	}

	if _, err := time.Parse(time.RFC3339, timestamp); err != nil {
		t.Errorf("Timestamp '%s' is not valid RFC3339: %v", timestamp, err)
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	t.Parallel()

	short := "task not found"
	if got := sanitizeErrorMessage(short); got != short {
		t.Errorf("Expected %q unchanged, got %q", short, got)
	}

	long := strings.Repeat("x", 250)
	got := sanitizeErrorMessage(long)
	if len(got) != maxErrorMessageLength+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected message truncated to %d chars plus ellipsis, got %d chars", maxErrorMessageLength, len(got))
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		limit      int64
		wantOK     bool
		wantStatus int
	}{
		{name: "valid", body: `{"title":"Buy milk","priority":"high"}`, wantOK: true},
		{name: "malformed", body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "missing required", body: `{"priority":"high"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown priority", body: `{"title":"Buy milk","priority":"urgent"}`, wantStatus: http.StatusBadRequest},
		{name: "bad date", body: `{"title":"Buy milk","due_date":"2024-02-30"}`, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"title":"` + strings.Repeat("a", 64) + `"}`, limit: 16, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(tt.body))
			if tt.limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, tt.limit)
			}

			var req CreateTaskRequest
			ok := decodeJSON(w, r, &req)
			if ok != tt.wantOK {
				t.Fatalf("decodeJSON() = %v, want %v (status %d, body %s)", ok, tt.wantOK, w.Code, w.Body.String())
			}
			if !tt.wantOK && w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRespondStoreError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: fmt.Errorf("task task_1: %w", storage.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "backend failure", err: errors.New("sheets: 500"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondStoreError(w, tt.err, "task")
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var body map[string]any
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if msg, _ := body["message"].(string); strings.Contains(msg, "sheets") {
				t.Errorf("Expected internal details to be hidden, got %q", msg)
			}
		})
	}
}
