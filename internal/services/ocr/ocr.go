// Package ocr turns image bytes into raw text using Google Cloud Vision.
package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/benvon/bakatracker/internal/services/upstream"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

const (
	featureTextDetection = "TEXT_DETECTION"
	// MaxResults bounds the text annotations requested per image
	MaxResults = 10
	// MaxImageBytes is the largest image Cloud Vision accepts inline
	MaxImageBytes = 20 << 20
)

// ErrEmptyImage is returned when no image bytes are supplied
var ErrEmptyImage = errors.New("image is empty")

// Recognizer extracts text from an image
type Recognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// VisionClient implements Recognizer with Cloud Vision TEXT_DETECTION
type VisionClient struct {
	svc    *vision.Service
	logger *zap.Logger
}

var _ Recognizer = (*VisionClient)(nil)

// NewVisionClient creates a Cloud Vision client. Extra options are passed
// to the service constructor, e.g. option.WithEndpoint in tests.
func NewVisionClient(ctx context.Context, httpClient *http.Client, logger *zap.Logger, opts ...option.ClientOption) (*VisionClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vision service: %w", err)
	}
	return &VisionClient{svc: svc, logger: logger}, nil
}

// RecognizeText returns the full text found in the image. The first text
// annotation holds the whole detected text; an image without text yields "".
func (c *VisionClient) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}
	if len(image) > MaxImageBytes {
		return "", fmt.Errorf("image is %d bytes, limit is %d", len(image), MaxImageBytes)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{
				Type:       featureTextDetection,
				MaxResults: MaxResults,
			}},
		}},
	}

	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("text detection failed: %w", upstream.FromGoogle("vision", err))
	}

	text, err := fullText(resp)
	if err != nil {
		return "", err
	}
	c.logger.Debug("text_detected",
		zap.Int("image_bytes", len(image)),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

func fullText(resp *vision.BatchAnnotateImagesResponse) (string, error) {
	if resp == nil || len(resp.Responses) == 0 {
		return "", nil
	}
	first := resp.Responses[0]
	if first.Error != nil && first.Error.Code != 0 {
		return "", fmt.Errorf("text detection failed: %w", &upstream.APIError{
			Provider:   "vision",
			Message:    first.Error.Message,
			StatusCode: http.StatusBadRequest,
		})
	}
	if len(first.TextAnnotations) == 0 {
		return "", nil
	}
	return first.TextAnnotations[0].Description, nil
}
