package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benvon/bakatracker/internal/services/scan"
	"github.com/benvon/bakatracker/internal/services/speech"
	"github.com/spf13/cobra"
)

const scanTimeout = 90 * time.Second

// NewScanCmd creates the scan command
func NewScanCmd(env *Env) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Recognise text in an image and extract events",
		Long:  "Run OCR on an image file with Cloud Vision and print the recognised text and candidate events as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			ref, err := referenceTime(date, time.Now())
			if err != nil {
				return err
			}

			cfg, log, err := env.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
			defer cancel()

			out, err := scan.NewFromConfig(ctx, cfg, nil, log).Image(ctx, data, ref)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Reference date (YYYY-MM-DD), defaults to today")
	return cmd
}

// NewTranscribeCmd creates the transcribe command
func NewTranscribeCmd(env *Env) *cobra.Command {
	var date, mimeType, provider string

	cmd := &cobra.Command{
		Use:   "transcribe <audio>",
		Short: "Transcribe an audio clip and extract events",
		Long:  "Transcribe an audio file with the configured speech provider and print the transcript and candidate events as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if mimeType == "" {
				mimeType = audioMIMEType(args[0], data)
			}
			ref, err := referenceTime(date, time.Now())
			if err != nil {
				return err
			}

			cfg, log, err := env.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
			defer cancel()

			audio := speech.Audio{Data: data, MIMEType: mimeType}
			out, err := scan.NewFromConfig(ctx, cfg, nil, log).Audio(ctx, audio, provider, ref)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Reference date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&mimeType, "mime", "", "Audio MIME type, detected from the file when empty")
	cmd.Flags().StringVar(&provider, "provider", "", "Speech provider, defaults to SPEECH_PROVIDER")
	return cmd
}

var audioExtensions = map[string]string{
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

// audioMIMEType guesses from the extension, then from the content
func audioMIMEType(path string, data []byte) string {
	if t, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return http.DetectContentType(data)
}
