package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/benvon/bakatracker/internal/voice"
	"github.com/spf13/cobra"
)

// NewVoiceCmd creates the voice command
func NewVoiceCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "voice <text>",
		Short: "Interpret a spoken command",
		Long:  "Classify a transcript as a habit or a task and print the interpretation as JSON.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("text is required")
			}
			ref, err := referenceTime(date, time.Now())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), voice.Analyze(text, ref))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Reference date (YYYY-MM-DD), defaults to today")
	return cmd
}
