package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/benvon/bakatracker/internal/extract"
	"github.com/spf13/cobra"
)

// NewExtractCmd creates the extract command
func NewExtractCmd() *cobra.Command {
	var date string
	var maxCandidates int

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract candidate events from text",
		Long:  "Read text from a file, or stdin when no file is given, and print the candidate events as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ref, err := referenceTime(date, time.Now())
			if err != nil {
				return err
			}
			extractor := extract.New(extract.WithMaxCandidates(maxCandidates))
			return writeJSON(cmd.OutOrStdout(), extractor.ExtractAt(string(text), ref))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Reference date (YYYY-MM-DD), defaults to today")
	cmd.Flags().IntVar(&maxCandidates, "max", extract.DefaultMaxCandidates, "Maximum number of candidates")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}
