package commands

import (
	"fmt"

	"github.com/benvon/bakatracker/internal/google"
	"github.com/benvon/bakatracker/internal/sheets"
	"github.com/spf13/cobra"
)

// NewSheetsCmd creates the sheets command with init and check subcommands
func NewSheetsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Manage the Google Sheets backend",
		Long:  "Create the tracker spreadsheet or check that the configured one has the expected layout.",
	}
	cmd.AddCommand(newSheetsInitCmd(env))
	cmd.AddCommand(newSheetsCheckCmd(env))
	return cmd
}

func newSheetsInitCmd(env *Env) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new tracker spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := env.Load()
			if err != nil {
				return err
			}
			if title == "" {
				title = cfg.SpreadsheetTitle
			}

			ctx := cmd.Context()
			httpClient, err := google.HTTPClient(ctx, cfg.GoogleCredentialsFile, google.ScopeSpreadsheets)
			if err != nil {
				return err
			}
			api, err := sheets.NewClient(ctx, httpClient)
			if err != nil {
				return err
			}
			session, err := sheets.Create(ctx, api, title, log)
			if err != nil {
				return fmt.Errorf("failed to create spreadsheet: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created spreadsheet %q\n", title)
			fmt.Fprintf(out, "  SPREADSHEET_ID=%s\n", session.SpreadsheetID())
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Spreadsheet title, defaults to SPREADSHEET_TITLE")
	return cmd
}

func newSheetsCheckCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the configured spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := env.Load()
			if err != nil {
				return err
			}
			if cfg.SpreadsheetID == "" {
				return fmt.Errorf("SPREADSHEET_ID is not set, run 'sheets init' first")
			}

			ctx := cmd.Context()
			httpClient, err := google.HTTPClient(ctx, cfg.GoogleCredentialsFile, google.ScopeSpreadsheets)
			if err != nil {
				return err
			}
			api, err := sheets.NewClient(ctx, httpClient)
			if err != nil {
				return err
			}
			if _, err := sheets.Open(ctx, api, cfg.SpreadsheetID, log); err != nil {
				return fmt.Errorf("spreadsheet check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Spreadsheet %s is ready\n", cfg.SpreadsheetID)
			return nil
		},
	}
}
