package main

import (
	"fmt"
	"os"

	"github.com/benvon/bakatracker/cmd/trackerctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Command line tool for BakaTracker",
		Long:          "Extract events from text, scan images and audio, and manage tracker storage and settings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log to stderr at debug level")

	env := commands.NewEnv(&debug)
	rootCmd.AddCommand(commands.NewExtractCmd())
	rootCmd.AddCommand(commands.NewVoiceCmd())
	rootCmd.AddCommand(commands.NewScanCmd(env))
	rootCmd.AddCommand(commands.NewTranscribeCmd(env))
	rootCmd.AddCommand(commands.NewSheetsCmd(env))
	rootCmd.AddCommand(commands.NewSettingsCmd(env))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
