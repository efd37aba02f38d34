package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/benvon/bakatracker/internal/storage/backend"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
)

// NewSettingsCmd creates the settings command with list, get and set subcommands
func NewSettingsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage stored settings",
		Long: "List or update the key/value settings kept in the configured storage backend. " +
			"The server reloads " + models.SettingCORSOrigins + " and " + models.SettingRateLimit + " every minute.",
	}
	cmd.AddCommand(newSettingsListCmd(env))
	cmd.AddCommand(newSettingsGetCmd(env))
	cmd.AddCommand(newSettingsSetCmd(env))
	return cmd
}

// withStore opens the configured backend for the duration of fn
func withStore(cmd *cobra.Command, env *Env, fn func(store storage.Store) error) error {
	cfg, log, err := env.Load()
	if err != nil {
		return err
	}
	store, err := backend.Open(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close storage: %v\n", err)
		}
	}()
	return fn(store)
}

func newSettingsListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, env, func(store storage.Store) error {
				settings, err := store.Settings().List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list settings: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(settings) == 0 {
					fmt.Fprintln(out, "No settings stored")
					return nil
				}
				for _, s := range settings {
					fmt.Fprintf(out, "%s=%s\n", s.Key, s.Value)
				}
				return nil
			})
		},
	}
}

func newSettingsGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, env, func(store storage.Store) error {
				value, err := store.Settings().Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to get %s: %w", args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}
}

func newSettingsSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or update a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			if err := validateSetting(key, value); err != nil {
				return err
			}
			return withStore(cmd, env, func(store storage.Store) error {
				if err := store.Settings().Set(cmd.Context(), key, value); err != nil {
					return fmt.Errorf("failed to set %s: %w", key, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", key)
				return nil
			})
		},
	}
}

func validateSetting(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if key == models.SettingRateLimit {
		if _, err := limiter.NewRateFromFormatted(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", models.SettingRateLimit, value, err)
		}
	}
	return nil
}
