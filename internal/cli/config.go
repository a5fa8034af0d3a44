package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtrans/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create a sample configuration file",
		Long: `Write a commented sample configuration file.

Without a path the file goes to ~/.config/subtrans/config.toml.
An existing file is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				target string
				err    error
			)
			if len(args) == 1 {
				target, err = config.ExpandPath(args[0])
			} else {
				target, err = config.DefaultConfigPath()
			}
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set target_language and an API key (or export GEMINI_API_KEY).")
			return nil
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !exists {
				fmt.Fprintf(out, "No configuration file at %s, using defaults\n", resolved)
			} else {
				fmt.Fprintf(out, "Configuration valid: %s\n", resolved)
			}
			fmt.Fprintf(out, "  Provider: %s\n", cfg.Translation.Provider)
			if cfg.APIKey() == "" {
				fmt.Fprintf(out, "  API key: missing (set %s)\n", config.APIKeyEnv(cfg.Translation.Provider))
			} else {
				fmt.Fprintln(out, "  API key: set")
			}
			return nil
		},
	}
}
