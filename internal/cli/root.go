package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtrans/internal/config"
	"github.com/mgpai22/subtrans/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "subtrans",
		Short: "AI-powered subtitle translator",
		Long: `Subtrans translates SRT subtitle files with large language models.

Cues are grouped into batches that fit a token budget, translated by
Gemini, OpenAI or Anthropic models, and written back with the original
numbering and timing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			return configureLogger(cmd, &cfg)
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().
		String("log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(newTranslateCommand())
	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func Execute() error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()
	return newRootCommand().ExecuteContext(ctx)
}

// builds the package logger from the config, -v and --log-format; logs go
// to stderr so stdout can carry subtitles
func configureLogger(cmd *cobra.Command, cfg *config.Config) error {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	format := cfg.Logging.Format
	if cmd.Flags().Changed("log-format") {
		format, _ = cmd.Flags().GetString("log-format")
	}

	out := cmd.ErrOrStderr()
	l, err := logging.New(logging.Options{
		Level:  level,
		Format: format,
		Output: out,
		Color:  isTerminalWriter(out),
	})
	if err != nil {
		return &config.ConfigurationError{Key: "logging", Reason: err.Error()}
	}
	logger = l
	return nil
}
