package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtrans/internal/cache"
	"github.com/mgpai22/subtrans/internal/config"
	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/mgpai22/subtrans/internal/pipeline"
	"github.com/mgpai22/subtrans/internal/translate"
)

// replaced in tests
var newBackend = translate.Factory

func newTranslateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [subtitle_file] [target_language]",
		Short: "Translate an SRT subtitle file using AI",
		Long: `Translate an SRT subtitle file to another language using AI.

Cue numbering and timing are kept exactly; only the text is translated.
The output is written only when every cue has been translated.

Settings come from the config file (see 'subtrans config init'); flags
override it.

Examples:
  subtrans translate movie.srt -t French
  subtrans translate movie.srt japanese --provider openai
  subtrans translate movie.srt -t de --concurrency 4 --cache
  subtrans translate movie.srt -t es --stdout > movie.es.srt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runTranslate,
	}

	cmd.Flags().
		StringP("target", "t", "", "Target language (name or code, e.g. French or fr)")
	cmd.Flags().
		StringP("input-language", "l", "", "Language of the source subtitles (optional)")
	cmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	cmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	cmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	cmd.Flags().
		String("prompt", "", "Extra instructions for the translator")
	cmd.Flags().
		Int("token-budget", 0, "Estimated tokens per batch (default 700)")
	cmd.Flags().
		Int("concurrency", 0, "Number of batches translated in parallel (default 1)")
	cmd.Flags().
		Int("max-attempts", 0, "Attempts per batch before giving up (default 3)")
	cmd.Flags().
		Bool("cache", false, "Reuse and store translations in the local cache")
	cmd.Flags().
		Bool("stdout", false, "Print the translated subtitles instead of writing a file")

	return cmd
}

func runTranslate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyTranslateFlags(cmd, args, cfg); err != nil {
		return err
	}
	if err := cfg.ValidateForTranslation(); err != nil {
		return err
	}
	if err := configureLogger(cmd, cfg); err != nil {
		return err
	}

	tc := cfg.Translation
	if tc.InputLanguage != "" &&
		strings.EqualFold(tc.InputLanguage, tc.TargetLanguage) {
		return &config.ConfigurationError{
			Key: "translation.target_language",
			Reason: fmt.Sprintf(
				"input language %q and target language %q cannot be the same",
				tc.InputLanguage,
				tc.TargetLanguage,
			),
		}
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if toStdout, _ := cmd.Flags().GetBool("stdout"); toStdout {
		outputPath = pipeline.StdoutPath
	}

	logger.Infow("Starting subtitle translation",
		"input", inputPath,
		"output", outputPath,
		"provider", tc.Provider,
		"model", tc.Model,
		"target_language", tc.TargetLanguage,
		"input_language", tc.InputLanguage,
	)

	backend, err := newBackend(
		ctx,
		translate.Provider(tc.Provider),
		cfg.APIKey(),
		tc.Model,
	)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	client, err := translate.NewClient(
		backend,
		translate.Options{
			InputLanguage:  tc.InputLanguage,
			TargetLanguage: tc.TargetLanguage,
			Prompt:         tc.Prompt,
		},
		translate.WithMaxAttempts(tc.MaxAttempts),
		translate.WithBackoff(tc.RetryBaseDelay(), tc.RetryMaxDelay()),
		translate.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	p := pipeline.New(client, pipeline.Options{
		TargetLanguage: tc.TargetLanguage,
		TokenBudget:    tc.TokenBudget,
		Concurrency:    tc.Concurrency,
		CacheNamespace: cacheNamespace(tc.Provider, tc.Model, backend),
	}, logger)

	if cfg.Cache.Enabled {
		store := openCache(cfg.Cache.Path, logger)
		if store != nil {
			defer store.Close()
			p.WithCache(store)
		}
	}

	out, report, err := p.TranslateFile(ctx, inputPath, outputPath)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	if report.Output == pipeline.StdoutPath {
		fmt.Fprint(stdout, out)
		return nil
	}

	absOutput, _ := filepath.Abs(report.Output)
	fmt.Fprintf(stdout, "Translation completed and saved to %s\n", absOutput)
	printSummary(stdout, report, tc.TargetLanguage)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if path != "" && !exists {
		return nil, &config.ConfigurationError{
			Key:    resolved,
			Reason: "config file not found",
		}
	}
	return cfg, nil
}

// copies explicitly set flags over the loaded configuration
func applyTranslateFlags(
	cmd *cobra.Command,
	args []string,
	cfg *config.Config,
) error {
	flags := cmd.Flags()
	tc := &cfg.Translation

	if len(args) > 1 {
		target := strings.TrimSpace(args[1])
		if flags.Changed("target") {
			flagTarget, _ := flags.GetString("target")
			if !strings.EqualFold(strings.TrimSpace(flagTarget), target) {
				return fmt.Errorf(
					"target language given twice: %q and --target %q",
					target,
					flagTarget,
				)
			}
		}
		tc.TargetLanguage = target
	}

	stringFlags := map[string]*string{
		"target":         &tc.TargetLanguage,
		"input-language": &tc.InputLanguage,
		"provider":       &tc.Provider,
		"model":          &tc.Model,
		"prompt":         &tc.Prompt,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			value, _ := flags.GetString(name)
			*dst = strings.TrimSpace(value)
		}
	}
	tc.Provider = strings.ToLower(tc.Provider)

	intFlags := map[string]*int{
		"token-budget": &tc.TokenBudget,
		"concurrency":  &tc.Concurrency,
		"max-attempts": &tc.MaxAttempts,
	}
	for name, dst := range intFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	if flags.Changed("cache") {
		cfg.Cache.Enabled, _ = flags.GetBool("cache")
	}

	if flags.Changed("api-key") {
		key, _ := flags.GetString("api-key")
		key = strings.TrimSpace(key)
		switch translate.Provider(tc.Provider) {
		case translate.ProviderGemini:
			cfg.Credentials.GeminiAPIKey = key
		case translate.ProviderOpenAI:
			cfg.Credentials.OpenAIAPIKey = key
		case translate.ProviderAnthropic:
			cfg.Credentials.AnthropicAPIKey = key
		}
	}

	return nil
}

// provider/model, so cached text from one model is never served for another
func cacheNamespace(
	provider, model string,
	backend translate.Backend,
) string {
	if model == "" {
		if m, ok := backend.(interface{ Model() string }); ok {
			model = m.Model()
		}
	}
	return provider + "/" + model
}

// a cache that cannot be opened only disables caching
func openCache(path string, log *logging.Logger) *cache.Store {
	store, err := cache.Open(path)
	if err != nil {
		log.Warnw("Translation cache unavailable, continuing without it",
			"path", path,
			"error", err,
		)
		return nil
	}
	log.Debugw("Using translation cache", "path", store.Path())
	return store
}

func isTerminalWriter(w any) bool {
	f, ok := w.(*os.File)
	return ok && logging.IsTerminal(f)
}
