package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// single cue text sent to the model
type TranslationItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated cue text returned by the model
type TranslationResult struct {
	Index int    `json:"index" jsonschema:"description=cue index copied from the input"`
	Text  string `json:"text" jsonschema:"description=translated subtitle text"`
}

// object form of the response, used for providers that enforce a schema
type translationResponse struct {
	Translations []TranslationResult `json:"translations"`
}

// one request to a model backend
type Request struct {
	System string
	User   string
}

// Backend sends a single prompt to a language model and returns the raw text
// of its answer. Implementations do not retry; Client owns the retry policy.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// known providers in display order
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
}

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Prompt         string // extra instructions appended to the prompt
}

// creates the Backend for a provider. An empty model selects the provider's
// default.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	model string,
) (Backend, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiBackend(ctx, apiKey, model)
	case ProviderOpenAI:
		return NewOpenAIBackend(ctx, apiKey, model)
	case ProviderAnthropic:
		return NewAnthropicBackend(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// SystemPrompt sets up the model as a subtitle translator.
func SystemPrompt(opts Options) string {
	return fmt.Sprintf(
		"You are an experienced semantic translator, specialized in "+
			"creating subtitles in %s. You translate meaning, not words, "+
			"and you always answer with valid JSON only.",
		LanguageName(opts.TargetLanguage),
	)
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []TranslationItem) string {
	var sb strings.Builder

	target := LanguageName(opts.TargetLanguage)
	if opts.InputLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s subtitle texts to %s.\n\n",
			LanguageName(opts.InputLanguage),
			target,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following subtitle texts to %s.\n\n",
			target,
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Translate ONLY the text content, preserving the meaning.\n",
	)
	sb.WriteString(
		"2. Keep any formatting tags (like <i>, <b>, {\\an8}) unchanged.\n",
	)
	sb.WriteString(
		"3. Keep line breaks inside a text, but never add empty lines.\n",
	)
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString(
		"6. The 'index' values must match the input indices exactly, " +
			"one object per input item, none merged or skipped.\n",
	)
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
