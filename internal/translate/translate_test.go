package translate

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mgpai22/subtrans/internal/batch"
	"github.com/mgpai22/subtrans/internal/subtitle"
)

func TestFactoryReturnsGeminiBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := Factory(ctx, ProviderGemini, "fake-key", "")
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	gemini, ok := backend.(*GeminiBackend)
	if !ok {
		t.Fatalf("expected *GeminiBackend, got %T", backend)
	}
	if gemini.Model() != DefaultGeminiModel {
		t.Errorf("expected default model %q, got %q", DefaultGeminiModel, gemini.Model())
	}
}

func TestFactoryReturnsOpenAIBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := Factory(ctx, ProviderOpenAI, "fake-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	openaiBackend, ok := backend.(*OpenAIBackend)
	if !ok {
		t.Fatalf("expected *OpenAIBackend, got %T", backend)
	}
	if openaiBackend.Model() != "gpt-4o-mini" {
		t.Errorf("expected model override, got %q", openaiBackend.Model())
	}
}

func TestFactoryReturnsAnthropicBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := Factory(ctx, ProviderAnthropic, "fake-key", "")
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	if _, ok := backend.(*AnthropicBackend); !ok {
		t.Errorf("expected *AnthropicBackend, got %T", backend)
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	ctx := context.Background()
	for _, provider := range Providers() {
		if _, err := Factory(ctx, provider, "", ""); err == nil {
			t.Errorf("%s: expected error for missing API key", provider)
		}
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	_, err := Factory(ctx, Provider("unknown"), "fake-key", "")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestBuildPrompt(t *testing.T) {
	opts := Options{
		InputLanguage:  "English",
		TargetLanguage: "ja",
		Prompt:         "Use polite speech.",
	}

	items := []TranslationItem{
		{Index: 7, Text: "Hello world"},
		{Index: 8, Text: "Goodbye"},
	}

	prompt := BuildPrompt(opts, items)

	if !strings.Contains(prompt, "English subtitle texts") {
		t.Error("prompt should contain input language")
	}
	if !strings.Contains(prompt, "to Japanese") {
		t.Error("prompt should contain target language name")
	}
	if !strings.Contains(prompt, "Hello world") {
		t.Error("prompt should contain input text")
	}
	if !strings.Contains(prompt, `"index": 7`) {
		t.Error("prompt should contain cue index")
	}
	if !strings.Contains(prompt, "Additional instructions: Use polite speech.") {
		t.Error("prompt should contain extra instructions")
	}
}

func TestBuildPromptWithoutInputLanguage(t *testing.T) {
	opts := Options{TargetLanguage: "Spanish"}

	prompt := BuildPrompt(opts, []TranslationItem{{Index: 1, Text: "Hello"}})

	if strings.Contains(prompt, "English") {
		t.Error("prompt should not contain input language when not specified")
	}
	if !strings.Contains(prompt, "to Spanish") {
		t.Error("prompt should contain target language")
	}
	if strings.Contains(prompt, "Additional instructions") {
		t.Error("prompt should not contain empty extra instructions")
	}
}

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt(Options{TargetLanguage: "fr"})
	if !strings.Contains(prompt, "semantic translator") {
		t.Errorf("unexpected system prompt %q", prompt)
	}
	if !strings.Contains(prompt, "French") {
		t.Errorf("system prompt should name the target language, got %q", prompt)
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fr", "French"},
		{"ja", "Japanese"},
		{"de", "German"},
		{"French", "French"},
		{"Klingon", "Klingon"},
		{"  Brazilian Portuguese ", "Brazilian Portuguese"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := LanguageName(tt.in); got != tt.want {
				t.Errorf("LanguageName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Integration test: only runs if GEMINI_API_KEY is set
func TestGeminiBackendIntegration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set; skipping integration test")
	}
	runIntegration(t, ProviderGemini, apiKey)
}

// Integration test: only runs if OPENAI_API_KEY is set
func TestOpenAIBackendIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}
	runIntegration(t, ProviderOpenAI, apiKey)
}

// Integration test: only runs if ANTHROPIC_API_KEY is set
func TestAnthropicBackendIntegration(t *testing.T) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		t.Skip("ANTHROPIC_API_KEY not set; skipping integration test")
	}
	runIntegration(t, ProviderAnthropic, apiKey)
}

func runIntegration(t *testing.T, provider Provider, apiKey string) {
	t.Helper()

	ctx := context.Background()
	backend, err := Factory(ctx, provider, apiKey, "")
	if err != nil {
		t.Fatalf("Factory error: %v", err)
	}
	client, err := NewClient(backend, Options{TargetLanguage: "Spanish"})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	b := batch.Batch{
		Number: 1,
		Segments: []subtitle.Segment{
			{Index: 1, Text: "Hello"},
			{Index: 2, Text: "Goodbye"},
		},
	}

	results, err := client.TranslateBatch(ctx, b)
	if err != nil {
		t.Fatalf("TranslateBatch error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	for idx, text := range results {
		if text == "" {
			t.Errorf("result index %d has empty text", idx)
		}
	}
}
