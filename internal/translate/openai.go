package translate

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultOpenAIModel = "gpt-5-mini"

// structured outputs accept a subset of JSON schema; these reflector flags
// keep the generated schema inside it
var translationResponseSchema = func() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&translationResponse{})
}()

// implements Backend using OpenAI Chat Completions
type OpenAIBackend struct {
	client openai.Client
	model  string
}

func NewOpenAIBackend(
	ctx context.Context,
	apiKey string,
	model string,
) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIBackend{
		client: client,
		model:  model,
	}, nil
}

func (b *OpenAIBackend) Model() string {
	return b.model
}

func (b *OpenAIBackend) Complete(
	ctx context.Context,
	req Request,
) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	completion, err := b.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: messages,
			Model:    b.model,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
					JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:        "subtitle_translations",
						Description: openai.String("Translated subtitle cues"),
						Schema:      translationResponseSchema,
						Strict:      openai.Bool(true),
					},
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return "", fmt.Errorf("no text in OpenAI response")
	}
	return responseText, nil
}
