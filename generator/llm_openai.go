package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAITextModel  = "gpt-4o-mini"
	defaultOpenAIImageModel = "gpt-image-1"
)

// OpenAILLM implements TextClient using the official openai-go SDK (chat
// completions with a strict JSON schema response format).
type OpenAILLM struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	opts, err := openAIOptions(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.TextModel
	if model == "" {
		model = defaultOpenAITextModel
	}
	return &OpenAILLM{Model: model, Opts: opts}, nil
}

func (o *OpenAILLM) GenerateJSON(ctx context.Context, prompt Prompt, schema Schema) (string, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schema.Name,
					Description: openai.String(schema.Description),
					Schema:      schema.Root,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return "", errors.New("openai: model refused: " + msg.Refusal)
	}
	return msg.Content, nil
}

func openAIOptions(cfg *LLMSettings) ([]option.RequestOption, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set API_KEY")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	// 不做重试，失败直接交给上层。
	opts = append(opts, option.WithMaxRetries(0))
	return opts, nil
}
