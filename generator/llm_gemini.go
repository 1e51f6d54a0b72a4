package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultGeminiBaseURL    = "https://generativelanguage.googleapis.com"
	defaultGeminiTextModel  = "gemini-2.5-flash"
	defaultGeminiImageModel = "imagen-3.0-generate-002"
	defaultGeminiTimeout    = 120 * time.Second
)

// newGeminiREST builds the resty client shared by the Gemini text and Imagen clients.
func newGeminiREST(cfg *LLMSettings) (*resty.Client, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; set API_KEY")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGeminiTimeout
	}
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey), nil
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type geminiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiLLM implements TextClient on the Gemini generateContent REST endpoint.
type GeminiLLM struct {
	Model string
	rest  *resty.Client
}

func NewGeminiLLMFromConfig(cfg *LLMSettings) (*GeminiLLM, error) {
	rest, err := newGeminiREST(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.TextModel
	if model == "" {
		model = defaultGeminiTextModel
	}
	return &GeminiLLM{Model: model, rest: rest}, nil
}

func (g *GeminiLLM) GenerateJSON(ctx context.Context, prompt Prompt, schema Schema) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt.User}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   geminiSchema(schema.Root),
		},
	}
	if prompt.System != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: prompt.System}}}
	}

	var out geminiResponse
	var apiErr geminiError
	resp, err := g.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1beta/models/" + g.Model + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		return "", restError("gemini", resp, &apiErr)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", out.PromptFeedback.BlockReason)
	}

	for _, c := range out.Candidates {
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", errors.New("gemini: no text in response")
}

func restError(service string, resp *resty.Response, apiErr *geminiError) error {
	if apiErr != nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		return fmt.Errorf("%s api error [%d]: %s", service, resp.StatusCode(), apiErr.Error.Message)
	}
	return fmt.Errorf("%s api error [%d]: %s", service, resp.StatusCode(), resp.String())
}

// geminiSchema converts a JSON Schema document to the OpenAPI subset Gemini
// accepts: upper-case type names, no additionalProperties.
func geminiSchema(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch k {
		case "additionalProperties":
			continue
		case "type":
			if s, ok := v.(string); ok {
				v = strings.ToUpper(s)
			}
		case "properties":
			if props, ok := v.(map[string]any); ok {
				conv := make(map[string]any, len(props))
				for name, sub := range props {
					if m, ok := sub.(map[string]any); ok {
						conv[name] = geminiSchema(m)
					} else {
						conv[name] = sub
					}
				}
				v = conv
			}
		case "items":
			if m, ok := v.(map[string]any); ok {
				v = geminiSchema(m)
			}
		}
		out[k] = v
	}
	return out
}
