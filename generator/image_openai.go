package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIImages implements ImageClient on the openai-go Images API.
type OpenAIImages struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAIImagesFromConfig(cfg *LLMSettings) (*OpenAIImages, error) {
	opts, err := openAIOptions(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.ImageModel
	if model == "" {
		model = defaultOpenAIImageModel
	}
	return &OpenAIImages{Model: model, Opts: opts}, nil
}

// openAISize maps an aspect ratio to the closest size the Images API accepts.
func openAISize(ratio AspectRatio) string {
	switch ratio {
	case Ratio16x9, Ratio4x3:
		return "1536x1024"
	default:
		return "1024x1024"
	}
}

func (o *OpenAIImages) GenerateImage(ctx context.Context, prompt string, ratio AspectRatio) (Image, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(o.Model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(openAISize(ratio)),
	}
	// gpt-image-1 always answers with base64 and rejects response_format.
	if o.Model != defaultOpenAIImageModel {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	client := openai.NewClient(o.Opts...)
	resp, err := client.Images.Generate(ctx, params)
	if err != nil {
		return Image{}, err
	}
	if len(resp.Data) == 0 {
		return Image{}, errors.New("openai: no image returned")
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Image{}, fmt.Errorf("openai: decode image: %w", err)
	}
	return Image{Data: raw, MimeType: "image/png"}, nil
}
