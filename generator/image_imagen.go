package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ImagenImages implements ImageClient on the Imagen predict REST endpoint.
type ImagenImages struct {
	Model string
	rest  *resty.Client
}

func NewImagenImagesFromConfig(cfg *LLMSettings) (*ImagenImages, error) {
	rest, err := newGeminiREST(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.ImageModel
	if model == "" {
		model = defaultGeminiImageModel
	}
	return &ImagenImages{Model: model, rest: rest}, nil
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters struct {
		SampleCount int    `json:"sampleCount"`
		AspectRatio string `json:"aspectRatio"`
	} `json:"parameters"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

func (m *ImagenImages) GenerateImage(ctx context.Context, prompt string, ratio AspectRatio) (Image, error) {
	req := imagenRequest{Instances: []imagenInstance{{Prompt: prompt}}}
	req.Parameters.SampleCount = 1
	req.Parameters.AspectRatio = string(ratio)

	var out imagenResponse
	var apiErr geminiError
	resp, err := m.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1beta/models/" + m.Model + ":predict")
	if err != nil {
		return Image{}, fmt.Errorf("imagen request failed: %w", err)
	}
	if resp.IsError() {
		return Image{}, restError("imagen", resp, &apiErr)
	}

	for _, pred := range out.Predictions {
		if pred.BytesBase64Encoded == "" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(pred.BytesBase64Encoded)
		if err != nil {
			return Image{}, fmt.Errorf("imagen: decode image: %w", err)
		}
		mime := pred.MimeType
		if mime == "" {
			mime = "image/png"
		}
		return Image{Data: raw, MimeType: mime}, nil
	}
	// Imagen 在安全过滤命中时返回空 predictions。
	return Image{}, errors.New("imagen: no image returned")
}
