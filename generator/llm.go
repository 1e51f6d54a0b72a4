package generator

import (
	"context"
	"time"
)

// TextClient 抽象结构化文本生成服务，便于替换/Mock。
// GenerateJSON returns the raw JSON text produced under the given schema.
type TextClient interface {
	GenerateJSON(ctx context.Context, prompt Prompt, schema Schema) (string, error)
}

// ImageClient 抽象图片生成服务。
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string, ratio AspectRatio) (Image, error)
}

// Image is one generated raster.
type Image struct {
	Data     []byte
	MimeType string
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider   string
	TextModel  string
	ImageModel string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
}
