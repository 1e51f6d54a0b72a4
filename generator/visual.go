package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrImageGeneration is the only error GenerateImages surfaces to callers.
// Its message is shown to the user as is.
var ErrImageGeneration = errors.New("Failed to generate an image. Please try again.")

// Visualizer generates one image per post.
type Visualizer struct {
	images ImageClient
	logger *zap.Logger
}

func NewVisualizer(images ImageClient, logger *zap.Logger) (*Visualizer, error) {
	if images == nil {
		return nil, errors.New("image client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Visualizer{images: images, logger: logger}, nil
}

// GenerateImages starts every image request at once and waits for all of them.
// The returned references are data URIs in the same order as posts. If any
// request fails the remaining ones are cancelled and the whole batch fails.
func (v *Visualizer) GenerateImages(ctx context.Context, posts []PostContent) ([]string, error) {
	urls := make([]string, len(posts))
	g, gctx := errgroup.WithContext(ctx)

	for i := range posts {
		post := posts[i]
		g.Go(func() error {
			ratio := AspectRatioFor(post.Platform)
			start := time.Now()
			img, err := v.images.GenerateImage(gctx, StyledImagePrompt(post.ImagePrompt), ratio)
			if err == nil && len(img.Data) == 0 {
				err = errors.New("empty image payload")
			}
			if err != nil {
				status := "error"
				if errors.Is(err, context.Canceled) {
					// 被其它失败请求取消，不计为错误。
					status = "cancelled"
				}
				callDuration.WithLabelValues("image", status).Observe(time.Since(start).Seconds())
				return fmt.Errorf("%s image: %w", post.Platform, err)
			}
			callDuration.WithLabelValues("image", "ok").Observe(time.Since(start).Seconds())
			urls[i] = DataURI(img)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		v.logger.Error("image generation failed", zap.Error(err))
		return nil, ErrImageGeneration
	}
	return urls, nil
}

// DataURI encodes img as a directly renderable image reference.
func DataURI(img Image) string {
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
