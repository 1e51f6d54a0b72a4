package generator

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrContentGeneration is the only error GeneratePosts surfaces to callers.
// Its message is shown to the user as is.
var ErrContentGeneration = errors.New("Failed to generate content. Please try again.")

// Agent 负责根据 idea 和 tone 生成三个平台的文案。
type Agent struct {
	llm    TextClient
	logger *zap.Logger
}

func NewAgent(llm TextClient, logger *zap.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("text client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{llm: llm, logger: logger}, nil
}

// GeneratePosts makes one blocking call to the text service and returns exactly
// one post per platform in the fixed platform order.
func (a *Agent) GeneratePosts(ctx context.Context, idea string, tone Tone) ([]PostContent, error) {
	log := a.logger.With(zap.String("tone", string(tone)))

	start := time.Now()
	raw, err := a.llm.GenerateJSON(ctx, BuildPostsPrompt(idea, tone), PostsSchema())
	if err != nil {
		callDuration.WithLabelValues("text", "error").Observe(time.Since(start).Seconds())
		log.Error("text generation call failed", zap.Error(err))
		return nil, ErrContentGeneration
	}
	callDuration.WithLabelValues("text", "ok").Observe(time.Since(start).Seconds())

	posts, err := ParsePosts(raw)
	if err != nil {
		log.Error("text generation returned an invalid payload", zap.Error(err), zap.String("raw", raw))
		return nil, ErrContentGeneration
	}

	for _, p := range posts {
		if p.Platform == Twitter && utf8.RuneCountInString(p.Text) > TwitterMaxChars {
			log.Warn("twitter post exceeds character budget", zap.Int("chars", utf8.RuneCountInString(p.Text)))
		}
	}
	log.Info("posts generated", zap.Int("count", len(posts)))
	return posts, nil
}
