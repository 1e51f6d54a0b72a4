package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// It answers with posts derived from the idea in the prompt, deliberately out
// of platform order.
type MockLLM struct{}

var (
	mockIdeaRe = regexp.MustCompile(`idea: ("(?:[^"\\]|\\.)*")`)
	mockToneRe = regexp.MustCompile(`Use a (\w+) tone`)
)

func (MockLLM) GenerateJSON(_ context.Context, prompt Prompt, _ Schema) (string, error) {
	idea := "our latest news"
	if m := mockIdeaRe.FindStringSubmatch(prompt.User); len(m) == 2 {
		if s, err := strconv.Unquote(m[1]); err == nil && s != "" {
			idea = s
		}
	}
	tone := "professional"
	if m := mockToneRe.FindStringSubmatch(prompt.User); len(m) == 2 {
		tone = m[1]
	}

	tweet := fmt.Sprintf("%s. Don't miss it - try it today! (%s)", idea, tone)
	if len([]rune(tweet)) > TwitterMaxChars {
		tweet = string([]rune(tweet)[:TwitterMaxChars])
	}
	tag := hashtag(idea)

	payload := map[string]any{
		"posts": []rawPost{
			{
				Platform:    string(Instagram),
				Text:        fmt.Sprintf("Stop scrolling: %s is here.\n\n#%s #NewLaunch #Inspiration", idea, tag),
				ImagePrompt: "A bright flat-lay scene presenting " + idea,
			},
			{
				Platform: string(LinkedIn),
				Text: fmt.Sprintf("I'm excited to share this: %s.\n\n"+
					"Over the past months we focused on what really matters to people and kept a %s voice throughout.\n\n"+
					"What would you like to see next?", idea, tone),
				ImagePrompt: "A modern office team celebrating " + idea,
			},
			{
				Platform:    string(Twitter),
				Text:        tweet,
				ImagePrompt: "A dynamic wide banner illustrating " + idea,
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func hashtag(s string) string {
	var sb strings.Builder
	for _, w := range strings.Fields(s) {
		w = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, w)
		if w == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	if sb.Len() == 0 {
		return "Update"
	}
	return sb.String()
}

// MockImages draws a flat placeholder in the requested aspect ratio.
type MockImages struct{}

var mockSizes = map[AspectRatio][2]int{
	Ratio1x1:  {64, 64},
	Ratio4x3:  {64, 48},
	Ratio16x9: {64, 36},
}

func (MockImages) GenerateImage(_ context.Context, prompt string, ratio AspectRatio) (Image, error) {
	size, ok := mockSizes[ratio]
	if !ok {
		return Image{}, fmt.Errorf("mock: unsupported aspect ratio %q", ratio)
	}
	dc := gg.NewContext(size[0], size[1])
	dc.SetHexColor(mockColor(prompt))
	dc.Clear()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return Image{}, err
	}
	return Image{Data: buf.Bytes(), MimeType: "image/png"}, nil
}

func mockColor(prompt string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return fmt.Sprintf("#%06x", h.Sum32()&0xffffff)
}
