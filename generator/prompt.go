package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
}

// Schema constrains the structured output of a TextClient.
type Schema struct {
	Name        string
	Description string
	// Root is a JSON Schema document for the whole response.
	Root map[string]any
}

// ImageStyleSuffix is appended to every image prompt. It does not depend on tone.
const ImageStyleSuffix = ", high quality, professional photography, vibrant colors, social media aesthetic, no text overlay"

const systemPrompt = "You are an experienced social media copywriter. " +
	"Respond only with JSON matching the requested schema, without markdown fences or commentary."

// BuildPostsPrompt 生成三平台文案的提示词。
func BuildPostsPrompt(idea string, tone Tone) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write social media posts about the following idea: %q.\n", strings.TrimSpace(idea)))
	sb.WriteString(fmt.Sprintf("Use a %s tone for every post.\n", strings.ToLower(string(tone))))
	sb.WriteString("Produce exactly one post for each platform below:\n")
	for _, prof := range Profiles() {
		sb.WriteString(fmt.Sprintf("- %s: %s.\n", prof.Platform, prof.Guidance))
	}
	sb.WriteString("For every post also write image_prompt: a vivid, concrete description of one illustrative image that fits the post, ")
	sb.WriteString("describing subject, setting, lighting and mood. Do not ask for any text inside the image.\n")
	sb.WriteString("Use the exact platform names " + platformList() + ".")

	return Prompt{
		System: systemPrompt,
		User:   sb.String(),
	}
}

// StyledImagePrompt wraps a post's image prompt with the fixed style qualifier.
func StyledImagePrompt(prompt string) string {
	return strings.TrimSpace(prompt) + ImageStyleSuffix
}

// PostsSchema describes {"posts": [{platform, text, image_prompt}, ...]}.
func PostsSchema() Schema {
	enum := make([]any, 0, len(Platforms))
	for _, p := range Platforms {
		enum = append(enum, string(p))
	}
	post := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"platform":     map[string]any{"type": "string", "enum": enum},
			"text":         map[string]any{"type": "string"},
			"image_prompt": map[string]any{"type": "string"},
		},
		"required":             []any{"platform", "text", "image_prompt"},
		"additionalProperties": false,
	}
	return Schema{
		Name:        "social_posts",
		Description: "One post per social media platform",
		Root: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"posts": map[string]any{"type": "array", "items": post},
			},
			"required":             []any{"posts"},
			"additionalProperties": false,
		},
	}
}

func platformList() string {
	names := make([]string, 0, len(Platforms))
	for _, p := range Platforms {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
