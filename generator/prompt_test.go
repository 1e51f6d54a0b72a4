package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostsPrompt_EmbedsIdeaToneAndPlatforms(t *testing.T) {
	p := BuildPostsPrompt("  Launch a new productivity app ", ToneWitty)

	assert.NotEmpty(t, p.System)
	assert.Contains(t, p.User, `"Launch a new productivity app"`)
	assert.Contains(t, p.User, "witty tone")
	for _, prof := range Profiles() {
		assert.Contains(t, p.User, string(prof.Platform)+": "+prof.Guidance)
	}
	assert.Contains(t, p.User, "280 characters")
}

func TestStyledImagePrompt_IsDeterministic(t *testing.T) {
	a := StyledImagePrompt(" a cat on a desk ")
	b := StyledImagePrompt("a cat on a desk")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "a cat on a desk,"))
	assert.True(t, strings.HasSuffix(a, ImageStyleSuffix))
}

func TestPostsSchema_ConstrainsPlatformEnum(t *testing.T) {
	s := PostsSchema()
	assert.Equal(t, "social_posts", s.Name)

	posts := s.Root["properties"].(map[string]any)["posts"].(map[string]any)
	assert.Equal(t, "array", posts["type"])
	item := posts["items"].(map[string]any)
	platform := item["properties"].(map[string]any)["platform"].(map[string]any)
	require.Equal(t, []any{"LinkedIn", "Twitter", "Instagram"}, platform["enum"])
	assert.ElementsMatch(t, []any{"platform", "text", "image_prompt"}, item["required"])
}
