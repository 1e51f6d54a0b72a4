package generator

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLLM_AnswersParseablePosts(t *testing.T) {
	raw, err := MockLLM{}.GenerateJSON(context.Background(), BuildPostsPrompt(`Say "hi" to Go`, ToneUrgent), PostsSchema())
	require.NoError(t, err)

	posts, err := ParsePosts(raw)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Contains(t, posts[0].Text, `Say "hi" to Go`)
	assert.Contains(t, posts[1].Text, "(urgent)")
	assert.Contains(t, posts[2].Text, "#SayHiToGo")
}

func TestMockImages_DrawsRequestedRatio(t *testing.T) {
	tests := []struct {
		ratio AspectRatio
		w, h  int
	}{
		{Ratio1x1, 64, 64},
		{Ratio4x3, 64, 48},
		{Ratio16x9, 64, 36},
	}
	for _, tt := range tests {
		t.Run(string(tt.ratio), func(t *testing.T) {
			img, err := MockImages{}.GenerateImage(context.Background(), "prompt", tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, "image/png", img.MimeType)

			decoded, err := png.Decode(bytes.NewReader(img.Data))
			require.NoError(t, err)
			assert.Equal(t, tt.w, decoded.Bounds().Dx())
			assert.Equal(t, tt.h, decoded.Bounds().Dy())
		})
	}

	_, err := MockImages{}.GenerateImage(context.Background(), "prompt", AspectRatio("3:2"))
	assert.Error(t, err)
}

func TestHashtag(t *testing.T) {
	assert.Equal(t, "LaunchANewApp", hashtag("launch a new app!"))
	assert.Equal(t, "Update", hashtag("!!! ???"))
}
