package generator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIOptions_RequiresKey(t *testing.T) {
	_, err := NewOpenAILLMFromConfig(&LLMSettings{Provider: "openai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")

	_, err = NewOpenAIImagesFromConfig(nil)
	assert.Error(t, err)
}

func TestOpenAILLM_GenerateJSON(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"posts\":[]}"}}]
		}`))
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAITextModel, llm.Model)

	out, err := llm.GenerateJSON(context.Background(), BuildPostsPrompt("idea", ToneUrgent), PostsSchema())
	require.NoError(t, err)
	assert.Equal(t, `{"posts":[]}`, out)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	format := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, "social_posts", schema["name"])
	assert.Equal(t, true, schema["strict"])
}

func TestOpenAILLM_GenerateJSON_Refusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"","refusal":"no"}}]}`))
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "k", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)
	_, err = llm.GenerateJSON(context.Background(), Prompt{System: "s", User: "u"}, PostsSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestOpenAIImages_GenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/images/generations"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
		})
	}))
	defer srv.Close()

	imgs, err := NewOpenAIImagesFromConfig(&LLMSettings{APIKey: "k", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	img, err := imgs.GenerateImage(context.Background(), "a rocket", Ratio16x9)
	require.NoError(t, err)
	assert.Equal(t, png, img.Data)
	assert.Equal(t, "image/png", img.MimeType)

	assert.Equal(t, "a rocket", body["prompt"])
	assert.Equal(t, "1536x1024", body["size"])
	assert.NotContains(t, body, "response_format")
}

func TestOpenAISize(t *testing.T) {
	assert.Equal(t, "1024x1024", openAISize(Ratio1x1))
	assert.Equal(t, "1536x1024", openAISize(Ratio4x3))
	assert.Equal(t, "1536x1024", openAISize(Ratio16x9))
}
