package generator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiLLMFromConfig_RequiresKey(t *testing.T) {
	_, err := NewGeminiLLMFromConfig(&LLMSettings{Provider: "gemini"})
	assert.Error(t, err)

	_, err = NewImagenImagesFromConfig(nil)
	assert.Error(t, err)

	llm, err := NewGeminiLLMFromConfig(&LLMSettings{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, defaultGeminiTextModel, llm.Model)
}

func TestGeminiLLM_GenerateJSON(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"posts\":"},{"text":"[]}"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	llm, err := NewGeminiLLMFromConfig(&LLMSettings{APIKey: "secret", BaseURL: srv.URL + "/", TextModel: "gemini-test"})
	require.NoError(t, err)

	out, err := llm.GenerateJSON(context.Background(), Prompt{System: "sys", User: "usr"}, PostsSchema())
	require.NoError(t, err)
	assert.Equal(t, `{"posts":[]}`, out)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "sys", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "usr", got.Contents[0].Parts[0].Text)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	assert.Equal(t, "OBJECT", got.GenerationConfig.ResponseSchema["type"])
}

func TestGeminiLLM_GenerateJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"api error", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`, "API key not valid"},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY"},
		{"no text", http.StatusOK, `{"candidates":[]}`, "no text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			llm, err := NewGeminiLLMFromConfig(&LLMSettings{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)
			_, err = llm.GenerateJSON(context.Background(), Prompt{User: "x"}, PostsSchema())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGeminiSchema_ConvertsTypesAndDropsAdditionalProperties(t *testing.T) {
	out := geminiSchema(PostsSchema().Root)

	assert.Equal(t, "OBJECT", out["type"])
	assert.NotContains(t, out, "additionalProperties")
	posts := out["properties"].(map[string]any)["posts"].(map[string]any)
	assert.Equal(t, "ARRAY", posts["type"])
	item := posts["items"].(map[string]any)
	assert.Equal(t, "OBJECT", item["type"])
	assert.NotContains(t, item, "additionalProperties")
	text := item["properties"].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, "STRING", text["type"])

	// input is left untouched
	assert.Equal(t, "object", PostsSchema().Root["type"])
}

func TestImagenImages_GenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	var got imagenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/imagen-test:predict", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"predictions": []map[string]string{
				{"bytesBase64Encoded": base64.StdEncoding.EncodeToString(png), "mimeType": "image/jpeg"},
			},
		})
	}))
	defer srv.Close()

	imgs, err := NewImagenImagesFromConfig(&LLMSettings{APIKey: "k", BaseURL: srv.URL, ImageModel: "imagen-test"})
	require.NoError(t, err)

	img, err := imgs.GenerateImage(context.Background(), "a lighthouse", Ratio16x9)
	require.NoError(t, err)
	assert.Equal(t, png, img.Data)
	assert.Equal(t, "image/jpeg", img.MimeType)

	require.Len(t, got.Instances, 1)
	assert.Equal(t, "a lighthouse", got.Instances[0].Prompt)
	assert.Equal(t, 1, got.Parameters.SampleCount)
	assert.Equal(t, "16:9", got.Parameters.AspectRatio)
}

func TestImagenImages_GenerateImage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`, "Quota exceeded"},
		{"filtered", http.StatusOK, `{}`, "no image returned"},
		{"bad base64", http.StatusOK, `{"predictions":[{"bytesBase64Encoded":"!!!"}]}`, "decode image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			imgs, err := NewImagenImagesFromConfig(&LLMSettings{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)
			_, err = imgs.GenerateImage(context.Background(), "p", Ratio1x1)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
