package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOllamaGenerateOk(t *testing.T) {
	var received ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"llama3:8b","response":"{\"outfits\":[]}","done":true}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3:8b", "llava", zap.NewNop())
	text, err := provider.Generate(context.Background(), Request{
		Prompt:  "style me",
		Options: Options{JSON: true, Temperature: float32Ptr(0.5)},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"outfits":[]}`, text)
	assert.Equal(t, "llama3:8b", received.Model)
	assert.Equal(t, "style me", received.Prompt)
	assert.Equal(t, "json", received.Format)
	assert.False(t, received.Stream)
	assert.Empty(t, received.Images)
	assert.EqualValues(t, 0.5, received.Options["temperature"])
}

func TestOllamaGenerateSendsImageWithVisionModel(t *testing.T) {
	var received ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"response":"{}"}`))
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "shirt.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("fake-png"), 0600))

	provider := NewOllamaProvider(server.URL, "llama3:8b", "llava", zap.NewNop())
	_, err := provider.Generate(context.Background(), Request{
		Prompt: "describe",
		Image:  &Image{Path: imagePath, MIMEType: "image/png"},
	})

	require.NoError(t, err)
	assert.Equal(t, "llava", received.Model)
	require.Len(t, received.Images, 1)
	assert.Equal(t, "ZmFrZS1wbmc=", received.Images[0])
}

func TestOllamaGenerateBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3:8b", "", zap.NewNop())
	text, err := provider.Generate(context.Background(), Request{Prompt: "hi"})

	assert.Empty(t, text)
	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, KindOllama, invErr.Provider)
	assert.Contains(t, err.Error(), "500")
}

func TestOllamaGenerateMissingResponseField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"done":true}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3:8b", "", zap.NewNop())
	_, err := provider.Generate(context.Background(), Request{Prompt: "hi"})

	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Contains(t, err.Error(), "response field missing")
}

func TestOllamaGenerateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider := NewOllamaProvider(url, "llama3:8b", "", zap.NewNop())
	_, err := provider.Generate(context.Background(), Request{Prompt: "hi"})

	var invErr *InvocationError
	assert.True(t, errors.As(err, &invErr))
}

func TestOllamaGenerateMissingImage(t *testing.T) {
	provider := NewOllamaProvider("http://127.0.0.1:1", "llama3:8b", "", zap.NewNop())
	_, err := provider.Generate(context.Background(), Request{
		Prompt: "describe",
		Image:  &Image{Path: filepath.Join(t.TempDir(), "missing.jpg")},
	})

	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Contains(t, err.Error(), "failed to read image")
}
