package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/taxonomist/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statusMessages = map[int]string{
	http.StatusTooManyRequests:    "rate limit exceeded",
	http.StatusServiceUnavailable: "service unavailable",
	http.StatusUnauthorized:       "invalid api key",
}

func embeddingServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": statusMessages[status], "type": "error"},
			})
			return
		}

		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(i + 1), 0, 0},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  "test-model",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbedder_InvalidConfig(t *testing.T) {
	_, err := NewEmbedder(&ai.Config{})
	assert.Error(t, err)
}

func TestEmbedder_EmbedText(t *testing.T) {
	srv := embeddingServer(t, http.StatusOK)

	e, err := NewEmbedder(ai.NewConfig(
		ai.WithEmbeddingHost(srv.URL),
		ai.WithEmbeddingModel("test-model"),
	))
	require.NoError(t, err)

	v, err := e.EmbedText(context.Background(), "Smartphones")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, v)

	vs, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vs, 2)
}

func TestEmbedder_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusServiceUnavailable, true},
		{"unauthorized", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := embeddingServer(t, tt.status)
			e, err := NewEmbedder(ai.NewConfig(
				ai.WithEmbeddingHost(srv.URL),
				ai.WithEmbeddingModel("test-model"),
			))
			require.NoError(t, err)

			_, err = e.EmbedText(context.Background(), "Smartphones")
			require.Error(t, err)
			assert.Equal(t, tt.transient, ai.IsTransient(err), "err: %v", err)
		})
	}
}
