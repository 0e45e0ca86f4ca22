package vllm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/insightreporter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_UsesV1ChatCompletions(t *testing.T) {
	for _, suffix := range []string{"", "/"} {
		t.Run("base"+suffix, func(t *testing.T) {
			var gotModel, gotAuth string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				gotAuth = r.Header.Get("Authorization")

				var body struct {
					Model string `json:"model"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				gotModel = body.Model

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","created":0,"model":"mistral-7b",` +
					`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"served brief"}}]}`))
			}))
			defer ts.Close()

			p := NewProvider(config.VLLMConfig{BaseURL: ts.URL + suffix, Model: "mistral-7b"}, 0)

			got, err := p.Generate(context.Background(), "brief please")
			require.NoError(t, err)
			assert.Equal(t, "served brief", got)
			assert.Equal(t, "mistral-7b", gotModel)
			assert.Equal(t, "Bearer EMPTY", gotAuth)
			assert.Equal(t, "vllm", p.Name())
		})
	}
}
