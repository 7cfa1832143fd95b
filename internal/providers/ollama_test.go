package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOllamaGenerateAttachesImageToUserTurn(t *testing.T) {
	var got struct {
		Model    string          `json:"model"`
		Format   string          `json:"format"`
		Messages []ollamaMessage `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"}}`))
	}))
	defer srv.Close()
	t.Setenv("CUREBIRD_OLLAMA_BASE_URL", srv.URL)
	t.Setenv("CUREBIRD_OLLAMA_MODEL_VISION", "")

	p := NewOllamaProvider("")
	resp, info, err := p.Generate(context.Background(), GenerateRequest{
		Tier:     TierVision,
		JSON:     true,
		Messages: []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "scan"}},
		Image:    &Image{MediaType: "image/jpeg", Data: []byte("jpeg-bytes")},
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Text)
	require.Equal(t, "llava", info.Model)
	require.Equal(t, "llava", got.Model)
	require.Equal(t, "json", got.Format)
	require.Len(t, got.Messages, 2)
	require.Empty(t, got.Messages[0].Images)
	require.Len(t, got.Messages[1].Images, 1)
}

func TestOllamaEmptyMessageIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"  "}}`))
	}))
	defer srv.Close()
	t.Setenv("CUREBIRD_OLLAMA_BASE_URL", srv.URL)

	_, _, err := NewOllamaProvider("").Generate(context.Background(), GenerateRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.ErrorIs(t, err, ErrMalformedResponse)
	require.Equal(t, ErrorMalformed, ClassifyError(err))
}
