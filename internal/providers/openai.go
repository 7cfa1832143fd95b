package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// compatClient speaks the OpenAI chat/completions wire format, which Groq and
// Cerebras also serve.
type compatClient struct {
	name    string
	keyName string
	apiKey  string
	baseURL string
	client  *http.Client
}

func newCompatClient(name, keyName, baseURL, fallbackEnv string) compatClient {
	return compatClient{
		name:    name,
		keyName: keyName,
		apiKey:  resolveKey(name, keyName, fallbackEnv),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// OpenAIProvider uses standard OpenAI REST APIs when keys are configured.
type OpenAIProvider struct {
	compatClient
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	base := strings.TrimSpace(os.Getenv("CUREBIRD_OPENAI_BASE_URL"))
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{newCompatClient("openai", keyName, base, "OPENAI_API_KEY")}
}

func (c *compatClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	model := ResolveModel(c.name, req.Tier)
	info := ProviderInfo{Name: c.name, Model: model, Key: c.keyName}
	if c.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("%s key missing for alias %q: %w", c.name, c.keyName, ErrAuth)
	}
	if model == "" {
		return GenerateResponse{}, info, fmt.Errorf("%s has no model for tier %q: %w", c.name, req.Tier, ErrPermanent)
	}
	body := map[string]any{
		"model":       model,
		"messages":    encodeCompatMessages(req),
		"temperature": req.Temperature,
		"stream":      false,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("encode %s request: %w", c.name, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("build %s request: %w", c.name, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("%s generate request failed: %w", c.name, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("read %s response: %v: %w", c.name, err, ErrTransient)
	}
	if resp.StatusCode >= 400 {
		return GenerateResponse{}, info, &StatusError{Provider: c.name, Code: resp.StatusCode, Body: string(raw)}
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return GenerateResponse{}, info, fmt.Errorf("decode %s response: %v: %w", c.name, err, ErrMalformedResponse)
	}
	if len(parsed.Choices) == 0 {
		return GenerateResponse{}, info, fmt.Errorf("%s returned empty choices: %w", c.name, ErrMalformedResponse)
	}
	return GenerateResponse{Text: parsed.Choices[0].Message.Content}, info, nil
}

// encodeCompatMessages renders messages; an attached image joins the last
// user turn as a multimodal content array.
func encodeCompatMessages(req GenerateRequest) []map[string]any {
	last := -1
	if req.Image != nil {
		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == RoleUser {
				last = i
				break
			}
		}
	}
	out := make([]map[string]any, 0, len(req.Messages))
	for i, m := range req.Messages {
		if i == last {
			out = append(out, map[string]any{
				"role": string(m.Role),
				"content": []map[string]any{
					{"type": "text", "text": m.Content},
					{"type": "image_url", "image_url": map[string]string{"url": req.Image.DataURL()}},
				},
			})
			continue
		}
		out = append(out, map[string]any{"role": string(m.Role), "content": m.Content})
	}
	return out
}

func resolveKey(provider, alias, fallbackEnv string) string {
	if alias != "" {
		if v := os.Getenv("CUREBIRD_" + sanitizeEnvToken(provider) + "_KEY_" + sanitizeEnvToken(alias)); v != "" {
			return v
		}
	}
	return os.Getenv(fallbackEnv)
}
