package providers

import (
	"context"
	"encoding/base64"
	"time"
)

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Image is an inline image attached to the final user turn.
type Image struct {
	MediaType string
	Data      []byte
}

func (i Image) DataURL() string {
	return "data:" + i.MediaType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

type GenerateRequest struct {
	Operation   string    `json:"operation"`
	Tier        Tier      `json:"tier"`
	Messages    []Message `json:"messages"`
	Image       *Image    `json:"-"`
	JSON        bool      `json:"json"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
}

// CallRecord describes one provider attempt. It never carries prompt or
// response content.
type CallRecord struct {
	CallID         string
	Operation      string
	ConversationID string
	ProviderName   string
	Model          string
	Tier           Tier
	Attempt        int
	Status         string
	ErrorType      ErrorType
	Latency        time.Duration
}
