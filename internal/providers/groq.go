package providers

import (
	"os"
	"strings"
)

// GroqProvider supports LLM generation via Groq's OpenAI-compatible API. It
// is the only configured provider with a vision tier by default.
type GroqProvider struct {
	compatClient
}

func NewGroqProvider(keyName string) *GroqProvider {
	base := strings.TrimSpace(os.Getenv("CUREBIRD_GROQ_BASE_URL"))
	if base == "" {
		base = "https://api.groq.com/openai/v1"
	}
	return &GroqProvider{newCompatClient("groq", keyName, base, "GROQ_API_KEY")}
}
