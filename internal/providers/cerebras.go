package providers

import (
	"os"
	"strings"
)

// CerebrasProvider is text-only; vision-tier requests fail as permanent.
type CerebrasProvider struct {
	compatClient
}

func NewCerebrasProvider(keyName string) *CerebrasProvider {
	base := strings.TrimSpace(os.Getenv("CUREBIRD_CEREBRAS_BASE_URL"))
	if base == "" {
		base = "https://api.cerebras.ai/v1"
	}
	return &CerebrasProvider{newCompatClient("cerebras", keyName, base, "CEREBRAS_API_KEY")}
}
