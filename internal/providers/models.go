package providers

import (
	"os"
	"strings"
)

// Tier is a model size class. Providers resolve a tier to a concrete model.
type Tier string

const (
	TierLarge  Tier = "large"
	TierSmall  Tier = "small"
	TierVision Tier = "vision"
)

// Downgrade returns the next smaller tier. Only the large tier has one.
func (t Tier) Downgrade() Tier {
	if t == TierLarge {
		return TierSmall
	}
	return t
}

var defaultModels = map[string]map[Tier]string{
	"groq": {
		TierLarge:  "llama-3.3-70b-versatile",
		TierSmall:  "llama-3.1-8b-instant",
		TierVision: "meta-llama/llama-4-maverick-17b-128e-instruct",
	},
	"cerebras": {
		TierLarge: "llama-3.3-70b",
		TierSmall: "llama3.1-8b",
	},
	"openai": {
		TierLarge:  "gpt-4o",
		TierSmall:  "gpt-4o-mini",
		TierVision: "gpt-4o",
	},
	"ollama": {
		TierLarge:  "llama3.1:70b",
		TierSmall:  "llama3.2",
		TierVision: "llava",
	},
	"mock": {
		TierLarge:  "mock-large",
		TierSmall:  "mock-small",
		TierVision: "mock-vision",
	},
}

// ResolveModel maps a tier to a model name for provider. An empty result
// means the provider has no model for that tier.
// CUREBIRD_<PROVIDER>_MODEL_<TIER> overrides the built-in default.
func ResolveModel(provider string, tier Tier) string {
	if tier == "" {
		tier = TierLarge
	}
	key := "CUREBIRD_" + sanitizeEnvToken(provider) + "_MODEL_" + sanitizeEnvToken(string(tier))
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultModels[strings.ToLower(provider)][tier]
}

func sanitizeEnvToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// SupportsTier reports whether provider can serve tier. Providers without a
// built-in model table are assumed to serve every tier.
func SupportsTier(provider string, tier Tier) bool {
	if _, known := defaultModels[strings.ToLower(provider)]; !known {
		return true
	}
	return ResolveModel(provider, tier) != ""
}
