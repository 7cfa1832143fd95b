package providers

import "testing"

func TestResolveModelDefaults(t *testing.T) {
	t.Setenv("CUREBIRD_GROQ_MODEL_LARGE", "")
	if got := ResolveModel("groq", TierLarge); got != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected groq large model %q", got)
	}
	if got := ResolveModel("groq", ""); got != "llama-3.3-70b-versatile" {
		t.Fatalf("empty tier should resolve to large, got %q", got)
	}
	if got := ResolveModel("cerebras", TierVision); got != "" {
		t.Fatalf("cerebras has no vision model, got %q", got)
	}
}

func TestResolveModelEnvOverride(t *testing.T) {
	t.Setenv("CUREBIRD_OLLAMA_MODEL_SMALL", "phi3")
	if got := ResolveModel("ollama", TierSmall); got != "phi3" {
		t.Fatalf("expected env override, got %q", got)
	}
}

func TestTierDowngrade(t *testing.T) {
	if TierLarge.Downgrade() != TierSmall {
		t.Fatalf("large should downgrade to small")
	}
	if TierSmall.Downgrade() != TierSmall {
		t.Fatalf("small has no smaller tier")
	}
	if TierVision.Downgrade() != TierVision {
		t.Fatalf("vision stays vision")
	}
}

func TestSupportsTier(t *testing.T) {
	t.Setenv("CUREBIRD_CEREBRAS_MODEL_VISION", "")
	if SupportsTier("cerebras", TierVision) {
		t.Fatalf("cerebras should not serve vision")
	}
	if !SupportsTier("groq", TierVision) {
		t.Fatalf("groq should serve vision")
	}
	if !SupportsTier("stub", TierSmall) {
		t.Fatalf("unknown providers serve every tier")
	}
}
