package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CUREBIRD_MAX_RETRIES", "")
	t.Setenv("CUREBIRD_PDF_CHAR_BUDGET", "")
	t.Setenv("CUREBIRD_RETRY_BASE_DELAY", "")
	cfg := Load()
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, 5000, cfg.PDFCharBudget)
	require.Equal(t, time.Second, cfg.RetryBaseDelay)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CUREBIRD_MAX_RETRIES", "5")
	t.Setenv("CUREBIRD_PROVIDER_TIMEOUT", "7s")
	t.Setenv("CUREBIRD_CHAT_TEMPERATURE", "0.2")
	t.Setenv("CUREBIRD_LOG_PRETTY", "true")
	t.Setenv("CUREBIRD_PDF_CHAR_BUDGET", "not-a-number")
	cfg := Load()
	require.Equal(t, 5, cfg.MaxRetries)
	require.Equal(t, 7*time.Second, cfg.ProviderTimeout)
	require.InDelta(t, 0.2, cfg.ChatTemperature, 1e-9)
	require.True(t, cfg.LogPretty)
	require.Equal(t, 5000, cfg.PDFCharBudget)
}

func TestLoadTessdataDir(t *testing.T) {
	t.Setenv("CUREBIRD_TESSDATA_DIR", "/opt/tessdata")
	t.Setenv("TESSDATA_PREFIX", "/ignored")
	require.Equal(t, "/opt/tessdata", Load().TessdataDir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.MaxRetries = -1
	require.Error(t, cfg.Validate())

	cfg = Load()
	cfg.MaxRetries = MaxRetriesLimit + 1
	require.Error(t, cfg.Validate())

	cfg = Load()
	cfg.ProviderTimeout = 0
	require.Error(t, cfg.Validate())

	cfg = Load()
	cfg.LLMProviders = "  "
	require.Error(t, cfg.Validate())
}

func TestTemporalEnabled(t *testing.T) {
	cfg := Config{}
	require.False(t, cfg.TemporalEnabled())
	cfg.TemporalAddress = "localhost:7233"
	require.True(t, cfg.TemporalEnabled())
}
