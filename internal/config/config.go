package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxRetriesLimit bounds CUREBIRD_MAX_RETRIES.
const MaxRetriesLimit = 10

type Config struct {
	APIAddr           string
	TemporalAddress   string
	TemporalTaskQueue string
	PostgresURL       string
	LLMProviders      string
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RetryMaxJitter    time.Duration
	ProviderTimeout   time.Duration
	PDFCharBudget     int
	HistoryCharBudget int
	TesseractBin      string
	TesseractLang     string
	TessdataDir       string
	DiseaseCachePath  string
	MaxUploadMB       int
	ChatTemperature   float64
	ChatMaxTokens     int
	LogLevel          string
	LogPretty         bool
}

func Load() Config {
	return Config{
		APIAddr:           getenv("CUREBIRD_API_ADDR", ":5001"),
		TemporalAddress:   getenv("CUREBIRD_TEMPORAL_ADDRESS", ""),
		TemporalTaskQueue: getenv("CUREBIRD_TEMPORAL_TASK_QUEUE", "curebird-analysis"),
		PostgresURL:       getenv("CUREBIRD_POSTGRES_URL", ""),
		LLMProviders:      getenv("CUREBIRD_LLM_PROVIDERS", "groq"),
		MaxRetries:        getenvInt("CUREBIRD_MAX_RETRIES", 3),
		RetryBaseDelay:    getenvDuration("CUREBIRD_RETRY_BASE_DELAY", time.Second),
		RetryMaxJitter:    getenvDuration("CUREBIRD_RETRY_MAX_JITTER", 500*time.Millisecond),
		ProviderTimeout:   getenvDuration("CUREBIRD_PROVIDER_TIMEOUT", 30*time.Second),
		PDFCharBudget:     getenvInt("CUREBIRD_PDF_CHAR_BUDGET", 5000),
		HistoryCharBudget: getenvInt("CUREBIRD_HISTORY_CHAR_BUDGET", 30000),
		TesseractBin:      getenv("CUREBIRD_TESSERACT_BIN", "tesseract"),
		TesseractLang:     getenv("CUREBIRD_TESSERACT_LANG", "eng"),
		TessdataDir:       getenv("CUREBIRD_TESSDATA_DIR", ""),
		DiseaseCachePath:  getenv("CUREBIRD_DISEASE_CACHE_PATH", "disease_data_cache.json"),
		MaxUploadMB:       getenvInt("CUREBIRD_MAX_UPLOAD_MB", 10),
		ChatTemperature:   getenvFloat("CUREBIRD_CHAT_TEMPERATURE", 0.7),
		ChatMaxTokens:     getenvInt("CUREBIRD_CHAT_MAX_TOKENS", 2048),
		LogLevel:          getenv("CUREBIRD_LOG_LEVEL", "info"),
		LogPretty:         getenvBool("CUREBIRD_LOG_PRETTY", false),
	}
}

// Validate rejects budgets and timeouts that would make the pipeline unbounded.
func (c Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("CUREBIRD_MAX_RETRIES must be between 0 and %d, got %d", MaxRetriesLimit, c.MaxRetries)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("CUREBIRD_PROVIDER_TIMEOUT must be positive")
	}
	if c.PDFCharBudget <= 0 {
		return fmt.Errorf("CUREBIRD_PDF_CHAR_BUDGET must be positive")
	}
	if c.HistoryCharBudget <= 0 {
		return fmt.Errorf("CUREBIRD_HISTORY_CHAR_BUDGET must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("CUREBIRD_MAX_UPLOAD_MB must be positive")
	}
	if strings.TrimSpace(c.LLMProviders) == "" {
		return fmt.Errorf("CUREBIRD_LLM_PROVIDERS is required")
	}
	return nil
}

func (c Config) TemporalEnabled() bool {
	return strings.TrimSpace(c.TemporalAddress) != ""
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(k string, fallback float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(k string, fallback bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
