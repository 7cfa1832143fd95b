// Package app wires the analysis services once per process. Commands build
// an App and hand its parts to the HTTP server, the worker or the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	tclient "go.temporal.io/sdk/client"

	"curebird/internal/activities"
	"curebird/internal/analysis"
	"curebird/internal/config"
	"curebird/internal/diseases"
	"curebird/internal/extract"
	"curebird/internal/logging"
	"curebird/internal/providers"
	"curebird/internal/router"
	"curebird/internal/storage"
)

type App struct {
	Config     config.Config
	Logger     zerolog.Logger
	Providers  *providers.Manager
	Dispatcher *router.Dispatcher
	Diseases   *diseases.Store
	Extractor  *extract.Extractor
	Structured *analysis.StructuredExtractor
	Verifier   *analysis.Verifier
	Summarizer *analysis.Summarizer
	Pipeline   *analysis.Pipeline
	History    *analysis.HistorySummarizer
	Sessions   *router.SessionStore
	Assistant  *router.Assistant

	db *storage.DB
}

// Build validates cfg and constructs every component. Call auditing is
// enabled only when a Postgres URL is configured.
func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	pm, err := providers.NewManager(cfg.LLMProviders)
	if err != nil {
		return nil, fmt.Errorf("build providers: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Providers: pm}
	var opts []router.Option
	if cfg.PostgresURL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		db, err := storage.NewDB(dbCtx, cfg.PostgresURL)
		cancel()
		if err != nil {
			return nil, err
		}
		a.db = db
		opts = append(opts, router.WithAuditor(storage.NewLLMAuditRepo(db)))
	}
	a.Dispatcher = router.NewDispatcher(pm, router.RetryPolicy{
		MaxRetries:  cfg.MaxRetries,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxJitter:   cfg.RetryMaxJitter,
		CallTimeout: cfg.ProviderTimeout,
	}, logger, opts...)

	a.Diseases = diseases.NewStore(cfg.DiseaseCachePath, logger)
	ocr := extract.NewTesseract(extract.TesseractConfig{
		Bin:         cfg.TesseractBin,
		Lang:        cfg.TesseractLang,
		TessdataDir: cfg.TessdataDir,
	}, logger)
	a.Extractor = extract.NewExtractor(ocr, cfg.PDFCharBudget, logger)
	a.Structured = analysis.NewStructuredExtractor(a.Dispatcher, logger)
	a.Verifier = analysis.NewVerifier(a.Dispatcher, logger)
	a.Summarizer = analysis.NewSummarizer(a.Dispatcher, logger)
	a.Pipeline = analysis.NewPipeline(a.Extractor, a.Structured, a.Verifier, a.Summarizer, logger)
	a.History = analysis.NewHistorySummarizer(a.Dispatcher, a.Extractor, a.Structured, cfg.HistoryCharBudget, logger)
	a.Sessions = router.NewSessionStore()
	a.Assistant = router.NewAssistant(a.Dispatcher, a.Sessions, a.Diseases, router.AssistantConfig{
		Temperature: cfg.ChatTemperature,
		MaxTokens:   cfg.ChatMaxTokens,
	}, logger)

	logger.Info().Strs("llm_providers", providerNames(pm)).Bool("audit", a.db != nil).
		Int("max_retries", cfg.MaxRetries).Msg("app.ready")
	return a, nil
}

// Activities exposes the same stage instances the HTTP pipeline uses.
func (a *App) Activities() *activities.Activities {
	return activities.New(a.Extractor, a.Structured, a.Verifier, a.Summarizer, a.Logger)
}

// DialTemporal connects to the configured Temporal frontend.
func DialTemporal(cfg config.Config, logger zerolog.Logger) (tclient.Client, error) {
	if !cfg.TemporalEnabled() {
		return nil, fmt.Errorf("CUREBIRD_TEMPORAL_ADDRESS is not set")
	}
	c, err := tclient.Dial(tclient.Options{
		HostPort: cfg.TemporalAddress,
		Logger:   logging.NewTemporalLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal: %w", err)
	}
	return c, nil
}

func (a *App) Close() {
	a.db.Close()
}

func providerNames(pm *providers.Manager) []string {
	refs := pm.LLMProviderRefs()
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Raw)
	}
	return out
}
