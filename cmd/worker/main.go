package main

import (
	"context"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/worker"

	"curebird/internal/activities"
	"curebird/internal/app"
	"curebird/internal/config"
	"curebird/internal/logging"
	"curebird/internal/workflows"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	c, err := app.DialTemporal(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect temporal")
	}
	defer c.Close()

	a, err := app.Build(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build app")
	}
	defer a.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, a.Activities())

	log.Info().Str("temporal", cfg.TemporalAddress).Str("queue", cfg.TemporalTaskQueue).
		Str("llm_providers", cfg.LLMProviders).Msg("curebird worker listening")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
