// Package analysis runs the clinical-document pipeline: structured
// extraction (Core 1), verification (Core 2) and summarization (Core 3).
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"curebird/internal/extract"
	"curebird/internal/util"
)

type TextExtractor interface {
	Extract(ctx context.Context, doc extract.Document) string
}

type StructuredStage interface {
	ExtractStructured(ctx context.Context, doc extract.Document, text string) ExtractionResult
}

type VerifyStage interface {
	Verify(ctx context.Context, ex ExtractionResult) VerifiedRecord
}

type SummaryStage interface {
	Summarize(ctx context.Context, rec VerifiedRecord) string
}

// Pipeline runs the stages strictly in order for one document. Each stage
// only sees the previous stage's output.
type Pipeline struct {
	text       TextExtractor
	structured StructuredStage
	verify     VerifyStage
	summary    SummaryStage
	logger     zerolog.Logger
}

func NewPipeline(text TextExtractor, structured StructuredStage, verify VerifyStage, summary SummaryStage, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		text:       text,
		structured: structured,
		verify:     verify,
		summary:    summary,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run always yields a Result unless ctx is done, in which case the run is
// abandoned between stages and ctx's error is returned.
func (p *Pipeline) Run(ctx context.Context, doc extract.Document) (Result, error) {
	start := time.Now()
	log := p.logger.With().Str("document", doc.Name).Str("media_type", doc.MediaType).
		Str("doc_sha", util.SHA256Hex(doc.Data)[:12]).Logger()

	if doc.Kind() == extract.KindUnknown {
		log.Info().Msg("pipeline.unsupported")
		return withDoc(UnsupportedResult(), doc), nil
	}

	text := p.text.Extract(ctx, doc)
	if err := stageDone(ctx, "extract"); err != nil {
		return Result{}, err
	}
	ex := p.structured.ExtractStructured(ctx, doc, text)
	if err := stageDone(ctx, "core1"); err != nil {
		return Result{}, err
	}
	if !ex.IsMedical {
		log.Info().Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("pipeline.short_circuit")
		return withDoc(NotMedicalResult(), doc), nil
	}
	rec := p.verify.Verify(ctx, ex)
	if err := stageDone(ctx, "core2"); err != nil {
		return Result{}, err
	}
	summary := p.summary.Summarize(ctx, rec)
	if err := stageDone(ctx, "core3"); err != nil {
		return Result{}, err
	}
	res := withDoc(CompletedResult(ex, rec, summary), doc)
	log.Info().Int("medicines", len(rec.Medicines)).Int("diseases", len(rec.Diseases)).
		Bool("verified", rec.Verified).Bool("corrected", res.Corrected).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("pipeline.done")
	return res, nil
}

func withDoc(r Result, doc extract.Document) Result {
	r.DocumentName = doc.Name
	r.MediaType = doc.MediaType
	return r
}

func stageDone(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline abandoned after %s: %w", stage, err)
	}
	return nil
}
