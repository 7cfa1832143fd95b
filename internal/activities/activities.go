// Package activities exposes the analysis stages as Temporal activities.
// Stages never fail on provider errors, so an activity error means the
// worker was cancelled or shut down mid-stage.
package activities

import (
	"context"

	"github.com/rs/zerolog"
	"go.temporal.io/sdk/activity"

	"curebird/internal/analysis"
	"curebird/internal/extract"
)

type Activities struct {
	text       analysis.TextExtractor
	structured analysis.StructuredStage
	verify     analysis.VerifyStage
	summary    analysis.SummaryStage
	logger     zerolog.Logger
}

func New(text analysis.TextExtractor, structured analysis.StructuredStage, verify analysis.VerifyStage, summary analysis.SummaryStage, logger zerolog.Logger) *Activities {
	return &Activities{
		text:       text,
		structured: structured,
		verify:     verify,
		summary:    summary,
		logger:     logger.With().Str("component", "activities").Logger(),
	}
}

func (p DocumentPayload) document() extract.Document {
	return extract.NewDocument(p.Name, p.MediaType, p.Data)
}

func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	text := a.text.Extract(ctx, in.Document.document())
	if err := ctx.Err(); err != nil {
		return ExtractTextOutput{}, err
	}
	a.log(ctx).Debug().Str("document", in.Document.Name).Int("chars", len(text)).Msg("activity.extract_text")
	return ExtractTextOutput{Text: text}, nil
}

func (a *Activities) ExtractStructuredActivity(ctx context.Context, in ExtractStructuredInput) (ExtractStructuredOutput, error) {
	ex := a.structured.ExtractStructured(ctx, in.Document.document(), in.Text)
	if err := ctx.Err(); err != nil {
		return ExtractStructuredOutput{}, err
	}
	a.log(ctx).Debug().Str("document", in.Document.Name).Bool("is_medical", ex.IsMedical).Msg("activity.extract_structured")
	return ExtractStructuredOutput{Extraction: ex}, nil
}

func (a *Activities) VerifyActivity(ctx context.Context, in VerifyInput) (VerifyOutput, error) {
	rec := a.verify.Verify(ctx, in.Extraction)
	if err := ctx.Err(); err != nil {
		return VerifyOutput{}, err
	}
	return VerifyOutput{Record: rec}, nil
}

func (a *Activities) SummarizeActivity(ctx context.Context, in SummarizeInput) (SummarizeOutput, error) {
	summary := a.summary.Summarize(ctx, in.Record)
	if err := ctx.Err(); err != nil {
		return SummarizeOutput{}, err
	}
	return SummarizeOutput{Summary: summary}, nil
}

func (a *Activities) log(ctx context.Context) *zerolog.Logger {
	l := a.logger
	if activity.IsActivity(ctx) {
		info := activity.GetInfo(ctx)
		l = l.With().Str("workflow_id", info.WorkflowExecution.ID).Int32("attempt", info.Attempt).Logger()
	}
	return &l
}
