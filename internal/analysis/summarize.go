package analysis

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"curebird/internal/providers"
	"curebird/internal/router"
)

const (
	SummaryFallback = "We were unable to summarize this document right now. Please try again in a moment."
	Disclaimer      = "This summary is for information only and is not medical advice."
)

// Summarizer is Core 3. It fails soft to SummaryFallback.
type Summarizer struct {
	completer router.Completer
	logger    zerolog.Logger
}

func NewSummarizer(c router.Completer, logger zerolog.Logger) *Summarizer {
	return &Summarizer{completer: c, logger: logger.With().Str("component", "core3").Logger()}
}

// Summarize turns rec into patient-facing prose. It only ever sees the
// verified record.
func (s *Summarizer) Summarize(ctx context.Context, rec VerifiedRecord) string {
	resp, info, err := s.completer.Complete(ctx, providers.GenerateRequest{
		Operation:   OpSummarize,
		Tier:        providers.TierSmall,
		Temperature: 0.3,
		MaxTokens:   400,
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: summarySystemPrompt},
			{Role: providers.RoleUser, Content: summaryUserPrompt(rec)},
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", info.Name).Msg("core3.failed_soft")
		return SummaryFallback
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" || looksLikeJSON(text) {
		s.logger.Warn().Str("provider", info.Name).Msg("core3.unusable_reply")
		return SummaryFallback
	}
	if !strings.Contains(strings.ToLower(text), "not medical advice") {
		text += "\n\n" + Disclaimer
	}
	return text
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") || strings.HasPrefix(s, "```") {
		return true
	}
	return strings.Contains(s, `":`) && strings.Contains(s, "{")
}
