package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"curebird/internal/extract"
	"curebird/internal/providers"
	"curebird/internal/router"
	"curebird/internal/util"
)

const (
	NoRecordsMessage = "No recent records available to summarize."
	HistoryFallback  = "Unable to generate summary at this time."

	DefaultHistoryCharBudget = 30000
)

// HistorySummarizer condenses a patient's recent records into one paragraph.
type HistorySummarizer struct {
	completer  router.Completer
	text       TextExtractor
	structured StructuredStage
	budget     int
	logger     zerolog.Logger
}

func NewHistorySummarizer(c router.Completer, text TextExtractor, structured StructuredStage, budget int, logger zerolog.Logger) *HistorySummarizer {
	if budget <= 0 {
		budget = DefaultHistoryCharBudget
	}
	return &HistorySummarizer{
		completer:  c,
		text:       text,
		structured: structured,
		budget:     budget,
		logger:     logger.With().Str("component", "history").Logger(),
	}
}

// DescribeDocument renders one document as a labelled record entry.
func (h *HistorySummarizer) DescribeDocument(ctx context.Context, doc extract.Document) string {
	switch doc.Kind() {
	case extract.KindPDF:
		return "[PDF Content]: " + h.text.Extract(ctx, doc)
	case extract.KindImage:
		ocrText := h.text.Extract(ctx, doc)
		ex := h.structured.ExtractStructured(ctx, doc, ocrText)
		content := strings.TrimSpace(ex.DigitalCopy)
		if content == "" {
			names := make([]string, 0, len(ex.Medications))
			for _, m := range ex.Medications {
				names = append(names, strings.TrimSpace(m.Name+" "+m.Dosage+" "+m.Frequency))
			}
			content = fmt.Sprintf("Diseases: [%s], Meds: [%s]", strings.Join(ex.Diseases, ", "), strings.Join(names, "; "))
		}
		return "[Image Analysis]: " + content
	default:
		return extract.UnknownTypeMarker
	}
}

// SummarizeHistory joins record texts and described documents, cuts the
// result to the character budget and asks for a single-paragraph summary.
func (h *HistorySummarizer) SummarizeHistory(ctx context.Context, texts []string, docs []extract.Document) string {
	records := make([]string, 0, len(texts)+len(docs))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			records = append(records, t)
		}
	}
	for _, doc := range docs {
		if len(doc.Data) == 0 {
			continue
		}
		records = append(records, h.DescribeDocument(ctx, doc))
	}
	if len(records) == 0 {
		return NoRecordsMessage
	}
	combined := util.Truncate(strings.Join(records, "\n\n"), h.budget, "...(truncated)")

	resp, info, err := h.completer.Complete(ctx, providers.GenerateRequest{
		Operation:   OpHistory,
		Tier:        providers.TierLarge,
		Temperature: 0.7,
		MaxTokens:   600,
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: historySystemPrompt},
			{Role: providers.RoleUser, Content: historyUserPrompt(combined)},
		},
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		h.logger.Warn().Err(err).Str("provider", info.Name).Int("records", len(records)).Msg("history.failed_soft")
		return HistoryFallback
	}
	return singleParagraph(resp.Text)
}

func singleParagraph(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
