package analysis

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"curebird/internal/extract"
	"curebird/internal/providers"
	"curebird/internal/router"
)

// StructuredExtractor is Core 1. It fails closed: any provider or parse
// failure yields NotMedical().
type StructuredExtractor struct {
	completer router.Completer
	logger    zerolog.Logger
}

func NewStructuredExtractor(c router.Completer, logger zerolog.Logger) *StructuredExtractor {
	return &StructuredExtractor{completer: c, logger: logger.With().Str("component", "core1").Logger()}
}

// ExtractStructured reads doc. Images go to the vision tier with the OCR text
// as a hint; PDFs go to the large text tier with their extracted text.
func (s *StructuredExtractor) ExtractStructured(ctx context.Context, doc extract.Document, text string) ExtractionResult {
	req := providers.GenerateRequest{
		Operation: OpExtract,
		JSON:      true,
		Messages:  []providers.Message{{Role: providers.RoleSystem, Content: extractionSystemPrompt}},
	}
	switch doc.Kind() {
	case extract.KindImage:
		req.Tier = providers.TierVision
		req.Image = &providers.Image{MediaType: doc.MediaType, Data: doc.Data}
		req.Messages = append(req.Messages, providers.Message{Role: providers.RoleUser, Content: extractionUserPrompt(text)})
	case extract.KindPDF:
		if strings.TrimSpace(text) == "" {
			s.logger.Info().Str("document", doc.Name).Msg("core1.no_text")
			return NotMedical()
		}
		req.Tier = providers.TierLarge
		req.Messages = append(req.Messages, providers.Message{Role: providers.RoleUser, Content: extractionTextPrompt(text)})
	default:
		return NotMedical()
	}

	resp, info, err := s.completer.Complete(ctx, req)
	if err != nil {
		s.logger.Warn().Err(err).Str("document", doc.Name).Str("provider", info.Name).Msg("core1.failed_closed")
		return NotMedical()
	}
	var out ExtractionResult
	if err := decodeStrict(resp.Text, extractionSchema, &out); err != nil {
		s.logger.Warn().Err(err).Str("document", doc.Name).Str("provider", info.Name).Msg("core1.failed_closed")
		return NotMedical()
	}
	if !out.IsMedical {
		return NotMedical()
	}
	return normalizeExtraction(out)
}

func normalizeExtraction(ex ExtractionResult) ExtractionResult {
	ex.PatientName = strings.TrimSpace(ex.PatientName)
	meds := make([]MedicationMention, 0, len(ex.Medications))
	for _, m := range ex.Medications {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			continue
		}
		m.Dosage = strings.TrimSpace(m.Dosage)
		m.Frequency = strings.TrimSpace(m.Frequency)
		meds = append(meds, m)
	}
	ex.Medications = meds
	diseases := make([]string, 0, len(ex.Diseases))
	for _, d := range ex.Diseases {
		if d = strings.TrimSpace(d); d != "" {
			diseases = append(diseases, d)
		}
	}
	ex.Diseases = diseases
	return ex
}
