// Package extract turns uploaded documents into plain text.
package extract

import (
	"context"

	"github.com/rs/zerolog"
)

// UnknownTypeMarker is returned for media the extractor cannot read.
const UnknownTypeMarker = "[Unknown File Type]"

const DefaultPDFCharBudget = 5000

type Extractor struct {
	ocr       OCR
	pdfBudget int
	logger    zerolog.Logger
}

func NewExtractor(ocr OCR, pdfBudget int, logger zerolog.Logger) *Extractor {
	if pdfBudget <= 0 {
		pdfBudget = DefaultPDFCharBudget
	}
	return &Extractor{ocr: ocr, pdfBudget: pdfBudget, logger: logger.With().Str("component", "extractor").Logger()}
}

// Extract never fails. Images go through OCR and may come back empty, which
// leaves the vision path to the caller. PDFs yield page text within the
// character budget. Anything else yields UnknownTypeMarker.
func (e *Extractor) Extract(ctx context.Context, doc Document) string {
	switch doc.Kind() {
	case KindImage:
		if e.ocr == nil {
			return ""
		}
		return e.ocr.Recognize(ctx, doc.Data)
	case KindPDF:
		text, err := PDFText(doc.Data, e.pdfBudget)
		if err != nil {
			e.logger.Warn().Err(err).Str("document", doc.Name).Msg("pdf.extract.failed")
			return ""
		}
		return text
	default:
		e.logger.Info().Str("document", doc.Name).Str("media_type", doc.MediaType).Msg("extract.unknown_type")
		return UnknownTypeMarker
	}
}
