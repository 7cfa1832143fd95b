package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"curebird/internal/extract"
)

type fixedStructured ExtractionResult

func (f fixedStructured) ExtractStructured(context.Context, extract.Document, string) ExtractionResult {
	return ExtractionResult(f)
}

func TestSummarizeHistoryNoRecords(t *testing.T) {
	stub := newStub()
	h := NewHistorySummarizer(stub, staticText(""), fixedStructured{}, 0, zerolog.Nop())
	require.Equal(t, NoRecordsMessage, h.SummarizeHistory(t.Context(), []string{" "}, nil))
	require.Zero(t, stub.count(OpHistory))
}

func TestSummarizeHistoryLabelsDocuments(t *testing.T) {
	stub := newStub()
	stub.replies[OpHistory] = "Patient has\n\ndiabetes, managed well."
	h := NewHistorySummarizer(stub, staticText("HbA1c 7.2"), fixedStructured{IsMedical: true, Diseases: []string{"Diabetes"}, Medications: []MedicationMention{{Name: "Metformin", Dosage: "500mg"}}}, 0, zerolog.Nop())

	docs := []extract.Document{
		pdfDoc,
		pngDoc,
		extract.NewDocument("notes.txt", "text/plain", []byte("hi")),
	}
	out := h.SummarizeHistory(t.Context(), []string{"Visit: BP normal"}, docs)
	require.Equal(t, "Patient has diabetes, managed well.", out)

	prompt := stub.last(OpHistory).Messages[1].Content
	require.Contains(t, prompt, "Visit: BP normal")
	require.Contains(t, prompt, "[PDF Content]: HbA1c 7.2")
	require.Contains(t, prompt, "[Image Analysis]: Diseases: [Diabetes], Meds: [Metformin 500mg]")
	require.Contains(t, prompt, extract.UnknownTypeMarker)
}

func TestSummarizeHistoryPrefersDigitalCopy(t *testing.T) {
	h := NewHistorySummarizer(newStub(), staticText(""), fixedStructured{IsMedical: true, DigitalCopy: "# Rx\nMetformin"}, 0, zerolog.Nop())
	require.Equal(t, "[Image Analysis]: # Rx\nMetformin", h.DescribeDocument(t.Context(), pngDoc))
}

func TestSummarizeHistoryTruncatesAndFailsSoft(t *testing.T) {
	stub := newStub()
	stub.errs[OpHistory] = errors.New("quota")
	h := NewHistorySummarizer(stub, staticText(""), fixedStructured{}, 10, zerolog.Nop())

	out := h.SummarizeHistory(t.Context(), []string{strings.Repeat("a", 50)}, nil)
	require.Equal(t, HistoryFallback, out)
	prompt := stub.last(OpHistory).Messages[1].Content
	require.Contains(t, prompt, "aaaaaaaaaa...(truncated)")
	require.NotContains(t, prompt, "aaaaaaaaaaa")
}
