package analysis

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"curebird/internal/providers"
)

func TestSummarizeUsesSmallTierAndRecordOnly(t *testing.T) {
	stub := newStub()
	stub.replies[OpSummarize] = "You have diabetes. Take Metformin 500mg twice daily. This summary is for information only and is not medical advice."
	s := NewSummarizer(stub, zerolog.Nop())

	rec := PassThrough(diabetesExtraction)
	rec.Medicines[0].IsCorrected = true
	out := s.Summarize(t.Context(), rec)
	require.Equal(t, stub.replies[OpSummarize], out)

	req := stub.last(OpSummarize)
	require.Equal(t, providers.TierSmall, req.Tier)
	require.Nil(t, req.Image)
	require.Contains(t, req.Messages[1].Content, "Automatic corrections applied: yes")
}

func TestSummarizeAppendsMissingDisclaimer(t *testing.T) {
	stub := newStub()
	stub.replies[OpSummarize] = "You have diabetes."
	out := NewSummarizer(stub, zerolog.Nop()).Summarize(t.Context(), PassThrough(diabetesExtraction))
	require.Equal(t, "You have diabetes.\n\n"+Disclaimer, out)
}

func TestSummarizeFailsSoft(t *testing.T) {
	for name, setup := range map[string]func(*stubCompleter){
		"error": func(s *stubCompleter) { s.errs[OpSummarize] = errors.New("timeout") },
		"empty": func(s *stubCompleter) { s.replies[OpSummarize] = "  " },
		"json":  func(s *stubCompleter) { s.replies[OpSummarize] = `{"summary":"x"}` },
	} {
		stub := newStub()
		setup(stub)
		out := NewSummarizer(stub, zerolog.Nop()).Summarize(t.Context(), PassThrough(diabetesExtraction))
		require.Equal(t, SummaryFallback, out, name)
	}
}
