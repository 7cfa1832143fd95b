package activities

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"curebird/internal/analysis"
	"curebird/internal/extract"
)

type fakeStages struct {
	text    string
	ex      analysis.ExtractionResult
	rec     analysis.VerifiedRecord
	summary string
	seen    []extract.Document
}

func (f *fakeStages) Extract(_ context.Context, doc extract.Document) string {
	f.seen = append(f.seen, doc)
	return f.text
}

func (f *fakeStages) ExtractStructured(_ context.Context, doc extract.Document, _ string) analysis.ExtractionResult {
	f.seen = append(f.seen, doc)
	return f.ex
}

func (f *fakeStages) Verify(context.Context, analysis.ExtractionResult) analysis.VerifiedRecord {
	return f.rec
}

func (f *fakeStages) Summarize(context.Context, analysis.VerifiedRecord) string { return f.summary }

func newTestActivities(f *fakeStages) *Activities {
	return New(f, f, f, f, zerolog.Nop())
}

func TestExtractTextActivityRebuildsDocument(t *testing.T) {
	f := &fakeStages{text: "Tab Dolo 650"}
	a := newTestActivities(f)
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(a.ExtractTextActivity)

	val, err := env.ExecuteActivity(a.ExtractTextActivity, ExtractTextInput{Document: DocumentPayload{Name: "rx.jpg", MediaType: "image/jpg", Data: []byte("not really a jpeg")}})
	require.NoError(t, err)
	var out ExtractTextOutput
	require.NoError(t, val.Get(&out))
	require.Equal(t, "Tab Dolo 650", out.Text)
	require.Len(t, f.seen, 1)
	require.Equal(t, "image/jpeg", f.seen[0].MediaType)
	require.Equal(t, extract.KindImage, f.seen[0].Kind())
}

func TestStageActivities(t *testing.T) {
	ex := analysis.ExtractionResult{IsMedical: true, Diseases: []string{"Fever"}, Medications: []analysis.MedicationMention{}}
	rec := analysis.VerifiedRecord{Diseases: []analysis.DiseaseCorrection{{Input: "Fever", Corrected: "Fever", Confidence: 0.9}}, Verified: true}
	f := &fakeStages{ex: ex, rec: rec, summary: "Rest and fluids."}
	a := newTestActivities(f)
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(a.ExtractStructuredActivity)
	env.RegisterActivity(a.VerifyActivity)
	env.RegisterActivity(a.SummarizeActivity)

	val, err := env.ExecuteActivity(a.ExtractStructuredActivity, ExtractStructuredInput{Document: DocumentPayload{Name: "r.pdf", Data: []byte("%PDF-1.4\n")}, Text: "fever"})
	require.NoError(t, err)
	var exOut ExtractStructuredOutput
	require.NoError(t, val.Get(&exOut))
	require.True(t, exOut.Extraction.IsMedical)
	require.Equal(t, []string{"Fever"}, exOut.Extraction.Diseases)

	val, err = env.ExecuteActivity(a.VerifyActivity, VerifyInput{Extraction: ex})
	require.NoError(t, err)
	var verOut VerifyOutput
	require.NoError(t, val.Get(&verOut))
	require.True(t, verOut.Record.Verified)

	val, err = env.ExecuteActivity(a.SummarizeActivity, SummarizeInput{Record: rec})
	require.NoError(t, err)
	var sumOut SummarizeOutput
	require.NoError(t, val.Get(&sumOut))
	require.Equal(t, "Rest and fluids.", sumOut.Summary)
}
