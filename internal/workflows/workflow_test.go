package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"curebird/internal/activities"
	"curebird/internal/analysis"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

// registerStages registers placeholder stages that count their calls.
func registerStages(env *testsuite.TestWorkflowEnvironment, calls map[string]int) {
	registerActivityName(env, "ExtractTextActivity", func(context.Context, activities.ExtractTextInput) (activities.ExtractTextOutput, error) {
		calls["ExtractTextActivity"]++
		return activities.ExtractTextOutput{}, nil
	})
	registerActivityName(env, "ExtractStructuredActivity", func(context.Context, activities.ExtractStructuredInput) (activities.ExtractStructuredOutput, error) {
		calls["ExtractStructuredActivity"]++
		return activities.ExtractStructuredOutput{Extraction: analysis.NotMedical()}, nil
	})
	registerActivityName(env, "VerifyActivity", func(context.Context, activities.VerifyInput) (activities.VerifyOutput, error) {
		calls["VerifyActivity"]++
		return activities.VerifyOutput{}, nil
	})
	registerActivityName(env, "SummarizeActivity", func(context.Context, activities.SummarizeInput) (activities.SummarizeOutput, error) {
		calls["SummarizeActivity"]++
		return activities.SummarizeOutput{}, nil
	})
}

func TestDocumentAnalysisWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerStages(env, map[string]int{})

	ex := analysis.ExtractionResult{
		IsMedical:   true,
		PatientName: "Asha Rao",
		Medications: []analysis.MedicationMention{{Name: "Glycomet", Dosage: "500mg", Frequency: "BD"}},
		Diseases:    []string{"Type 2 Diabetes"},
	}
	rec := analysis.VerifiedRecord{
		Diseases:  []analysis.DiseaseCorrection{{Input: "Type 2 Diabetes", Corrected: "Type 2 Diabetes Mellitus", Confidence: 0.9}},
		Medicines: []analysis.MedicineCorrection{{Input: "Glycomet", Corrected: "Glycomet", Confidence: 0.95}},
		Warnings:  []string{},
		Verified:  true,
	}
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).Return(activities.ExtractTextOutput{Text: "Rx Glycomet 500mg"}, nil)
	env.OnActivity("ExtractStructuredActivity", mock.Anything, mock.MatchedBy(func(in activities.ExtractStructuredInput) bool {
		return in.Text == "Rx Glycomet 500mg" && in.Document.MediaType == "image/png"
	})).Return(activities.ExtractStructuredOutput{Extraction: ex}, nil)
	env.OnActivity("VerifyActivity", mock.Anything, activities.VerifyInput{Extraction: ex}).Return(activities.VerifyOutput{Record: rec}, nil)
	env.OnActivity("SummarizeActivity", mock.Anything, activities.SummarizeInput{Record: rec}).Return(activities.SummarizeOutput{Summary: "You are being treated for diabetes."}, nil)

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{JobID: "job-1", Document: activities.DocumentPayload{Name: "rx.png", Data: pngBytes}})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out analysis.Result
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, analysis.StatusOK, out.Status)
	require.Equal(t, "Asha Rao", out.PatientName)
	require.Equal(t, "rx.png", out.DocumentName)
	require.Equal(t, "image/png", out.MediaType)
	require.Equal(t, "You are being treated for diabetes.", out.Summary)
	require.True(t, out.Corrected)

	val, err := env.QueryWorkflow(QueryGetAnalysisStatus)
	require.NoError(t, err)
	var st AnalysisStatus
	require.NoError(t, val.Get(&st))
	require.Equal(t, "ok", st.Status)
	require.Equal(t, "done", st.Steps[StepSummarize])
}

func TestDocumentAnalysisWorkflowShortCircuitsNonMedical(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	calls := map[string]int{}
	registerStages(env, calls)

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{JobID: "job-2", Document: activities.DocumentPayload{Name: "scan.pdf", Data: []byte("%PDF-1.4\n")}})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out analysis.Result
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, analysis.StatusNotMedical, out.Status)
	require.Equal(t, analysis.NotMedicalMessage, out.Message)
	require.Equal(t, 1, calls["ExtractStructuredActivity"])
	require.Zero(t, calls["VerifyActivity"])
	require.Zero(t, calls["SummarizeActivity"])
}

func TestDocumentAnalysisWorkflowUnsupported(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	calls := map[string]int{}
	registerStages(env, calls)

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{JobID: "job-3", Document: activities.DocumentPayload{Name: "notes.docx", Data: []byte("PK\x03\x04 word")}})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out analysis.Result
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, analysis.StatusUnsupported, out.Status)
	require.Empty(t, calls)
}

func TestDocumentAnalysisWorkflowActivityFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerStages(env, map[string]int{})

	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).Return(activities.ExtractTextOutput{}, errors.New("worker shutting down")).Once()

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{JobID: "job-4", Document: activities.DocumentPayload{Name: "rx.png", Data: pngBytes}})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	env.AssertExpectations(t)

	val, err := env.QueryWorkflow(QueryGetAnalysisStatus)
	require.NoError(t, err)
	var st AnalysisStatus
	require.NoError(t, val.Get(&st))
	require.Equal(t, "failed", st.Status)
	require.Equal(t, "failed", st.Steps[StepExtractText])
}
