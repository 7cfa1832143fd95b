package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"curebird/internal/activities"
	"curebird/internal/analysis"
	"curebird/internal/extract"
)

const QueryGetAnalysisStatus = "GetAnalysisStatus"

const (
	StepExtractText       = "extract_text"
	StepExtractStructured = "extract_structured"
	StepVerify            = "verify"
	StepSummarize         = "summarize"
)

// DocumentAnalysisWorkflow runs the four analysis stages as activities in
// order. Each activity makes one attempt because the provider dispatcher
// inside it already retries and fails over.
func DocumentAnalysisWorkflow(ctx workflow.Context, input DocumentAnalysisInput) (analysis.Result, error) {
	status := AnalysisStatus{
		JobID:        input.JobID,
		DocumentName: input.Document.Name,
		CurrentStep:  "init",
		Status:       "processing",
		Steps:        map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetAnalysisStatus, func() (AnalysisStatus, error) {
		return status, nil
	}); err != nil {
		return analysis.Result{}, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	doc := extract.NewDocument(input.Document.Name, input.Document.MediaType, input.Document.Data)
	payload := activities.DocumentPayload{Name: doc.Name, MediaType: doc.MediaType, Data: doc.Data}
	finish := func(r analysis.Result, state string) (analysis.Result, error) {
		r.DocumentName = doc.Name
		r.MediaType = doc.MediaType
		status.Status = state
		status.CurrentStep = "done"
		return r, nil
	}
	fail := func(err error) (analysis.Result, error) {
		status.Status = "failed"
		status.FailReason = err.Error()
		status.Steps[status.CurrentStep] = "failed"
		return analysis.Result{}, err
	}

	if doc.Kind() == extract.KindUnknown {
		return finish(analysis.UnsupportedResult(), string(analysis.StatusUnsupported))
	}

	begin(&status, StepExtractText)
	var textOut activities.ExtractTextOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractTextActivity", activities.ExtractTextInput{Document: payload}).Get(ctx, &textOut); err != nil {
		return fail(err)
	}
	status.Steps[StepExtractText] = "done"

	begin(&status, StepExtractStructured)
	var exOut activities.ExtractStructuredOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractStructuredActivity", activities.ExtractStructuredInput{Document: payload, Text: textOut.Text}).Get(ctx, &exOut); err != nil {
		return fail(err)
	}
	status.Steps[StepExtractStructured] = "done"
	if !exOut.Extraction.IsMedical {
		workflow.GetLogger(ctx).Info("document is not medical", "job_id", input.JobID)
		return finish(analysis.NotMedicalResult(), string(analysis.StatusNotMedical))
	}

	begin(&status, StepVerify)
	var verOut activities.VerifyOutput
	if err := workflow.ExecuteActivity(ctx, "VerifyActivity", activities.VerifyInput{Extraction: exOut.Extraction}).Get(ctx, &verOut); err != nil {
		return fail(err)
	}
	status.Steps[StepVerify] = "done"

	begin(&status, StepSummarize)
	var sumOut activities.SummarizeOutput
	if err := workflow.ExecuteActivity(ctx, "SummarizeActivity", activities.SummarizeInput{Record: verOut.Record}).Get(ctx, &sumOut); err != nil {
		return fail(err)
	}
	status.Steps[StepSummarize] = "done"

	return finish(analysis.CompletedResult(exOut.Extraction, verOut.Record, sumOut.Summary), string(analysis.StatusOK))
}

func begin(status *AnalysisStatus, step string) {
	status.CurrentStep = step
	status.Steps[step] = "processing"
}
