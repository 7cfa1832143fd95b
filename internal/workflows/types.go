package workflows

import "curebird/internal/activities"

type DocumentAnalysisInput struct {
	JobID    string                     `json:"job_id"`
	Document activities.DocumentPayload `json:"document"`
}

// AnalysisStatus is what the status query returns while a job runs.
type AnalysisStatus struct {
	JobID        string            `json:"job_id"`
	DocumentName string            `json:"document_name"`
	CurrentStep  string            `json:"current_step"`
	Status       string            `json:"status"`
	Steps        map[string]string `json:"steps"`
	FailReason   string            `json:"fail_reason,omitempty"`
}
