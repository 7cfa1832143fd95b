package activities

import "curebird/internal/analysis"

// DocumentPayload carries an uploaded document through activity inputs.
// Payloads are bounded by the API before a job is started.
type DocumentPayload struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
}

type ExtractTextInput struct {
	Document DocumentPayload `json:"document"`
}

type ExtractTextOutput struct {
	Text string `json:"text"`
}

type ExtractStructuredInput struct {
	Document DocumentPayload `json:"document"`
	Text     string          `json:"text"`
}

type ExtractStructuredOutput struct {
	Extraction analysis.ExtractionResult `json:"extraction"`
}

type VerifyInput struct {
	Extraction analysis.ExtractionResult `json:"extraction"`
}

type VerifyOutput struct {
	Record analysis.VerifiedRecord `json:"record"`
}

type SummarizeInput struct {
	Record analysis.VerifiedRecord `json:"record"`
}

type SummarizeOutput struct {
	Summary string `json:"summary"`
}
