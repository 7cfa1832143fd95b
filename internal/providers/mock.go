package providers

import (
	"context"
	"strings"
)

// MockProvider returns deterministic canned output keyed on the request
// operation. It lets the pipeline run end to end without any API key.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

const (
	mockExtraction = `{"is_medical":true,"patient_name":"","medications":[{"name":"Metformin","dosage":"500mg","frequency":"twice daily"}],"diseases":["Diabetes"],"digital_copy":"1. Metformin\nDosage: 500mg\nFrequency: twice daily\nDiagnosis: diabetes"}`
	mockVerified   = `{"diseases":[{"input":"Diabetes","corrected":"Type 2 Diabetes Mellitus","confidence":0.9}],"medicines":[{"input":"Metformin","corrected":"Metformin","dosage":"500mg","frequency":"twice daily","salt_or_composition":"Metformin Hydrochloride","valid_for_disease":true,"alternatives":["Glycomet","Glucophage"],"confidence":0.95,"is_corrected":false}],"warnings":[]}`
)

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: ResolveModel("mock", req.Tier), Key: "mock"}
	op := strings.ToLower(req.Operation)
	text := "Hello! I'm the Curebird health assistant (mock mode). How can I help you today?\n\n*This is not medical advice.*"
	switch {
	case strings.Contains(op, "extract"):
		text = mockExtraction
	case strings.Contains(op, "verify"):
		text = mockVerified
	case strings.Contains(op, "history"):
		text = "The patient's recent records describe a diabetes diagnosis managed with metformin 500mg twice daily; no acute findings are noted. This is deterministic mock output."
	case strings.Contains(op, "summar"):
		text = "Your document mentions diabetes, a condition where blood sugar runs high. It lists Metformin 500mg taken twice daily, which is a common medicine for it. Please confirm any changes with your doctor. This summary is for information only and is not medical advice."
	}
	return GenerateResponse{Text: text}, info, nil
}
