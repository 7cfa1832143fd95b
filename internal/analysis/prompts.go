package analysis

import (
	"encoding/json"
	"strings"
)

const extractionSystemPrompt = `You are a clinical document reader for Curebird, an Indian telehealth service.

Step 1: decide whether the document is a medical document (prescription, lab report, discharge summary, medical bill or similar). If it is not, reply with {"is_medical": false} and nothing else.

Step 2: if it is medical, extract:
- patient_name: the patient's name, or "" if absent
- medications: every medicine as {"name", "dosage", "frequency"}, copied as written even if misspelled
- diseases: every diagnosis, condition or complaint mentioned
- digital_copy: a faithful markdown transcript of the whole document

Reply with ONLY a JSON object of this exact shape:
{"is_medical": true, "patient_name": "", "medications": [{"name": "", "dosage": "", "frequency": ""}], "diseases": [""], "digital_copy": ""}`

const verifySystemPrompt = `You are a clinical pharmacist auditing machine-extracted prescription data for the Indian market.

For each disease: correct spelling and map it to standard medical nomenclature.

For each medicine:
- Reconstruct the intended name using phonetic similarity together with the listed diseases. Handwriting and OCR errors are common.
- Preserve brand identity. If the input is a brand name, the corrected value must be a brand name. Never replace a brand with its generic; put the generic salt in salt_or_composition instead.
- Set valid_for_disease to whether the medicine is appropriate for at least one listed disease.
- List market-available brand-name alternatives, not bare generic names.
- Give a confidence between 0 and 1 for each correction and set is_corrected when the name changed.
- If a name cannot be resolved, set corrected to "uncertain" with a low confidence. Do not guess.
- If several corrections are plausible, use the most likely one as corrected, list the others first in alternatives and add a warning naming them.

Add a warning for anything a clinician should double-check.

Reply with ONLY a JSON object of this exact shape:
{"diseases": [{"input": "", "corrected": "", "confidence": 0.0}], "medicines": [{"input": "", "corrected": "", "dosage": "", "frequency": "", "salt_or_composition": "", "valid_for_disease": true, "alternatives": [""], "confidence": 0.0, "is_corrected": false}], "warnings": [""]}`

const summarySystemPrompt = `You explain verified prescription data to patients in plain language.

Rules:
- At most 120 words, in short paragraphs, no headings, no JSON, no code.
- Translate clinical terms into everyday words.
- Mention each medicine with its dosage and frequency.
- If automatic corrections were applied, say so plainly and suggest confirming with the prescribing doctor.
- End with the sentence: "This summary is for information only and is not medical advice."`

const historySystemPrompt = `You are an expert medical AI assistant. Below are the contents (including OCR and vision-extracted text from images and PDFs) of a patient's last few medical records.

Write a CONCISE, single-paragraph summary of their recent medical history:
- Identify main diagnoses, key trends (improving or worsening) and any critical alerts.
- Mention abnormal values if a report shows them.
- Use a professional, empathetic tone.
- Do NOT use bullet points or headings.`

func extractionUserPrompt(ocrText string) string {
	var b strings.Builder
	b.WriteString("Read the attached medical document and reply with the JSON object.")
	if t := strings.TrimSpace(ocrText); t != "" {
		b.WriteString("\n\nOCR text of the same document, which may contain recognition errors:\n")
		b.WriteString(t)
	}
	return b.String()
}

func extractionTextPrompt(text string) string {
	return "The following text was extracted from an uploaded document. Reply with the JSON object.\n\nDocument text:\n" + text
}

func verifyUserPrompt(ex ExtractionResult) string {
	payload, _ := json.MarshalIndent(struct {
		Diseases    []string            `json:"diseases"`
		Medications []MedicationMention `json:"medications"`
	}{ex.Diseases, ex.Medications}, "", "  ")
	return "Audit this extraction:\n" + string(payload)
}

func summaryUserPrompt(rec VerifiedRecord) string {
	payload, _ := json.MarshalIndent(rec, "", "  ")
	corrected := "no"
	if rec.AnyCorrected() {
		corrected = "yes"
	}
	return "Automatic corrections applied: " + corrected + "\n\nVerified record:\n" + string(payload)
}

func historyUserPrompt(records string) string {
	return "Records Content:\n" + records + "\n\nSummary:"
}
