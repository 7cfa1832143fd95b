package analysis

// Operation names tag provider requests for routing, mocks and the call audit.
const (
	OpExtract   = "extract_structured"
	OpVerify    = "verify_record"
	OpSummarize = "summarize_record"
	OpHistory   = "summarize_history"
)

type MedicationMention struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// ExtractionResult is Core 1 output. When IsMedical is false every other
// field is empty and must be ignored.
type ExtractionResult struct {
	IsMedical   bool                `json:"is_medical"`
	PatientName string              `json:"patient_name"`
	Medications []MedicationMention `json:"medications"`
	Diseases    []string            `json:"diseases"`
	DigitalCopy string              `json:"digital_copy"`
}

// NotMedical is the fail-closed extraction.
func NotMedical() ExtractionResult {
	return ExtractionResult{Medications: []MedicationMention{}, Diseases: []string{}}
}

func (e ExtractionResult) Empty() bool {
	return len(e.Medications) == 0 && len(e.Diseases) == 0
}

type DiseaseCorrection struct {
	Input      string  `json:"input"`
	Corrected  string  `json:"corrected"`
	Confidence float64 `json:"confidence"`
}

type MedicineCorrection struct {
	Input             string   `json:"input"`
	Corrected         string   `json:"corrected"`
	Dosage            string   `json:"dosage"`
	Frequency         string   `json:"frequency"`
	SaltOrComposition string   `json:"salt_or_composition"`
	ValidForDisease   bool     `json:"valid_for_disease"`
	Alternatives      []string `json:"alternatives"`
	Confidence        float64  `json:"confidence"`
	IsCorrected       bool     `json:"is_corrected"`
}

// VerifiedRecord is Core 2 output. Verified is false when the audit did not
// run or failed and the record is the extraction passed through unchanged.
type VerifiedRecord struct {
	Diseases  []DiseaseCorrection  `json:"diseases"`
	Medicines []MedicineCorrection `json:"medicines"`
	Warnings  []string             `json:"warnings"`
	Verified  bool                 `json:"verified"`
}

// AnyCorrected reports whether the audit changed any name.
func (r VerifiedRecord) AnyCorrected() bool {
	for _, m := range r.Medicines {
		if m.IsCorrected {
			return true
		}
	}
	for _, d := range r.Diseases {
		if d.Corrected != "" && d.Corrected != d.Input {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusOK          Status = "ok"
	StatusNotMedical  Status = "not_medical"
	StatusUnsupported Status = "unsupported"
)

const (
	NotMedicalMessage  = "Please upload a valid medical document (prescription, lab report or discharge summary)."
	UnsupportedMessage = "Unsupported file type. Please upload an image (PNG, JPEG, WEBP) or a PDF."
)

// Result is the pipeline's terminal value. Every run produces one.
type Result struct {
	Status       Status           `json:"status"`
	Message      string           `json:"message,omitempty"`
	DocumentName string           `json:"document_name,omitempty"`
	MediaType    string           `json:"media_type,omitempty"`
	PatientName  string           `json:"patient_name"`
	Extraction   ExtractionResult `json:"extraction"`
	Verified     VerifiedRecord   `json:"verified"`
	Summary      string           `json:"summary,omitempty"`
	Corrected    bool             `json:"corrected"`
}

func emptyRecord() VerifiedRecord {
	return VerifiedRecord{Diseases: []DiseaseCorrection{}, Medicines: []MedicineCorrection{}, Warnings: []string{}}
}

func UnsupportedResult() Result {
	return Result{Status: StatusUnsupported, Message: UnsupportedMessage, Extraction: NotMedical(), Verified: emptyRecord()}
}

func NotMedicalResult() Result {
	return Result{Status: StatusNotMedical, Message: NotMedicalMessage, Extraction: NotMedical(), Verified: emptyRecord()}
}

func CompletedResult(ex ExtractionResult, rec VerifiedRecord, summary string) Result {
	return Result{
		Status:      StatusOK,
		PatientName: ex.PatientName,
		Extraction:  ex,
		Verified:    rec,
		Summary:     summary,
		Corrected:   rec.AnyCorrected(),
	}
}
