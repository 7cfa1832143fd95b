package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"curebird/internal/providers"
	"curebird/internal/router"
)

// Uncertain marks a name the audit could not resolve.
const Uncertain = "uncertain"

// Verifier is Core 2. It fails open: when the audit cannot run, the
// extraction is passed through unverified.
type Verifier struct {
	completer router.Completer
	logger    zerolog.Logger
}

func NewVerifier(c router.Completer, logger zerolog.Logger) *Verifier {
	return &Verifier{completer: c, logger: logger.With().Str("component", "core2").Logger()}
}

func (v *Verifier) Verify(ctx context.Context, ex ExtractionResult) VerifiedRecord {
	if ex.Empty() {
		return PassThrough(ex)
	}
	resp, info, err := v.completer.Complete(ctx, providers.GenerateRequest{
		Operation:   OpVerify,
		Tier:        providers.TierLarge,
		JSON:        true,
		Temperature: 0,
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: verifySystemPrompt},
			{Role: providers.RoleUser, Content: verifyUserPrompt(ex)},
		},
	})
	if err != nil {
		v.logger.Warn().Err(err).Str("provider", info.Name).Msg("core2.failed_open")
		return PassThrough(ex)
	}
	var rec VerifiedRecord
	if err := decodeStrict(resp.Text, verifiedSchema, &rec); err != nil {
		v.logger.Warn().Err(err).Str("provider", info.Name).Msg("core2.failed_open")
		return PassThrough(ex)
	}
	rec.Verified = true
	return normalizeRecord(rec)
}

// PassThrough reinterprets an extraction as an unverified record.
func PassThrough(ex ExtractionResult) VerifiedRecord {
	rec := emptyRecord()
	for _, d := range ex.Diseases {
		rec.Diseases = append(rec.Diseases, DiseaseCorrection{Input: d, Corrected: d})
	}
	for _, m := range ex.Medications {
		rec.Medicines = append(rec.Medicines, MedicineCorrection{
			Input:        m.Name,
			Corrected:    m.Name,
			Dosage:       m.Dosage,
			Frequency:    m.Frequency,
			Alternatives: []string{},
		})
	}
	if !ex.Empty() {
		rec.Warnings = append(rec.Warnings, "Medicine names could not be verified automatically. Please confirm them with your doctor or pharmacist.")
	}
	return rec
}

func normalizeRecord(rec VerifiedRecord) VerifiedRecord {
	if rec.Diseases == nil {
		rec.Diseases = []DiseaseCorrection{}
	}
	if rec.Medicines == nil {
		rec.Medicines = []MedicineCorrection{}
	}
	if rec.Warnings == nil {
		rec.Warnings = []string{}
	}
	for i := range rec.Diseases {
		d := &rec.Diseases[i]
		d.Confidence = clamp01(d.Confidence)
		if strings.TrimSpace(d.Corrected) == "" {
			d.Corrected = Uncertain
			d.Confidence = 0
		}
	}
	for i := range rec.Medicines {
		m := &rec.Medicines[i]
		m.Confidence = clamp01(m.Confidence)
		if m.Alternatives == nil {
			m.Alternatives = []string{}
		}
		if strings.TrimSpace(m.Corrected) == "" {
			m.Corrected = Uncertain
			m.Confidence = 0
		}
		if strings.EqualFold(m.Corrected, Uncertain) {
			m.IsCorrected = false
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("Could not identify medicine %q; please confirm it with your pharmacist.", m.Input))
		}
	}
	enforceBrandPreservation(&rec)
	return rec
}
