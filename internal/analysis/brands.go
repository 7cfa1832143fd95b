package analysis

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// brandGenerics maps common Indian-market brands to their generic salt.
var brandGenerics = map[string]string{
	"dolo":       "Paracetamol",
	"crocin":     "Paracetamol",
	"calpol":     "Paracetamol",
	"combiflam":  "Ibuprofen + Paracetamol",
	"brufen":     "Ibuprofen",
	"glycomet":   "Metformin",
	"glucophage": "Metformin",
	"januvia":    "Sitagliptin",
	"augmentin":  "Amoxicillin + Clavulanic Acid",
	"azithral":   "Azithromycin",
	"zithromax":  "Azithromycin",
	"pan":        "Pantoprazole",
	"pantocid":   "Pantoprazole",
	"omez":       "Omeprazole",
	"rantac":     "Ranitidine",
	"telma":      "Telmisartan",
	"amlong":     "Amlodipine",
	"ecosprin":   "Aspirin",
	"lipitor":    "Atorvastatin",
	"atorva":     "Atorvastatin",
	"allegra":    "Fexofenadine",
	"cetzine":    "Cetirizine",
	"montair":    "Montelukast",
	"thyronorm":  "Levothyroxine",
	"eltroxin":   "Levothyroxine",
}

// GenericFor returns the generic salt for a brand-name input such as
// "Dolo 650" or "Tab. Dolo 650". ok is false when the name is not a known brand.
func GenericFor(name string) (string, bool) {
	g, ok := brandGenerics[brandKey(name)]
	return g, ok
}

// dosageForms are prescription prefixes such as "Tab." that precede the brand.
var dosageForms = map[string]struct{}{
	"tab": {}, "tabs": {}, "tablet": {}, "tablets": {},
	"cap": {}, "caps": {}, "capsule": {}, "capsules": {},
	"syp": {}, "syr": {}, "syrup": {}, "inj": {}, "injection": {},
	"susp": {}, "suspension": {}, "oint": {}, "drops": {},
}

// saltNoise are words that do not identify an ingredient.
var saltNoise = map[string]struct{}{
	"and": {}, "with": {}, "acid": {}, "potassium": {}, "sodium": {},
	"hydrochloride": {}, "hcl": {}, "ip": {}, "usp": {}, "bp": {},
	"mg": {}, "mcg": {}, "ml": {}, "g": {},
}

// saltSpellings folds regional spellings onto one ingredient name.
var saltSpellings = map[string]string{
	"amoxycillin":   "amoxicillin",
	"acetaminophen": "paracetamol",
	"clavulanate":   "clavulanic",
	"levothyroxin":  "levothyroxine",
	"thyroxine":     "levothyroxine",
}

func letterFields(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) })
}

func brandKey(name string) string {
	for _, f := range letterFields(name) {
		if _, form := dosageForms[f]; !form {
			return f
		}
	}
	return ""
}

// ingredients returns the sorted, de-duplicated ingredient names in s.
func ingredients(s string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, f := range letterFields(s) {
		if _, noise := saltNoise[f]; noise {
			continue
		}
		if _, form := dosageForms[f]; form {
			continue
		}
		if canon, ok := saltSpellings[f]; ok {
			f = canon
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// sameDrug reports whether a and b name the same ingredient set, ignoring
// order, strengths, and spelling variants.
func sameDrug(a, b string) bool {
	ia, ib := ingredients(a), ingredients(b)
	return len(ia) > 0 && slices.Equal(ia, ib)
}

// enforceBrandPreservation undoes any brand-to-generic swap in rec: the
// brand is restored, the generic moves to the composition, and a warning is
// added. Bare generics of the brand are dropped from its alternatives.
func enforceBrandPreservation(rec *VerifiedRecord) {
	for i := range rec.Medicines {
		m := &rec.Medicines[i]
		generic, ok := GenericFor(m.Input)
		if !ok {
			continue
		}
		if sameDrug(m.Corrected, generic) {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("Kept brand name %q; the suggested generic %q was moved to the composition.", m.Input, m.Corrected))
			m.Corrected = m.Input
			m.IsCorrected = false
			if strings.TrimSpace(m.SaltOrComposition) == "" {
				m.SaltOrComposition = generic
			}
		}
		alts := m.Alternatives[:0]
		for _, a := range m.Alternatives {
			if !sameDrug(a, generic) {
				alts = append(alts, a)
			}
		}
		m.Alternatives = alts
	}
}
