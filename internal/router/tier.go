package router

import (
	"strings"
	"unicode"

	"curebird/internal/providers"
)

// clinicalKeywords route a message to the large tier regardless of length.
// They match whole words, with an optional plural "s"/"es".
var clinicalKeywords = map[string]struct{}{
	"fever": {}, "cough": {}, "headache": {}, "infection": {}, "diabetes": {},
	"hypertension": {}, "anemia": {}, "gastritis": {}, "bronchitis": {},
	"pneumonia": {}, "fracture": {}, "pain": {}, "painful": {}, "medicine": {},
	"medication": {}, "tablet": {}, "dose": {}, "dosage": {}, "prescription": {},
	"blood": {}, "report": {}, "rash": {},
}

// clinicalStems match any word that starts with them.
var clinicalStems = []string{"diagnos", "allerg", "vomit", "symptom"}

func isClinical(word string) bool {
	for _, w := range []string{word, strings.TrimSuffix(word, "s"), strings.TrimSuffix(word, "es")} {
		if _, ok := clinicalKeywords[w]; ok {
			return true
		}
	}
	for _, stem := range clinicalStems {
		if strings.HasPrefix(word, stem) {
			return true
		}
	}
	return false
}

var greetings = map[string]struct{}{
	"hi": {}, "hii": {}, "hello": {}, "hey": {}, "yo": {}, "namaste": {},
	"thanks": {}, "thank": {}, "ok": {}, "okay": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
}

// shortMessageWords is the word count at or below which a non-clinical
// message is served by the small tier.
const shortMessageWords = 4

// SelectTier classifies message intent. Clinical content goes to the large
// tier; greetings and short follow-ups go to the small tier.
func SelectTier(message string) providers.Tier {
	lower := strings.ToLower(strings.TrimSpace(message))
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, w := range words {
		if isClinical(w) {
			return providers.TierLarge
		}
	}
	if len(words) == 0 {
		return providers.TierSmall
	}
	if isGreeting(words) || len(words) <= shortMessageWords {
		return providers.TierSmall
	}
	return providers.TierLarge
}

func isGreeting(words []string) bool {
	if _, ok := greetings[words[0]]; ok {
		return len(words) <= shortMessageWords
	}
	if len(words) >= 2 {
		if _, ok := greetings[words[0]+" "+words[1]]; ok {
			return len(words) <= shortMessageWords+1
		}
	}
	return false
}
