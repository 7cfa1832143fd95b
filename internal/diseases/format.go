package diseases

import (
	"context"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func RiskLevel(cases int64) string {
	switch {
	case cases > 100000:
		return "High"
	case cases > 10000:
		return "Medium"
	default:
		return "Low"
	}
}

// FormatContext renders entries as the numbered trend list used in prompts.
func FormatContext(entries []Entry) string {
	var b strings.Builder
	b.WriteString("Current Disease Trends in India:\n")
	for i, e := range entries {
		printer.Fprintf(&b, "%d. %s: %d cases (%s)\n", i+1, e.Disease, e.Outbreaks, e.Year)
	}
	return b.String()
}

type DiseaseView struct {
	Name      string `json:"name"`
	Cases     int64  `json:"cases"`
	RiskLevel string `json:"risk_level"`
	Year      string `json:"year"`
}

type ContextView struct {
	Success     bool          `json:"success"`
	Diseases    []DiseaseView `json:"diseases,omitempty"`
	LastUpdated string        `json:"last_updated,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// View is the top entries shaped for the assistant context endpoint.
func (s *Store) View(ctx context.Context) ContextView {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ContextView{Error: "Disease trend data unavailable"}
	}
	entries, _ := s.Top(ctx, TopN)
	out := make([]DiseaseView, 0, len(entries))
	for _, e := range entries {
		out = append(out, DiseaseView{Name: e.Disease, Cases: e.Outbreaks, RiskLevel: RiskLevel(e.Outbreaks), Year: e.Year})
	}
	return ContextView{Success: true, Diseases: out, LastUpdated: snap.LoadedAt.UTC().Format("2006-01-02T15:04:05Z")}
}
