package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"baucheck/internal/compare"
	"baucheck/internal/extraction"
	"baucheck/internal/port"
)

type textRenderer struct {
	now func() time.Time
}

// NewTextRenderer creates a ReportRenderer producing a plain-text compliance
// report. A typesetting service can replace it behind the same port.
func NewTextRenderer() port.ReportRenderer {
	return &textRenderer{now: time.Now}
}

func (r *textRenderer) RenderComplianceReport(_ context.Context, projectName string, raw json.RawMessage) ([]byte, string, error) {
	var verdict compare.Verdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, "", fmt.Errorf("decoding verdict: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Prüfbericht: %s\n", projectName)
	fmt.Fprintf(&b, "Erstellt am: %s\n", r.now().Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "Gesamtergebnis: %s\n\n", overallLabel(verdict.OverallStatus))

	for _, field := range extraction.AllFields {
		fv, ok := verdict.Fields[field]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s\n", strings.ToUpper(string(field)))
		fmt.Fprintf(&b, "  Bewertung: %s\n", fv.ComplianceStatus)
		writeList(&b, "Probleme", fv.Issues)
		writeList(&b, "Empfohlene Maßnahmen", fv.RecommendedActions)
		writeList(&b, "Weitere Prüfungen", fv.AdditionalChecks)
		b.WriteString("\n")
	}

	return []byte(b.String()), "text/plain; charset=utf-8", nil
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "    - %s\n", item)
	}
}

func overallLabel(status string) string {
	switch status {
	case compare.StatusCompliant:
		return "konform"
	case compare.StatusNonCompliant:
		return "nicht konform"
	default:
		return status
	}
}
