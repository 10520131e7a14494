package completeness

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"baucheck/internal/compare"
	"baucheck/internal/corpus"
	"baucheck/internal/extraction"
)

const checkLabel extraction.Field = "completeness_check"

// wireReport is the shape the reasoning service answers with. It is
// normalized into a Report so missing catalog entries still appear.
type wireReport struct {
	ApplicationType string `json:"application_type"`
	Documents       []struct {
		DocumentName   string `json:"document_name"`
		PresenceStatus string `json:"presence_status"`
		ActionNeeded   string `json:"action_needed"`
	} `json:"documents"`
}

// Checker determines which required documents a submission contains. It runs
// independently of attribute extraction: one broad pass per image, reconciled
// into a structured report cross-referenced against the fixed checklist.
type Checker struct {
	extractor  *extraction.Extractor
	reconciler *extraction.Reconciler
}

// NewChecker creates a Checker sharing the extraction pipeline's concurrency
// bounds.
func NewChecker(e *extraction.Extractor, r *extraction.Reconciler) *Checker {
	return &Checker{extractor: e, reconciler: r}
}

// Check produces the completeness report for a corpus. The report always
// enumerates every checklist entry exactly once; entries the reasoning
// service did not mention are recorded as unclear. A response that is not
// valid JSON surfaces as a ParseError.
func (c *Checker) Check(ctx context.Context, cor *corpus.Corpus) (*Report, error) {
	opinions, err := c.extractor.ExtractWithPrompt(ctx, checkLabel, checkPrompt(), cor)
	if err != nil {
		return nil, err
	}

	raw, err := c.reconciler.ReconcileWithPrompt(ctx, checkLabel, reconcilePrompt(), opinions)
	if err != nil {
		return nil, err
	}

	cleaned := compare.StripFencing(raw)
	var wire wireReport
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	return normalize(&wire), nil
}

// normalize maps the wire answer onto the fixed catalog. Unknown document
// names are dropped, unknown presence values coerce to unclear, and the
// overall status is computed from the entries rather than trusted from the
// answer.
func normalize(wire *wireReport) *Report {
	byName := make(map[string]Entry, len(wire.Documents))
	for _, d := range wire.Documents {
		name := matchChecklistName(d.DocumentName)
		if name == "" {
			continue
		}
		presence := d.PresenceStatus
		switch presence {
		case PresencePresent, PresenceNotMentioned, PresenceUnclear:
		default:
			presence = PresenceUnclear
		}
		byName[name] = Entry{DocumentName: name, PresenceStatus: presence, ActionNeeded: d.ActionNeeded}
	}

	report := &Report{
		ApplicationType: strings.TrimSpace(wire.ApplicationType),
		Status:          StatusComplete,
		Entries:         make([]Entry, 0, len(Checklist)),
	}
	for _, name := range Checklist {
		entry, ok := byName[name]
		if !ok {
			entry = Entry{
				DocumentName:   name,
				PresenceStatus: PresenceUnclear,
				ActionNeeded:   fmt.Sprintf("%s im Antrag prüfen", name),
			}
		}
		if entry.PresenceStatus != PresencePresent {
			report.Status = StatusIncomplete
		}
		report.Entries = append(report.Entries, entry)
	}
	return report
}

// matchChecklistName maps a returned document name onto the catalog,
// tolerating case and whitespace drift.
func matchChecklistName(name string) string {
	name = strings.TrimSpace(name)
	for _, want := range Checklist {
		if strings.EqualFold(name, want) {
			return want
		}
	}
	return ""
}

func checkPrompt() string {
	return fmt.Sprintf(`You are an experienced clerk in a German building authority (Bauamt).
Examine the provided image and report which of the following application documents it shows or references:
- %s

Also note the application procedure type if identifiable (for example vereinfachtes Verfahren, Genehmigungsfreistellung, Bauantrag).
Answer as short bullet points naming only documents visible or referenced in this image. If none apply, answer "not found".`, strings.Join(Checklist, "\n- "))
}

func reconcilePrompt() string {
	return fmt.Sprintf(`You will receive per-page observations about one German building application.
Cross-reference them against this required-documents checklist and judge each entry:
- %s

Answer with a single JSON object and nothing else, shaped as:
{
  "application_type": "<procedure type or 'unbekannt'>",
  "documents": [
    {"document_name": "<exact checklist name>", "presence_status": "present" | "not_mentioned" | "unclear", "action_needed": "<German instruction, empty if present>"}
  ]
}

Rules:
- Emit exactly one entry per checklist name, using the names verbatim.
- Use "not_mentioned" when no observation references the document, "unclear" when observations conflict.`, strings.Join(Checklist, "\n- "))
}
