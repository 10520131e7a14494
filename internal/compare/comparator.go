package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"baucheck/internal/extraction"
	"baucheck/internal/port"
)

// verdictSchema validates the wire shape of a comparison response before it
// is decoded. Semantic correctness of the judgment stays with the reasoning
// service; this only guards against malformed output.
const verdictSchema = `{
	"type": "object",
	"required": ["overall_status", "fields"],
	"properties": {
		"overall_status": {"enum": ["compliant", "non_compliant"]},
		"fields": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"required": ["compliance_status"],
				"properties": {
					"compliance_status": {"type": "string"},
					"issues": {"type": "array", "items": {"type": "string"}},
					"recommended_actions": {"type": "array", "items": {"type": "string"}},
					"additional_checks": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

var compiledVerdictSchema = jsonschema.MustCompileString("verdict.json", verdictSchema)

// Comparator delegates the compliance judgment between a project and a
// zoning plan to the reasoning service and validates the shape of what comes
// back. It computes no compliance logic of its own.
type Comparator struct {
	reasoner port.Reasoner
}

// NewComparator creates a Comparator.
func NewComparator(r port.Reasoner) *Comparator {
	return &Comparator{reasoner: r}
}

// Compare produces the field-by-field verdict for a project against a zoning
// plan. Both attribute sets must share the field catalog. A response that is
// not valid JSON, fails shape validation, or drops a field present in both
// inputs surfaces as a ParseError carrying the raw response.
func (c *Comparator) Compare(ctx context.Context, project, plan *extraction.AttributeSet) (*Verdict, error) {
	prompt, err := buildComparePrompt(project, plan)
	if err != nil {
		return nil, fmt.Errorf("building comparison prompt: %w", err)
	}

	raw, err := c.reasoner.Invoke(ctx, comparisonSystemPrompt, []port.ContentPart{port.TextPart(prompt)})
	if err != nil {
		return nil, fmt.Errorf("comparison call: %w", err)
	}

	cleaned := StripFencing(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if err := compiledVerdictSchema.Validate(doc); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	for field := range project.Fields {
		if _, ok := plan.Fields[field]; !ok {
			continue
		}
		if _, ok := verdict.Fields[field]; !ok {
			return nil, &ParseError{Raw: raw, Err: fmt.Errorf("verdict omits field %s", field)}
		}
	}

	return &verdict, nil
}

// StripFencing removes a markdown code-block wrapper from a response when
// present. It recognizes ```json and bare ``` fences and returns the inner
// text; unfenced input is returned trimmed.
func StripFencing(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag on the opening fence line.
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
