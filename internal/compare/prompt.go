package compare

import (
	"encoding/json"
	"fmt"
	"strings"

	"baucheck/internal/extraction"
)

const comparisonSystemPrompt = `You are an experienced German building-law reviewer. You will receive the extracted attributes of a building application and of the development plan (Bebauungsplan) governing its site.
Judge, attribute by attribute, whether the application conforms to the plan.

Answer with a single JSON object and nothing else, shaped as:
{
  "overall_status": "compliant" | "non_compliant",
  "fields": {
    "<field>": {
      "compliance_status": "<short judgment>",
      "issues": ["..."],
      "recommended_actions": ["..."],
      "additional_checks": ["..."]
    }
  }
}

Rules:
- Emit one "fields" entry per attribute you were given, using the exact attribute keys from the input.
- overall_status is "non_compliant" if any attribute conflicts with the plan.
- Lists may be empty but must be present. Write list entries in German.`

// buildComparePrompt serializes both attribute sets into the user message.
// The field catalog is restated so the response keys match the input keys.
func buildComparePrompt(project, plan *extraction.AttributeSet) (string, error) {
	projectJSON, err := json.MarshalIndent(project.Fields, "", "  ")
	if err != nil {
		return "", err
	}
	planJSON, err := json.MarshalIndent(plan.Fields, "", "  ")
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(extraction.AllFields))
	for _, f := range extraction.AllFields {
		keys = append(keys, string(f))
	}

	return fmt.Sprintf(`Attribute keys: %s

Building application attributes:
%s

Development plan attributes:
%s`, strings.Join(keys, ", "), projectJSON, planJSON), nil
}
