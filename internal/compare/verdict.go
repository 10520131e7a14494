package compare

import (
	"baucheck/internal/extraction"
)

// Overall verdict statuses.
const (
	StatusCompliant    = "compliant"
	StatusNonCompliant = "non_compliant"
)

// FieldVerdict is the comparison outcome for one attribute.
type FieldVerdict struct {
	ComplianceStatus   string   `json:"compliance_status"`
	Issues             []string `json:"issues"`
	RecommendedActions []string `json:"recommended_actions"`
	AdditionalChecks   []string `json:"additional_checks"`
}

// Verdict is the structured result of comparing a project attribute set
// against a zoning plan attribute set. Every field present in both inputs has
// exactly one sub-record; absence is surfaced as a parse failure, never
// dropped.
type Verdict struct {
	OverallStatus string                             `json:"overall_status"`
	Fields        map[extraction.Field]*FieldVerdict `json:"fields"`
}
