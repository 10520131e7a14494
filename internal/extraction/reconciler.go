package extraction

import (
	"context"
	"strings"

	"baucheck/internal/port"
)

// Reconciler collapses a per-image opinion list for one field into a single
// authoritative value via a second reasoning pass. It adds no tie-breaking of
// its own beyond instructing for a single value; residual multi-valued output
// is passed through unparsed.
type Reconciler struct {
	reasoner port.Reasoner
}

// NewReconciler creates a Reconciler.
func NewReconciler(r port.Reasoner) *Reconciler {
	return &Reconciler{reasoner: r}
}

// Reconcile joins all non-empty opinions into one evidence blob and asks the
// reasoning service to pick the single most accurate value. Failure of the
// reconciliation call is fatal for the field's value and surfaces as a
// FieldError.
func (r *Reconciler) Reconcile(ctx context.Context, field Field, opinions []Opinion) (string, error) {
	return r.reconcile(ctx, field, buildReconcilePrompt(field), opinions)
}

// ReconcileNarrative collapses the per-image narrative answers into one
// summary text following the fixed analysis key set.
func (r *Reconciler) ReconcileNarrative(ctx context.Context, opinions []Opinion) (string, error) {
	return r.reconcile(ctx, fieldAnalysisSummary, analysisReconcilePrompt, opinions)
}

// ReconcileWithPrompt runs a caller-supplied reconciliation instruction over
// the opinions. Used by the completeness checker.
func (r *Reconciler) ReconcileWithPrompt(ctx context.Context, label Field, prompt string, opinions []Opinion) (string, error) {
	return r.reconcile(ctx, label, prompt, opinions)
}

func (r *Reconciler) reconcile(ctx context.Context, field Field, prompt string, opinions []Opinion) (string, error) {
	evidence := joinOpinions(opinions)
	answer, err := r.reasoner.Invoke(ctx, prompt, []port.ContentPart{port.TextPart(evidence)})
	if err != nil {
		return "", &FieldError{Field: field, Err: err}
	}
	return strings.TrimSpace(answer), nil
}

func joinOpinions(opinions []Opinion) string {
	var b strings.Builder
	for i := range opinions {
		text := strings.TrimSpace(opinions[i].Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(text)
	}
	return b.String()
}
