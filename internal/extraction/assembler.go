package extraction

import (
	"context"
	"log"
	"sort"
	"sync"

	"baucheck/internal/corpus"
)

// fieldAnalysisSummary labels the narrative pipeline in opinions, logs and
// errors. It is not part of the field catalog.
const fieldAnalysisSummary Field = "analysis_summary"

// Options tunes an assembly run.
type Options struct {
	// BestEffort records ValueUnavailable for a failed field pipeline instead
	// of aborting the run. The narrative summary is always best-effort.
	BestEffort bool
}

// Assembler runs the full attribute pipeline over a corpus: one
// extract-then-reconcile chain per catalog field, plus the narrative summary
// pass, all concurrently. The extractor's semaphore and rate limiter bound
// the total fan-out across all pipelines.
type Assembler struct {
	extractor  *Extractor
	reconciler *Reconciler
}

// NewAssembler creates an Assembler sharing one extractor and reconciler.
func NewAssembler(e *Extractor, r *Reconciler) *Assembler {
	return &Assembler{extractor: e, reconciler: r}
}

// Assemble produces the complete attribute set for a corpus. By default any
// failed field pipeline aborts the run with an AssemblyError naming every
// failed field; with Options.BestEffort the failed fields are recorded as
// ValueUnavailable instead. Context cancellation is all-or-nothing and is
// returned ahead of any partial result.
func (a *Assembler) Assemble(ctx context.Context, c *corpus.Corpus, opts Options) (*AttributeSet, error) {
	set := &AttributeSet{Fields: make(map[Field]string, len(AllFields))}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		fieldErrs []*FieldError
	)

	for _, field := range AllFields {
		wg.Add(1)
		go func(field Field) {
			defer wg.Done()
			value, err := a.runField(ctx, field, c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var fe *FieldError
				if castErr, ok := err.(*FieldError); ok {
					fe = castErr
				} else {
					fe = &FieldError{Field: field, Err: err}
				}
				fieldErrs = append(fieldErrs, fe)
				return
			}
			set.Fields[field] = value
		}(field)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		summary, err := a.runNarrative(ctx, c)
		if err != nil {
			log.Printf("extraction.Assembler: narrative pass failed: %v", err)
			return
		}
		mu.Lock()
		set.Summary = summary
		mu.Unlock()
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(fieldErrs) > 0 {
		if !opts.BestEffort {
			sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
			return nil, &AssemblyError{FieldErrors: fieldErrs}
		}
		for _, fe := range fieldErrs {
			log.Printf("extraction.Assembler: field %s unavailable: %v", fe.Field, fe.Err)
			set.Fields[fe.Field] = ValueUnavailable
		}
	}

	return set, nil
}

func (a *Assembler) runField(ctx context.Context, field Field, c *corpus.Corpus) (string, error) {
	opinions, err := a.extractor.Extract(ctx, field, c)
	if err != nil {
		return "", err
	}
	return a.reconciler.Reconcile(ctx, field, opinions)
}

func (a *Assembler) runNarrative(ctx context.Context, c *corpus.Corpus) (map[string]string, error) {
	opinions, err := a.extractor.ExtractNarrative(ctx, c)
	if err != nil {
		return nil, err
	}
	answer, err := a.reconciler.ReconcileNarrative(ctx, opinions)
	if err != nil {
		return nil, err
	}
	return ParseNarrative(answer), nil
}
