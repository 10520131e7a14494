package extraction

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/time/rate"

	"baucheck/internal/corpus"
	"baucheck/internal/port"
)

const defaultMaxInFlight = 10

// Opinion is one raw per-image answer for a field, pre-reconciliation. A
// failed image call leaves Text empty and records Err instead; callers treat
// the opinion list as an unordered bag of evidence.
type Opinion struct {
	PageIndex int
	Text      string
	Err       error
}

// Extractor issues one reasoning call per page of a corpus, in parallel,
// producing a per-image opinion list. One semaphore is shared by every
// fan-out running on the extractor, so the in-flight cap holds across all
// concurrent pipelines, not per call.
type Extractor struct {
	reasoner port.Reasoner
	limiter  *rate.Limiter
	sem      chan struct{}
}

// NewExtractor creates an Extractor. limiter may be nil to disable rate
// limiting; maxInFlight <= 0 selects the default cap of 10.
func NewExtractor(r port.Reasoner, limiter *rate.Limiter, maxInFlight int) *Extractor {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	return &Extractor{reasoner: r, limiter: limiter, sem: make(chan struct{}, maxInFlight)}
}

// Extract collects one opinion per page for the given field. A single page's
// failure is recorded in its opinion slot, not propagated, so reconciliation
// can proceed on the surviving opinions. Only when every page fails does the
// extraction fail as a whole, with a FieldError naming the field.
func (e *Extractor) Extract(ctx context.Context, field Field, c *corpus.Corpus) ([]Opinion, error) {
	return e.fanOut(ctx, field, buildFieldPrompt(field), c)
}

// ExtractNarrative runs the broad per-image analysis pass with the same
// fan-out and failure policy as a field extraction.
func (e *Extractor) ExtractNarrative(ctx context.Context, c *corpus.Corpus) ([]Opinion, error) {
	return e.fanOut(ctx, fieldAnalysisSummary, analysisPrompt, c)
}

// ExtractWithPrompt runs a caller-supplied per-image instruction under the
// extractor's concurrency bounds. Used by the completeness checker.
func (e *Extractor) ExtractWithPrompt(ctx context.Context, label Field, prompt string, c *corpus.Corpus) ([]Opinion, error) {
	return e.fanOut(ctx, label, prompt, c)
}

func (e *Extractor) fanOut(ctx context.Context, field Field, prompt string, c *corpus.Corpus) ([]Opinion, error) {
	pages := c.Pages()
	if len(pages) == 0 {
		return nil, &FieldError{Field: field, Err: fmt.Errorf("corpus is empty")}
	}

	opinions := make([]Opinion, len(pages))
	var wg sync.WaitGroup

	for i := range pages {
		page := pages[i]
		opinions[i].PageIndex = page.Index

		wg.Add(1)
		go func(slot int) {
			defer wg.Done()

			select {
			case e.sem <- struct{}{}:
			case <-ctx.Done():
				opinions[slot].Err = ctx.Err()
				return
			}
			defer func() { <-e.sem }()

			if e.limiter != nil {
				if err := e.limiter.Wait(ctx); err != nil {
					opinions[slot].Err = err
					return
				}
			}

			text, err := e.reasoner.Invoke(ctx, prompt, []port.ContentPart{port.ImagePart(page.PNG)})
			if err != nil {
				log.Printf("extraction.Extractor: field %s page %d failed: %v", field, page.Index, err)
				opinions[slot].Err = err
				return
			}
			opinions[slot].Text = text
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lastErr error
	succeeded := 0
	for i := range opinions {
		if opinions[i].Err != nil {
			lastErr = opinions[i].Err
			continue
		}
		succeeded++
	}
	if succeeded == 0 {
		return nil, &FieldError{Field: field, Err: fmt.Errorf("all %d page calls failed: %w", len(pages), lastErr)}
	}
	return opinions, nil
}
