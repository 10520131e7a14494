package extraction

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baucheck/internal/corpus"
	"baucheck/internal/port"
)

// fakeReasoner scripts Invoke behavior per call. It is safe for concurrent
// use and records every system prompt it saw.
type fakeReasoner struct {
	mu      sync.Mutex
	fn      func(system string, parts []port.ContentPart) (string, error)
	prompts []string
}

func (f *fakeReasoner) Invoke(ctx context.Context, system string, parts []port.ContentPart) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, system)
	f.mu.Unlock()
	return f.fn(system, parts)
}

func testCorpus(pages int) *corpus.Corpus {
	ps := make([]corpus.Page, pages)
	for i := range ps {
		ps[i] = corpus.Page{Document: "plan.pdf", Index: i, PNG: []byte{0x89, byte(i)}}
	}
	return corpus.New(ps)
}

func newTestAssembler(r port.Reasoner) *Assembler {
	return NewAssembler(NewExtractor(r, nil, 4), NewReconciler(r))
}

func TestAssembleCoversEveryField(t *testing.T) {
	r := &fakeReasoner{fn: func(system string, parts []port.ContentPart) (string, error) {
		if strings.Contains(system, "key: value") {
			return "Project title: Kindergarten Nord\nProject location: Berlin", nil
		}
		return "Satteldach 45 Grad", nil
	}}

	set, err := newTestAssembler(r).Assemble(context.Background(), testCorpus(3), Options{})
	require.NoError(t, err)

	assert.Len(t, set.Fields, len(AllFields))
	for _, field := range AllFields {
		assert.Contains(t, set.Fields, field)
	}
	assert.Equal(t, "Kindergarten Nord", set.Summary["Project title"])
}

func TestAssembleSharesInFlightCapAcrossPipelines(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	r := &fakeReasoner{}
	r.fn = func(system string, parts []port.ContentPart) (string, error) {
		// Only per-image calls occupy a semaphore slot; reconciliation calls
		// carry text parts and are not counted here.
		if parts[0].ImagePNG == nil {
			return "ok", nil
		}
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return "ok", nil
	}

	a := NewAssembler(NewExtractor(r, nil, 2), NewReconciler(r))
	_, err := a.Assemble(context.Background(), testCorpus(4), Options{})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, 2)
}

func TestAssembleToleratesPartialImageFailures(t *testing.T) {
	r := &fakeReasoner{}
	r.fn = func(system string, parts []port.ContentPart) (string, error) {
		// Every odd page fails; reconciliation still sees the surviving
		// opinions.
		if len(parts) == 1 && parts[0].ImagePNG != nil && parts[0].ImagePNG[1]%2 == 1 {
			return "", errors.New("upstream hiccup")
		}
		return "GRZ 0,4", nil
	}

	set, err := newTestAssembler(r).Assemble(context.Background(), testCorpus(4), Options{})
	require.NoError(t, err)
	assert.Equal(t, "GRZ 0,4", set.Fields[FieldGRZ])
}

func TestAssembleAbortsWhenFieldPipelineFails(t *testing.T) {
	r := &fakeReasoner{fn: func(system string, parts []port.ContentPart) (string, error) {
		if strings.Contains(system, string(FieldGRZ)) || strings.Contains(system, FieldGRZ.Description()) {
			return "", errors.New("persistent failure")
		}
		return "ok", nil
	}}

	_, err := newTestAssembler(r).Assemble(context.Background(), testCorpus(2), Options{})
	require.Error(t, err)

	var asmErr *AssemblyError
	require.ErrorAs(t, err, &asmErr)
	require.Len(t, asmErr.FieldErrors, 1)
	assert.Equal(t, FieldGRZ, asmErr.FieldErrors[0].Field)
}

func TestAssembleBestEffortFillsUnavailable(t *testing.T) {
	r := &fakeReasoner{fn: func(system string, parts []port.ContentPart) (string, error) {
		if strings.Contains(system, FieldDormers.Description()) {
			return "", errors.New("persistent failure")
		}
		return "ok", nil
	}}

	set, err := newTestAssembler(r).Assemble(context.Background(), testCorpus(2), Options{BestEffort: true})
	require.NoError(t, err)
	assert.Equal(t, ValueUnavailable, set.Fields[FieldDormers])
	assert.Len(t, set.Fields, len(AllFields))
}

func TestAssembleCancellationWinsOverPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeReasoner{fn: func(system string, parts []port.ContentPart) (string, error) {
		cancel()
		return "ok", nil
	}}

	set, err := newTestAssembler(r).Assemble(ctx, testCorpus(2), Options{})
	assert.Nil(t, set)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractFailsOnlyWhenAllImagesFail(t *testing.T) {
	r := &fakeReasoner{fn: func(system string, parts []port.ContentPart) (string, error) {
		return "", errors.New("down")
	}}
	e := NewExtractor(r, nil, 2)

	_, err := e.Extract(context.Background(), FieldRoofShape, testCorpus(3))
	require.Error(t, err)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldRoofShape, fe.Field)
}

func TestExtractEmptyCorpus(t *testing.T) {
	r := &fakeReasoner{fn: func(system string, parts []port.ContentPart) (string, error) {
		return "ok", nil
	}}
	e := NewExtractor(r, nil, 2)

	_, err := e.Extract(context.Background(), FieldGFZ, corpus.New(nil))
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
}

func TestReconcileJoinsOnlyNonEmptyOpinions(t *testing.T) {
	var seen string
	r := &fakeReasoner{fn: func(system string, parts []port.ContentPart) (string, error) {
		seen = parts[0].Text
		return "  0,4  ", nil
	}}

	opinions := []Opinion{
		{PageIndex: 0, Text: "GRZ 0,4"},
		{PageIndex: 1, Err: errors.New("failed")},
		{PageIndex: 2, Text: "not found"},
	}
	value, err := NewReconciler(r).Reconcile(context.Background(), FieldGRZ, opinions)
	require.NoError(t, err)

	assert.Equal(t, "0,4", value)
	assert.Contains(t, seen, "GRZ 0,4")
	assert.Contains(t, seen, "not found")
	assert.NotContains(t, seen, "failed")
}
