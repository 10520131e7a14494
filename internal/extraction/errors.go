package extraction

import "fmt"

// FieldError indicates that a specific field could not be produced, either
// because every per-image call failed or because reconciliation failed.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("extracting field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// AssemblyError names every field pipeline that failed during an assembly
// run. It is returned only when best-effort mode is off.
type AssemblyError struct {
	FieldErrors []*FieldError
}

func (e *AssemblyError) Error() string {
	names := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		names[i] = string(fe.Field)
	}
	return fmt.Sprintf("assembly failed for %d field(s): %v", len(names), names)
}

// Unwrap exposes the per-field failures so callers can classify the
// underlying cause, for example a rate limit shared by every pipeline.
func (e *AssemblyError) Unwrap() []error {
	errs := make([]error, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		errs[i] = fe
	}
	return errs
}
