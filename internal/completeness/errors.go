package completeness

import "fmt"

// ParseError indicates the reconciled completeness response did not match the
// expected structured shape. It carries the raw response; an empty or
// default-valued report must never stand in for it, since that would be
// indistinguishable from a genuine "nothing found" result.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing completeness response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
