package compare

import "fmt"

// ParseError indicates the comparison response did not match the expected
// structured shape. It carries the raw response so the failure can be
// inspected; it must never be coerced into a default verdict, since that
// would be indistinguishable from a genuine result.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing comparison response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
