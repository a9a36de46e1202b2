package payload

import "fmt"

// ParseError reports a malformed request payload. It wraps the underlying
// decoder diagnostic so callers can surface it verbatim.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid payload JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
