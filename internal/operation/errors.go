package operation

import "fmt"

// TransportError marks a network-level failure (timeout, bad status,
// connection error) on a digest or manifest request.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError marks a manifest blob the deserializer rejected.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
