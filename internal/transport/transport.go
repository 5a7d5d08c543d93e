package transport

import "time"

// Requester issues remote requests for manifest and digest files.
type Requester interface {
	SendRequest(url string, timeout time.Duration) Request
}

// Request is a non-blocking handle on one in-flight request. IsDone never
// blocks; Bytes/Text/Err are valid once IsDone reports true. Close releases
// the underlying connection resources and is safe to call immediately after
// reading the result.
type Request interface {
	IsDone() bool
	Err() error
	Bytes() []byte
	Text() string
	Close()
}
