package endpoint

import (
	"strings"
	"sync/atomic"
)

// Counter hands out attempt indices to update runs. One instance lives for
// the whole process and is shared across concurrently updating packages;
// tests inject their own.
type Counter struct {
	n atomic.Uint64
}

// Next returns the current attempt index and advances the counter.
func (c *Counter) Next() uint64 {
	return c.n.Add(1) - 1
}

// Selector builds remote URLs for one update run, alternating between the
// main and fallback origins based on the attempt index captured at start.
// Even attempts hit the main origin, odd attempts the fallback, so a
// transient outage on one origin is bypassed on the next run.
type Selector struct {
	main     string
	fallback string
	attempt  uint64
}

func NewSelector(main, fallback string, attempt uint64) *Selector {
	return &Selector{main: main, fallback: fallback, attempt: attempt}
}

// URL returns origin + fileName for this run's origin.
func (s *Selector) URL(fileName string) string {
	origin := s.main
	if s.attempt%2 == 1 {
		origin = s.fallback
	}
	if !strings.HasSuffix(origin, "/") {
		origin += "/"
	}
	return origin + fileName
}
