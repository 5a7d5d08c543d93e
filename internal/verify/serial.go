package verify

import (
	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/operation"
)

// serialBatchSize bounds the work one Update call performs so the poll
// contract holds without goroutines.
const serialBatchSize = 64

// serialVerifier walks the entries sequentially, a bounded batch per poll.
// Used where worker-pool concurrency is unavailable or disallowed.
type serialVerifier struct {
	entries []manifest.FileEntry
	query   ContentQuery

	next   int
	status operation.Status
	result Result
}

func newSerial(entries []manifest.FileEntry, query ContentQuery) *serialVerifier {
	return &serialVerifier{entries: entries, query: query}
}

func (v *serialVerifier) Start() {
	if v.status != operation.StatusNone {
		return
	}
	v.status = operation.StatusProcessing
	if len(v.entries) == 0 {
		v.status = operation.StatusSucceed
	}
}

func (v *serialVerifier) Update() {
	if v.status != operation.StatusProcessing {
		return
	}
	for i := 0; i < serialBatchSize && v.next < len(v.entries); i++ {
		entry := v.entries[v.next]
		if v.query.Match(entry) {
			v.result.Succeeded = append(v.result.Succeeded, entry)
		} else {
			v.result.Failed = append(v.result.Failed, entry)
		}
		v.next++
	}
	if v.next == len(v.entries) {
		v.status = operation.StatusSucceed
	}
}

func (v *serialVerifier) IsDone() bool {
	return v.status == operation.StatusSucceed
}

func (v *serialVerifier) Status() operation.Status { return v.status }

func (v *serialVerifier) Progress() float64 {
	if len(v.entries) == 0 {
		if v.status == operation.StatusSucceed {
			return 1
		}
		return 0
	}
	return float64(v.next) / float64(len(v.entries))
}

func (v *serialVerifier) Err() error { return nil }

func (v *serialVerifier) Result() *Result {
	return &Result{Succeeded: v.result.Succeeded, Failed: v.result.Failed}
}
