package verify

import (
	"sync"
	"sync/atomic"

	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/operation"
)

// pooledVerifier fans entries out to a fixed pool of workers over a jobs
// channel. Results merge under a mutex so no entry is double-counted or
// dropped; Update only observes completion and never blocks.
type pooledVerifier struct {
	entries []manifest.FileEntry
	query   ContentQuery
	workers int

	status    operation.Status
	processed atomic.Int64
	done      chan struct{}

	mu     sync.Mutex
	result Result
}

func newPooled(entries []manifest.FileEntry, query ContentQuery, workers int) *pooledVerifier {
	if workers > len(entries) && len(entries) > 0 {
		workers = len(entries)
	}
	return &pooledVerifier{
		entries: entries,
		query:   query,
		workers: workers,
		done:    make(chan struct{}),
	}
}

func (v *pooledVerifier) Start() {
	if v.status != operation.StatusNone {
		return
	}
	v.status = operation.StatusProcessing
	if len(v.entries) == 0 {
		v.status = operation.StatusSucceed
		close(v.done)
		return
	}

	jobs := make(chan manifest.FileEntry, len(v.entries))
	for _, e := range v.entries {
		jobs <- e
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < v.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				ok := v.query.Match(entry)
				v.mu.Lock()
				if ok {
					v.result.Succeeded = append(v.result.Succeeded, entry)
				} else {
					v.result.Failed = append(v.result.Failed, entry)
				}
				v.mu.Unlock()
				v.processed.Add(1)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(v.done)
	}()
}

func (v *pooledVerifier) Update() {
	if v.status != operation.StatusProcessing {
		return
	}
	select {
	case <-v.done:
		v.status = operation.StatusSucceed
	default:
	}
}

func (v *pooledVerifier) IsDone() bool {
	return v.status == operation.StatusSucceed
}

func (v *pooledVerifier) Status() operation.Status { return v.status }

func (v *pooledVerifier) Progress() float64 {
	if len(v.entries) == 0 {
		if v.status == operation.StatusSucceed {
			return 1
		}
		return 0
	}
	return float64(v.processed.Load()) / float64(len(v.entries))
}

func (v *pooledVerifier) Err() error { return nil }

// Result is valid once the verifier is done.
func (v *pooledVerifier) Result() *Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return &Result{Succeeded: v.result.Succeeded, Failed: v.result.Failed}
}
