package updater

import (
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/open-edge-platform/manifest-sync/internal/transport"
)

// fakeResponse scripts the outcome of one remote file. pendingPolls makes
// the request report not-done for a few IsDone calls, exercising the
// non-blocking poll path.
type fakeResponse struct {
	body         []byte
	err          error
	pendingPolls int
}

// fakeRequester routes requests by their file name and records every URL it
// was asked for.
type fakeRequester struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	requested []string
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{responses: make(map[string]fakeResponse)}
}

func (f *fakeRequester) serve(fileName string, resp fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[fileName] = resp
}

func (f *fakeRequester) SendRequest(url string, timeout time.Duration) transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, url)
	resp, ok := f.responses[path.Base(url)]
	if !ok {
		resp = fakeResponse{err: fmt.Errorf("no fake response for %s", url)}
	}
	return &fakeRequest{resp: resp, pending: resp.pendingPolls}
}

func (f *fakeRequester) requestedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.requested))
	for i, u := range f.requested {
		names[i] = path.Base(u)
	}
	return names
}

func (f *fakeRequester) requestedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requested...)
}

type fakeRequest struct {
	resp    fakeResponse
	pending int
	closed  bool
}

func (r *fakeRequest) IsDone() bool {
	if r.pending > 0 {
		r.pending--
		return false
	}
	return true
}

func (r *fakeRequest) Err() error    { return r.resp.err }
func (r *fakeRequest) Bytes() []byte { return r.resp.body }
func (r *fakeRequest) Text() string  { return string(r.resp.body) }
func (r *fakeRequest) Close()        { r.closed = true }
