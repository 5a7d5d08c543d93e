package updater

import (
	"time"

	"github.com/open-edge-platform/manifest-sync/internal/cache"
	"github.com/open-edge-platform/manifest-sync/internal/endpoint"
	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/operation"
	"github.com/open-edge-platform/manifest-sync/internal/transport"
)

// PrecheckOutcome classifies the hash precheck.
type PrecheckOutcome int

const (
	PrecheckNone PrecheckOutcome = iota
	PrecheckUnchanged
	PrecheckChanged
	PrecheckFailed
)

// Precheck compares the cached manifest digest against the remote digest
// file to decide whether a full manifest fetch is needed. Without a local
// record it completes immediately with PrecheckChanged and never touches
// the network. It does not mutate the cache.
type Precheck struct {
	id        manifest.Identity
	selector  *endpoint.Selector
	requester transport.Requester
	storage   *cache.Storage
	timeout   time.Duration

	url     string
	req     transport.Request
	local   string
	outcome PrecheckOutcome
	status  operation.Status
	err     error
}

func NewPrecheck(id manifest.Identity, selector *endpoint.Selector, requester transport.Requester, storage *cache.Storage, timeout time.Duration) *Precheck {
	return &Precheck{
		id:        id,
		selector:  selector,
		requester: requester,
		storage:   storage,
		timeout:   timeout,
	}
}

func (p *Precheck) Start() {
	if p.status != operation.StatusNone {
		return
	}
	p.status = operation.StatusProcessing

	manifestPath := p.storage.ManifestPath(p.id)
	if !p.storage.FileExists(manifestPath) {
		// no local record: force a full fetch
		p.outcome = PrecheckChanged
		p.status = operation.StatusSucceed
		return
	}
	local, err := p.storage.ReadDigest(manifestPath)
	if err != nil {
		// an unreadable record is treated like a missing one
		p.outcome = PrecheckChanged
		p.status = operation.StatusSucceed
		return
	}
	p.local = local

	p.url = p.selector.URL(p.id.DigestFileName())
	p.req = p.requester.SendRequest(p.url, p.timeout)
}

func (p *Precheck) Update() {
	if p.status != operation.StatusProcessing || p.req == nil {
		return
	}
	if !p.req.IsDone() {
		return
	}
	defer func() {
		p.req.Close()
		p.req = nil
	}()

	if err := p.req.Err(); err != nil {
		p.err = &operation.TransportError{URL: p.url, Err: err}
		p.outcome = PrecheckFailed
		p.status = operation.StatusFailed
		return
	}
	if p.req.Text() == p.local {
		p.outcome = PrecheckUnchanged
	} else {
		p.outcome = PrecheckChanged
	}
	p.status = operation.StatusSucceed
}

func (p *Precheck) IsDone() bool {
	return p.status == operation.StatusSucceed || p.status == operation.StatusFailed
}

func (p *Precheck) Status() operation.Status { return p.status }

func (p *Precheck) Progress() float64 {
	switch p.status {
	case operation.StatusSucceed, operation.StatusFailed:
		return 1
	case operation.StatusProcessing:
		return 0.5
	default:
		return 0
	}
}

func (p *Precheck) Err() error { return p.err }

// Outcome is valid once the precheck is done.
func (p *Precheck) Outcome() PrecheckOutcome { return p.outcome }

// LocalDigest returns the digest of the cached binary, if one was found.
func (p *Precheck) LocalDigest() string { return p.local }
