package updater

import (
	"fmt"
	"time"

	"github.com/open-edge-platform/manifest-sync/internal/cache"
	"github.com/open-edge-platform/manifest-sync/internal/endpoint"
	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/operation"
	"github.com/open-edge-platform/manifest-sync/internal/transport"
)

// Fetch downloads the manifest binary, runs the deserializer over it and,
// only after a successful parse, persists the binary and its companion
// digest. Persist-after-parse means a corrupt download can never satisfy the
// next run's precheck. The binary is always written before the digest so the
// digest on disk never refers to bytes that are not there yet.
type Fetch struct {
	id        manifest.Identity
	selector  *endpoint.Selector
	requester transport.Requester
	storage   *cache.Storage
	timeout   time.Duration

	url          string
	req          transport.Request
	raw          []byte
	bodyReceived bool
	deser        *manifest.Deserializer
	m            *manifest.Manifest
	status       operation.Status
	err          error
}

func NewFetch(id manifest.Identity, selector *endpoint.Selector, requester transport.Requester, storage *cache.Storage, timeout time.Duration) *Fetch {
	return &Fetch{
		id:        id,
		selector:  selector,
		requester: requester,
		storage:   storage,
		timeout:   timeout,
	}
}

func (f *Fetch) Start() {
	if f.status != operation.StatusNone {
		return
	}
	f.status = operation.StatusProcessing
	f.url = f.selector.URL(f.id.ManifestFileName())
	f.req = f.requester.SendRequest(f.url, f.timeout)
}

func (f *Fetch) Update() {
	if f.status != operation.StatusProcessing {
		return
	}
	if f.req != nil {
		if !f.req.IsDone() {
			return
		}
		err := f.req.Err()
		if err == nil {
			f.raw = f.req.Bytes()
		}
		f.req.Close()
		f.req = nil
		if err != nil {
			f.err = &operation.TransportError{URL: f.url, Err: err}
			f.status = operation.StatusFailed
			return
		}
		f.bodyReceived = true
		f.deser = manifest.NewDeserializer(f.raw, f.id)
		f.deser.Start()
		return
	}
	if f.deser == nil {
		return
	}

	f.deser.Update()
	if !f.deser.IsDone() {
		return
	}
	if err := f.deser.Err(); err != nil {
		f.err = err
		f.status = operation.StatusFailed
		return
	}

	if err := f.persist(); err != nil {
		f.err = err
		f.status = operation.StatusFailed
		return
	}
	f.m = f.deser.Manifest()
	f.status = operation.StatusSucceed
}

func (f *Fetch) persist() error {
	if err := f.storage.WriteFile(f.storage.ManifestPath(f.id), f.raw); err != nil {
		return fmt.Errorf("persisting manifest: %w", err)
	}
	if err := f.storage.WriteFile(f.storage.DigestPath(f.id), []byte(manifest.Digest(f.raw))); err != nil {
		return fmt.Errorf("persisting manifest digest: %w", err)
	}
	return nil
}

func (f *Fetch) IsDone() bool {
	return f.status == operation.StatusSucceed || f.status == operation.StatusFailed
}

func (f *Fetch) Status() operation.Status { return f.status }

// Progress spans the transport request over the first half and the
// deserializer over the second.
func (f *Fetch) Progress() float64 {
	switch {
	case f.IsDone():
		return 1
	case f.deser != nil:
		return 0.5 + 0.5*f.deser.Progress()
	case f.status == operation.StatusProcessing:
		return 0.25
	default:
		return 0
	}
}

func (f *Fetch) Err() error { return f.err }

// BodyReceived reports whether the transport request completed successfully
// and deserialization has begun.
func (f *Fetch) BodyReceived() bool { return f.bodyReceived }

// Manifest is valid once the fetch succeeded.
func (f *Fetch) Manifest() *manifest.Manifest { return f.m }
