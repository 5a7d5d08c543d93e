// Package updater drives the manifest update pipeline: a cheap digest
// precheck, a conditional manifest fetch, and a verification pass over the
// local content cache.
package updater

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/open-edge-platform/manifest-sync/internal/cache"
	"github.com/open-edge-platform/manifest-sync/internal/endpoint"
	"github.com/open-edge-platform/manifest-sync/internal/logger"
	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/operation"
	"github.com/open-edge-platform/manifest-sync/internal/transport"
	"github.com/open-edge-platform/manifest-sync/internal/verify"
)

// Step enumerates the coordinator states.
type Step int

const (
	StepIdle Step = iota
	StepTryLoadCacheHash
	StepDownloadHash
	StepCheckHash
	StepDownloadManifest
	StepCheckManifest
	StepDeserialize
	StepStartVerify
	StepCheckVerify
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepTryLoadCacheHash:
		return "try-load-cache-hash"
	case StepDownloadHash:
		return "download-hash"
	case StepCheckHash:
		return "check-hash"
	case StepDownloadManifest:
		return "download-manifest"
	case StepCheckManifest:
		return "check-manifest"
	case StepDeserialize:
		return "deserialize"
	case StepStartVerify:
		return "start-verify"
	case StepCheckVerify:
		return "check-verify"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Config carries the origin pair and tuning for one coordinator.
type Config struct {
	MainOrigin     string
	FallbackOrigin string
	Timeout        time.Duration
	Workers        int
}

// Coordinator sequences precheck, fetch and verify for one package. It is
// polled via Update and never blocks; each call does the work of the active
// state and cascades into the next state when its precondition already
// holds. Concurrent updates of the same package must be serialized by the
// caller; different packages share only the endpoint counter.
type Coordinator struct {
	id        manifest.Identity
	cfg       Config
	counter   *endpoint.Counter
	requester transport.Requester
	storage   *cache.Storage
	query     verify.ContentQuery

	runID    string
	log      *zap.SugaredLogger
	selector *endpoint.Selector

	step     Step
	status   operation.Status
	err      error
	found    bool
	manifest *manifest.Manifest

	precheck *Precheck
	fetch    *Fetch
	verifier verify.Verifier
	verified *verify.Result
}

func NewCoordinator(id manifest.Identity, cfg Config, counter *endpoint.Counter, requester transport.Requester, storage *cache.Storage, query verify.ContentQuery) *Coordinator {
	return &Coordinator{
		id:        id,
		cfg:       cfg,
		counter:   counter,
		requester: requester,
		storage:   storage,
		query:     query,
		log:       logger.Logger(),
	}
}

// Start transitions Idle to TryLoadCacheHash and claims one attempt index
// from the shared counter. Calling it again is a no-op.
func (c *Coordinator) Start() {
	if c.step != StepIdle {
		return
	}
	attempt := c.counter.Next()
	c.selector = endpoint.NewSelector(c.cfg.MainOrigin, c.cfg.FallbackOrigin, attempt)
	c.runID = uuid.NewString()
	c.log = logger.Logger().With("run", c.runID, "package", c.id.Name, "version", c.id.Version)
	c.status = operation.StatusProcessing
	c.step = StepTryLoadCacheHash
	c.log.Debugw("update started", "attempt", attempt)
}

// Update advances the state machine. It loops while transitions fire so a
// caller polling at a coarse interval still makes forward progress, and
// returns as soon as the active sub-operation is still pending.
func (c *Coordinator) Update() {
	for {
		before := c.step
		c.advance()
		if c.step == before || c.step == StepDone {
			return
		}
	}
}

func (c *Coordinator) advance() {
	switch c.step {
	case StepTryLoadCacheHash:
		c.precheck = NewPrecheck(c.id, c.selector, c.requester, c.storage, c.cfg.Timeout)
		c.precheck.Start()
		if c.precheck.IsDone() && c.precheck.Outcome() == PrecheckChanged {
			c.log.Debugw("no usable cached manifest, fetching")
			c.precheck = nil
			c.step = StepDownloadManifest
			return
		}
		c.step = StepDownloadHash

	case StepDownloadHash:
		c.precheck.Update()
		if c.precheck.IsDone() {
			c.step = StepCheckHash
		}

	case StepCheckHash:
		outcome, err := c.precheck.Outcome(), c.precheck.Err()
		c.precheck = nil
		switch outcome {
		case PrecheckFailed:
			c.fail(err)
		case PrecheckUnchanged:
			c.log.Debugw("cached manifest is current")
			c.succeed()
		case PrecheckChanged:
			c.log.Debugw("remote digest differs, fetching manifest")
			c.step = StepDownloadManifest
		}

	case StepDownloadManifest:
		c.fetch = NewFetch(c.id, c.selector, c.requester, c.storage, c.cfg.Timeout)
		c.fetch.Start()
		c.step = StepCheckManifest

	case StepCheckManifest:
		c.fetch.Update()
		if c.fetch.Status() == operation.StatusFailed {
			err := c.fetch.Err()
			c.fetch = nil
			c.fail(err)
			return
		}
		if c.fetch.BodyReceived() {
			c.step = StepDeserialize
		}

	case StepDeserialize:
		c.fetch.Update()
		if !c.fetch.IsDone() {
			return
		}
		if c.fetch.Status() == operation.StatusFailed {
			err := c.fetch.Err()
			c.fetch = nil
			c.fail(err)
			return
		}
		c.manifest = c.fetch.Manifest()
		c.fetch = nil
		c.found = true
		c.log.Infow("new manifest accepted", "files", len(c.manifest.Files))
		c.step = StepStartVerify

	case StepStartVerify:
		c.verifier = verify.New(c.manifest, c.query, c.cfg.Workers)
		c.verifier.Start()
		c.step = StepCheckVerify

	case StepCheckVerify:
		c.verifier.Update()
		if c.verifier.IsDone() {
			c.verified = c.verifier.Result()
			c.verifier = nil
			c.log.Infow("verification complete",
				"verified", len(c.verified.Succeeded),
				"mismatched", len(c.verified.Failed))
			c.succeed()
		}
	}
}

func (c *Coordinator) fail(err error) {
	c.err = err
	c.status = operation.StatusFailed
	c.step = StepDone
	c.log.Errorw("update failed", "error", err)
}

func (c *Coordinator) succeed() {
	c.status = operation.StatusSucceed
	c.step = StepDone
	c.log.Debugw("update complete", "new_manifest", c.found)
}

func (c *Coordinator) IsDone() bool {
	return c.step == StepDone
}

func (c *Coordinator) Status() operation.Status { return c.status }

// Progress weights the pipeline: precheck up to 0.2, fetch up to 0.6,
// verify up to 1.0.
func (c *Coordinator) Progress() float64 {
	switch c.step {
	case StepIdle:
		return 0
	case StepTryLoadCacheHash, StepDownloadHash, StepCheckHash:
		if c.precheck != nil {
			return 0.2 * c.precheck.Progress()
		}
		return 0.1
	case StepDownloadManifest, StepCheckManifest, StepDeserialize:
		if c.fetch != nil {
			return 0.2 + 0.4*c.fetch.Progress()
		}
		return 0.2
	case StepStartVerify, StepCheckVerify:
		if c.verifier != nil {
			return 0.6 + 0.4*c.verifier.Progress()
		}
		return 0.6
	case StepDone:
		return 1
	default:
		return 0
	}
}

func (c *Coordinator) Err() error { return c.err }

// Step exposes the current state, mainly for tests and logs.
func (c *Coordinator) Step() Step { return c.step }

// FoundNewManifest reports whether this run fetched and accepted a manifest.
func (c *Coordinator) FoundNewManifest() bool { return c.found }

// Manifest is the accepted current manifest, nil when the cache was already
// current or the run failed.
func (c *Coordinator) Manifest() *manifest.Manifest { return c.manifest }

// VerifyResult is the content verification partition, nil unless a new
// manifest was verified.
func (c *Coordinator) VerifyResult() *verify.Result { return c.verified }
