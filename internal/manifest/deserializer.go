package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/open-edge-platform/manifest-sync/internal/operation"
)

type deserializePhase int

const (
	phaseDecompress deserializePhase = iota
	phaseValidate
	phaseDecode
	phaseDone
)

// Deserializer turns a manifest wire blob into a Manifest. It is a poll
// operation: each Update call performs one bounded phase (decompress,
// schema-validate, decode) so the caller never blocks on it.
type Deserializer struct {
	raw  []byte
	want Identity

	phase   deserializePhase
	payload []byte
	m       *Manifest
	status  operation.Status
	err     error
}

// NewDeserializer consumes raw wire bytes. A non-zero want identity is
// checked against the decoded payload.
func NewDeserializer(raw []byte, want Identity) *Deserializer {
	return &Deserializer{raw: raw, want: want}
}

func (d *Deserializer) Start() {
	if d.status != operation.StatusNone {
		return
	}
	d.status = operation.StatusProcessing
}

func (d *Deserializer) Update() {
	if d.status != operation.StatusProcessing {
		return
	}
	switch d.phase {
	case phaseDecompress:
		payload, err := decompress(d.raw)
		if err != nil {
			d.fail(err)
			return
		}
		d.payload = payload
		d.phase = phaseValidate
	case phaseValidate:
		if err := validatePayload(d.payload); err != nil {
			d.fail(err)
			return
		}
		d.phase = phaseDecode
	case phaseDecode:
		var m Manifest
		if err := json.Unmarshal(d.payload, &m); err != nil {
			d.fail(err)
			return
		}
		if d.want.Name != "" && (m.Name != d.want.Name || m.Version != d.want.Version) {
			d.fail(fmt.Errorf("manifest identifies %s %s, requested %s", m.Name, m.Version, d.want))
			return
		}
		d.m = &m
		d.phase = phaseDone
		d.status = operation.StatusSucceed
	}
}

func (d *Deserializer) fail(err error) {
	d.err = &operation.ParseError{Err: err}
	d.status = operation.StatusFailed
	d.phase = phaseDone
}

func (d *Deserializer) IsDone() bool {
	return d.status == operation.StatusSucceed || d.status == operation.StatusFailed
}

func (d *Deserializer) Status() operation.Status { return d.status }

func (d *Deserializer) Progress() float64 {
	return float64(d.phase) / float64(phaseDone)
}

func (d *Deserializer) Err() error { return d.err }

// Manifest is valid once the deserializer succeeded.
func (d *Deserializer) Manifest() *Manifest { return d.m }
