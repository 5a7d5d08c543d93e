// Package verify reconciles on-disk content files against a manifest. The
// pass classifies every entry into a success or failure set; a mismatched
// file is data for remediation, never an operation error.
package verify

import (
	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/operation"
)

// ContentQuery answers whether a local content file matches a manifest entry.
type ContentQuery interface {
	Match(entry manifest.FileEntry) bool
}

// Result partitions the manifest's entries. Succeeded and Failed are
// disjoint and together cover every entry.
type Result struct {
	Succeeded []manifest.FileEntry
	Failed    []manifest.FileEntry
}

// Verifier classifies every manifest entry against local content. Both
// strategies satisfy the same poll contract and produce set-equal results
// for the same inputs; strategy choice is performance only.
type Verifier interface {
	operation.Operation
	Result() *Result
}

// New picks the worker-pool strategy when more than one worker is allowed,
// the sequential one otherwise.
func New(m *manifest.Manifest, query ContentQuery, workers int) Verifier {
	if workers > 1 {
		return newPooled(m.Files, query, workers)
	}
	return newSerial(m.Files, query)
}
