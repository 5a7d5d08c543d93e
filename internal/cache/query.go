package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/open-edge-platform/manifest-sync/internal/manifest"
)

// QueryService answers whether a local content file matches a manifest
// entry. It is read-only with respect to the content root.
type QueryService struct {
	root string
}

func NewQueryService(root string) *QueryService {
	return &QueryService{root: root}
}

// Match reports whether the file named by entry exists with the expected
// size and hash. Size is compared first to skip hashing obvious mismatches.
func (q *QueryService) Match(entry manifest.FileEntry) bool {
	path := filepath.Join(q.root, filepath.FromSlash(entry.Path))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if info.Size() != entry.Size {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false
	}
	return hex.EncodeToString(h.Sum(nil)) == entry.Hash
}
