package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/open-edge-platform/manifest-sync/internal/manifest"
)

// Storage keeps manifest binaries and their companion digest files on disk,
// keyed by package identity. One update run is the single writer for its
// package; different packages use disjoint paths and need no locking.
type Storage struct {
	root string
}

func NewStorage(root string) *Storage {
	return &Storage{root: root}
}

// ManifestPath is where the manifest binary for id lives.
func (s *Storage) ManifestPath(id manifest.Identity) string {
	return filepath.Join(s.root, id.ManifestFileName())
}

// DigestPath is where the companion digest for id lives.
func (s *Storage) DigestPath(id manifest.Identity) string {
	return filepath.Join(s.root, id.DigestFileName())
}

func (s *Storage) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteFile persists data atomically: the bytes land in a temp file in the
// same directory and are renamed into place, so a concurrent reader never
// observes a partially-written file.
func (s *Storage) WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-sync-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		err = multierr.Append(fmt.Errorf("writing %s: %w", path, err), tmp.Close())
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ReadDigest hashes the on-disk manifest binary at path.
func (s *Storage) ReadDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading cached manifest %s: %w", path, err)
	}
	return manifest.Digest(data), nil
}
