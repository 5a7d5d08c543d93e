package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/open-edge-platform/manifest-sync/internal/manifest"
)

func TestStoragePathsFollowWireNames(t *testing.T) {
	s := NewStorage("/cache")
	id := manifest.Identity{Name: "pkg", Version: "3"}
	if got := s.ManifestPath(id); got != filepath.Join("/cache", "pkg_3.manifest") {
		t.Fatalf("manifest path: %q", got)
	}
	if got := s.DigestPath(id); got != filepath.Join("/cache", "pkg_3.hash") {
		t.Fatalf("digest path: %q", got)
	}
}

func TestWriteFileThenReadDigest(t *testing.T) {
	s := NewStorage(t.TempDir())
	id := manifest.Identity{Name: "pkg", Version: "1"}
	data := []byte("manifest binary")

	if err := s.WriteFile(s.ManifestPath(id), data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !s.FileExists(s.ManifestPath(id)) {
		t.Fatal("manifest file missing after write")
	}
	digest, err := s.ReadDigest(s.ManifestPath(id))
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if digest != manifest.Digest(data) {
		t.Fatalf("digest mismatch: %q vs %q", digest, manifest.Digest(data))
	}
}

func TestWriteFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(dir)
	id := manifest.Identity{Name: "pkg", Version: "1"}

	if err := s.WriteFile(s.ManifestPath(id), []byte("v1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.WriteFile(s.ManifestPath(id), []byte("v2")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".manifest-sync-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	got, err := os.ReadFile(s.ManifestPath(id))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("content = %q, want v2", got)
	}
}

func TestWriteFileCreatesMissingDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "cache")
	s := NewStorage(root)
	id := manifest.Identity{Name: "pkg", Version: "1"}
	if err := s.WriteFile(s.ManifestPath(id), []byte("x")); err != nil {
		t.Fatalf("write into missing dir: %v", err)
	}
}

func TestFileExistsFalseForDirectory(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(dir)
	if s.FileExists(dir) {
		t.Fatal("a directory should not count as a cache record")
	}
}
