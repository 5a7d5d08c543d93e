package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/open-edge-platform/manifest-sync/internal/manifest"
)

func writeContent(t *testing.T, root, rel string, data []byte) manifest.FileEntry {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write content: %v", err)
	}
	return manifest.FileEntry{Path: rel, Hash: manifest.Digest(data), Size: int64(len(data))}
}

func TestQueryMatchesIntactFile(t *testing.T) {
	root := t.TempDir()
	entry := writeContent(t, root, "data/a.bin", []byte("content a"))

	if !NewQueryService(root).Match(entry) {
		t.Fatal("intact file reported as mismatch")
	}
}

func TestQueryRejectsMissingFile(t *testing.T) {
	q := NewQueryService(t.TempDir())
	entry := manifest.FileEntry{Path: "gone.bin", Hash: manifest.Digest([]byte("x")), Size: 1}
	if q.Match(entry) {
		t.Fatal("missing file reported as match")
	}
}

func TestQueryRejectsSizeMismatch(t *testing.T) {
	root := t.TempDir()
	entry := writeContent(t, root, "a.bin", []byte("content"))
	entry.Size++

	if NewQueryService(root).Match(entry) {
		t.Fatal("size mismatch reported as match")
	}
}

func TestQueryRejectsHashMismatch(t *testing.T) {
	root := t.TempDir()
	entry := writeContent(t, root, "a.bin", []byte("content"))
	entry.Hash = manifest.Digest([]byte("different"))

	if NewQueryService(root).Match(entry) {
		t.Fatal("hash mismatch reported as match")
	}
}
