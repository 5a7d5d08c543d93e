package updater

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/open-edge-platform/manifest-sync/internal/cache"
	"github.com/open-edge-platform/manifest-sync/internal/manifest"
	"github.com/open-edge-platform/manifest-sync/internal/operation"
)

func encodeTestManifest(t *testing.T, files []manifest.FileEntry) []byte {
	t.Helper()
	raw, err := manifest.Encode(&manifest.Manifest{
		Name:    testID.Name,
		Version: testID.Version,
		Files:   files,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return raw
}

func driveFetch(t *testing.T, f *Fetch) {
	t.Helper()
	f.Start()
	for i := 0; !f.IsDone(); i++ {
		if i > 100 {
			t.Fatal("fetch never finished")
		}
		f.Update()
	}
}

func TestFetchPersistsBinaryAndDigest(t *testing.T) {
	raw := encodeTestManifest(t, []manifest.FileEntry{
		{Path: "a.bin", Hash: manifest.Digest([]byte("a")), Size: 1},
	})
	requester := newFakeRequester()
	requester.serve(testID.ManifestFileName(), fakeResponse{body: raw, pendingPolls: 2})
	storage := cache.NewStorage(t.TempDir())

	f := NewFetch(testID, testSelector(), requester, storage, time.Second)
	driveFetch(t, f)

	if f.Status() != operation.StatusSucceed {
		t.Fatalf("fetch failed: %v", f.Err())
	}
	if f.Manifest() == nil || len(f.Manifest().Files) != 1 {
		t.Fatalf("unexpected manifest: %+v", f.Manifest())
	}

	persisted, err := os.ReadFile(storage.ManifestPath(testID))
	if err != nil {
		t.Fatalf("manifest binary not persisted: %v", err)
	}
	if string(persisted) != string(raw) {
		t.Fatal("persisted binary differs from the downloaded bytes")
	}
	digest, err := os.ReadFile(storage.DigestPath(testID))
	if err != nil {
		t.Fatalf("companion digest not persisted: %v", err)
	}
	if string(digest) != manifest.Digest(raw) {
		t.Fatalf("companion digest %q does not match binary", digest)
	}
}

func TestFetchTransportFailureLeavesCacheUntouched(t *testing.T) {
	requester := newFakeRequester()
	requester.serve(testID.ManifestFileName(), fakeResponse{err: errors.New("gateway timeout")})
	dir := t.TempDir()
	storage := cache.NewStorage(dir)

	f := NewFetch(testID, testSelector(), requester, storage, time.Second)
	driveFetch(t, f)

	var terr *operation.TransportError
	if !errors.As(f.Err(), &terr) {
		t.Fatalf("expected TransportError, got %v", f.Err())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("cache not empty after transport failure: %v", entries)
	}
}

func TestFetchCorruptBytesAreNotPersisted(t *testing.T) {
	requester := newFakeRequester()
	requester.serve(testID.ManifestFileName(), fakeResponse{body: []byte("corrupt")})
	dir := t.TempDir()
	storage := cache.NewStorage(dir)

	f := NewFetch(testID, testSelector(), requester, storage, time.Second)
	driveFetch(t, f)

	var perr *operation.ParseError
	if !errors.As(f.Err(), &perr) {
		t.Fatalf("expected ParseError, got %v", f.Err())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("corrupt download was persisted: %v", entries)
	}
}

func TestFetchProgressForwardsDeserializer(t *testing.T) {
	raw := encodeTestManifest(t, nil)
	requester := newFakeRequester()
	requester.serve(testID.ManifestFileName(), fakeResponse{body: raw, pendingPolls: 1})
	storage := cache.NewStorage(t.TempDir())

	f := NewFetch(testID, testSelector(), requester, storage, time.Second)
	f.Start()

	last := f.Progress()
	for i := 0; !f.IsDone(); i++ {
		if i > 100 {
			t.Fatal("fetch never finished")
		}
		f.Update()
		if f.Progress() < last {
			t.Fatalf("progress went backwards: %f -> %f", last, f.Progress())
		}
		last = f.Progress()
	}
	if f.Progress() != 1 {
		t.Fatalf("final progress = %f", f.Progress())
	}
}
