package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// FileEntry describes one content file the manifest expects on disk.
type FileEntry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Manifest is the versioned index of a content package. Once deserialized it
// is treated as an immutable value.
type Manifest struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Files   []FileEntry `json:"files"`
}

// Identity names the package and version an update run targets.
type Identity struct {
	Name    string
	Version string
}

func (id Identity) String() string {
	return id.Name + " " + id.Version
}

// ManifestFileName is the wire name of the manifest binary for this
// identity. Both origins must serve exactly this name.
func (id Identity) ManifestFileName() string {
	return fmt.Sprintf("%s_%s.manifest", id.Name, id.Version)
}

// DigestFileName is the wire name of the companion digest file.
func (id Identity) DigestFileName() string {
	return fmt.Sprintf("%s_%s.hash", id.Name, id.Version)
}

// Digest returns the lowercase hex SHA-256 of a manifest binary. The digest
// file served next to the binary holds exactly this string.
func Digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
