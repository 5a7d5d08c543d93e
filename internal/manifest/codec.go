package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Encode produces the wire form of a manifest: zstd-framed JSON. An empty
// file set is encoded as an empty array so the payload always satisfies the
// manifest schema.
func Encode(m *Manifest) ([]byte, error) {
	enc := *m
	if enc.Files == nil {
		enc.Files = []FileEntry{}
	}
	payload, err := json.Marshal(&enc)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest payload: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return nil, fmt.Errorf("compressing manifest: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing zstd frame: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(raw []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("opening zstd frame: %w", err)
	}
	defer r.Close()

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing manifest: %w", err)
	}
	return payload, nil
}
