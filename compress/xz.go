package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// XZCompressor provides XZ/LZMA2 compression for snapshot payloads.
//
// XZ trades encode speed for the best compression ratio of the available
// codecs, which fits archival snapshots that are written once and rarely
// read back.
type XZCompressor struct{}

var _ Codec = (*XZCompressor)(nil)

// NewXZCompressor creates a new XZ codec.
func NewXZCompressor() XZCompressor {
	return XZCompressor{}
}

// Compress compresses the input data into an XZ stream.
func (c XZCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("xz writer creation failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("xz compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("xz stream finalization failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses an XZ stream.
// The output buffer is pre-sized from the header hint.
func (c XZCompressor) Decompress(data []byte, originalSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xz reader creation failed: %w", err)
	}

	buf := bytes.NewBuffer(make([]byte, 0, max(originalSize, 0)))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("xz decompression failed: %w", err)
	}

	return buf.Bytes(), nil
}
