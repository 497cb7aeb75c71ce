//go:build cgo_zstd

package compress

import (
	"github.com/valyala/gozstd"
)

// Compress compresses the input data using the libzstd binding.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses Zstd-compressed data using the libzstd binding.
func (c ZstdCompressor) Decompress(data []byte, originalSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 0, max(originalSize, 0))

	return gozstd.Decompress(dst, data)
}
