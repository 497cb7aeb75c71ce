package compress

import "github.com/klauspost/compress/s2"

// S2Compressor provides S2 compression, the fastest of the real codecs.
// Suited to short-lived snapshots where encode throughput matters more than
// size on disk.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression.
// The output buffer is sized from the header hint; S2 reallocates if the
// hint turns out too small.
func (c S2Compressor) Decompress(data []byte, originalSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, max(originalSize, 0))

	return s2.Decode(dst, data)
}
