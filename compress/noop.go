package compress

// NoOpCompressor provides a no-operation codec that bypasses data without compression.
//
// This codec backs uncompressed snapshots and is also useful when measuring
// encoding overhead in isolation.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec that bypasses data.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
// Callers should not modify the input data after calling this method if they
// plan to use the returned slice.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input data directly without copying.
//
// The originalSize hint is ignored; the payload is already its decoded form.
func (c NoOpCompressor) Decompress(data []byte, _ int) ([]byte, error) {
	return data, nil
}
