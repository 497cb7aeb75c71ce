package compress

// ZstdCompressor provides Zstandard compression for snapshot payloads.
//
// Zstd is the default snapshot codec: value-tree payloads contain long runs
// of float64 data and repeated field names, which Zstd compresses well at
// modest CPU cost.
//
// Two implementations exist behind the cgo_zstd build tag: the default pure
// Go codec from klauspost/compress, and a cgo binding to libzstd via
// valyala/gozstd for deployments that can carry the native library.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
//
// Example:
//
//	codec := NewZstdCompressor()
//	compressed, err := codec.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
