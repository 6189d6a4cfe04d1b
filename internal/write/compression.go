package write

import (
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// DefaultLevel is the DEFLATE level used when none is configured.
// It matches zlib's default so output sizes track other packaging tools.
const DefaultLevel = 6

// ValidLevel reports whether level is accepted by the DEFLATE encoder.
func ValidLevel(level int) bool {
	return level >= flate.HuffmanOnly && level <= flate.BestCompression
}

// Deflater returns a zip compressor that encodes at a fixed DEFLATE level.
// A fixed level keeps the compressed bytes stable across runs.
// flate.DefaultCompression is pinned to DefaultLevel.
func Deflater(level int) zip.Compressor {
	if level == flate.DefaultCompression {
		level = DefaultLevel
	}
	return func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	}
}
