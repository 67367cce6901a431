// +build cgo

package sink

import (
	"compress/flate"
	"io"

	"github.com/yasushi-saito/zlibng"
)

// newGzipWriter is the cgo codec, mirroring encoding/bgzf's gzipFactory:
// zlibng wraps zlib-ng, which compresses noticeably faster than the pure-Go
// implementation at equivalent ratios. Unlike bgzf's writer, this produces a
// plain single-stream gzip file, not a block-indexed .bgzf one: trimmed
// FASTQ output has no need for bgzf's seek index.
func newGzipWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = flate.DefaultCompression
	}
	return zlibng.NewWriter(w, zlibng.Opts{Level: level})
}
