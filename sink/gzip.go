// +build !cgo

package sink

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// newGzipWriter is the non-cgo codec: klauspost/compress's pure-Go gzip,
// the same library the teacher already links for fastq.gz reading in
// encoding/fastq/downsample.go.
func newGzipWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(w, level)
}
