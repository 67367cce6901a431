package fqio

import "io"

var newline = []byte{'\n'}
var at = []byte{'@'}

// Writer writes Read records in FASTQ format.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a Writer over w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Write writes r in FASTQ format, re-adding the '@' prefix Scanner strips.
func (w *Writer) Write(r *Read) error {
	if w.err == nil {
		_, w.err = w.w.Write(at)
	}
	w.writeln(r.Name)
	w.writeln(r.Seq)
	w.writeln(r.Plus)
	w.writeln(r.Qual)
	return w.err
}

func (w *Writer) writeln(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}
