package fqio

import (
	"bytes"
	"testing"
)

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	r := &Read{Name: []byte("read1"), Seq: []byte("ACGT"), Plus: []byte("+"), Qual: []byte("IIII")}
	if err := w.Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "@read1\nACGT\n+\nIIII\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	s := NewScanner(bytes.NewReader(buf.Bytes()))
	var got Read
	if !s.Scan(&got) {
		t.Fatalf("Scan: %v", s.Err())
	}
	if string(got.Seq) != "ACGT" {
		t.Errorf("round-trip mismatch: got %+v", got)
	}
}
