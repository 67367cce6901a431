package sink

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
)

func TestWriterPlainRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "sink")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "out.fastq")
	w := NewWriter(vcontext.Background(), 0)
	if err := w.Write(path, []byte("@r1\nACGT\n+\nIIII\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(path, []byte("@r2\nTTTT\n+\nIIII\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "@r1\nACGT\n+\nIIII\n@r2\nTTTT\n+\nIIII\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriterGzipRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "sink")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "out.fastq.gz")
	w := NewWriter(vcontext.Background(), 0)
	payload := []byte("@r1\nACGTACGTACGT\n+\nIIIIIIIIIIII\n")
	if err := w.Write(path, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(gr); err != nil {
		t.Fatalf("read gzip: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), payload) {
		t.Errorf("got %q, want %q", buf.Bytes(), payload)
	}
}

func TestWriterEmptyWriteIsNoop(t *testing.T) {
	dir, err := ioutil.TempDir("", "sink")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "untouched.fastq")
	w := NewWriter(vcontext.Background(), 0)
	if err := w.Write(path, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to not exist, got err=%v", path, err)
	}
}
