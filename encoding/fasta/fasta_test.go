package fasta_test

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/grailbio/trimmer/encoding/fasta"
)

var fastaData string

func init() {
	fastaData = ">seq1\n" + "ACGTA\nCGTAC\nGT\n" + ">seq2 A viral sequence\n" + "ACGT\n" + "acgn\n"
}

func TestGet(t *testing.T) {
	tests := []struct {
		seq     string
		start   uint64
		end     uint64
		want    string
		wantErr bool
	}{
		{"seq1", 1, 2, "C", false},
		{"seq1", 1, 6, "CGTAC", false},
		{"seq1", 0, 12, "ACGTACGTACGT", false},
		{"seq1", 10, 12, "GT", false},
		{"seq2", 0, 8, "ACGTacgn", false},
		{"seq2", 2, 5, "GTa", false},
		{"seq0", 0, 1, "", true},
		{"seq1", 10, 13, "", true},
		{"seq1", 4, 3, "", true},
	}
	f, err := fasta.New(strings.NewReader(fastaData))
	if err != nil {
		t.Fatalf("couldn't create Fasta: %v", err)
	}
	for _, tt := range tests {
		got, err := f.Get(tt.seq, tt.start, tt.end)
		if (err != nil) != tt.wantErr {
			t.Errorf("%+v: unexpected error: %v", tt, err)
		}
		if got != tt.want {
			t.Errorf("%+v: got %q, want %q", tt, got, tt.want)
		}
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		seq     string
		want    uint64
		wantErr bool
	}{
		{"seq1", 12, false},
		{"seq2", 8, false},
		{"seq0", 0, true},
	}
	f, err := fasta.New(strings.NewReader(fastaData))
	if err != nil {
		t.Fatalf("couldn't create Fasta: %v", err)
	}
	for _, tt := range tests {
		got, err := f.Len(tt.seq)
		if (err != nil) != tt.wantErr {
			t.Errorf("%+v: unexpected error: %v", tt, err)
		}
		if got != tt.want {
			t.Errorf("%+v: got %v, want %v", tt, got, tt.want)
		}
	}
}

func TestSeqNames(t *testing.T) {
	f, err := fasta.New(strings.NewReader(fastaData))
	if err != nil {
		t.Fatalf("couldn't create Fasta: %v", err)
	}
	want := sort.StringSlice([]string{"seq1", "seq2"})
	want.Sort()
	got := sort.StringSlice(f.SeqNames())
	got.Sort()
	if !reflect.DeepEqual([]string(got), []string(want)) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestOptClean(t *testing.T) {
	f, err := fasta.New(strings.NewReader(fastaData), fasta.OptClean)
	if err != nil {
		t.Fatalf("couldn't create Fasta: %v", err)
	}
	got, err := f.Get("seq2", 0, 8)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if want := "ACGTACGN"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMalformedFile(t *testing.T) {
	// Sequence data appearing before any '>' header line.
	if _, err := fasta.New(strings.NewReader("ACGT\n>seq1\nACGT\n")); err == nil {
		t.Error("expected an error for sequence data preceding the first header")
	}
}

func TestDuplicateSeqName(t *testing.T) {
	if _, err := fasta.New(strings.NewReader(">seq1\nACGT\n>seq1\nTTTT\n")); err == nil {
		t.Error("expected an error for a duplicate sequence name")
	}
}

func ExampleNew() {
	f, _ := fasta.New(strings.NewReader(">only\nACGT\n"))
	s, _ := f.Get("only", 0, 4)
	fmt.Println(s)
	// Output: ACGT
}
