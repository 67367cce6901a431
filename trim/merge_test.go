package trim

import (
	"testing"

	"github.com/grailbio/trimmer/align"
	"github.com/grailbio/trimmer/fqio"
	"github.com/grailbio/trimmer/rmp"
)

func TestMergeOverlapTrimsBothMates(t *testing.T) {
	insert := []byte("ACGTACGTACGTACGTACGT")
	adapter1 := []byte("AGATCGGAAGAGC")
	adapter2 := []byte("AGATCGGAAGAGC")

	seq1 := append(append([]byte{}, insert...), adapter1[:10]...)
	seq2 := append(append([]byte{}, align.ReverseComplement(insert)...), adapter2[:10]...)

	table := rmp.New(rmp.DefaultAlphabetSize)
	ia := align.NewInsertAligner(adapter1, adapter2, table)
	m := NewMergeOverlap(ia)

	r1 := &fqio.Read{Name: []byte("r1"), Seq: seq1, Qual: make([]byte, len(seq1))}
	r2 := &fqio.Read{Name: []byte("r2"), Seq: seq2, Qual: make([]byte, len(seq2))}
	for i := range r1.Qual {
		r1.Qual[i] = 'I'
	}
	for i := range r2.Qual {
		r2.Qual[i] = 'I'
	}

	out1, out2, bp1, bp2, merged := m.Merge(r1, r2)
	if !merged {
		t.Fatalf("expected an overlap to be found")
	}
	if bp1 == 0 || bp2 == 0 {
		t.Errorf("expected both mates trimmed, got bp1=%d bp2=%d", bp1, bp2)
	}
	if len(out1.Seq) != len(out1.Qual) || len(out2.Seq) != len(out2.Qual) {
		t.Errorf("seq/qual length mismatch after merge")
	}
}

func TestMergeOverlapNoneFound(t *testing.T) {
	table := rmp.New(rmp.DefaultAlphabetSize)
	ia := align.NewInsertAligner([]byte("AGATCGGAAGAGC"), []byte("AGATCGGAAGAGC"), table)
	m := NewMergeOverlap(ia)
	r1 := &fqio.Read{Seq: []byte("AAAAAAAAAAAAAAAA"), Qual: make([]byte, 16)}
	r2 := &fqio.Read{Seq: []byte("TTTTTTTTTTTTTTTT"), Qual: make([]byte, 16)}
	_, _, _, _, merged := m.Merge(r1, r2)
	if merged {
		t.Errorf("expected no merge for mates that overlap fully and carry no adapter")
	}
}
