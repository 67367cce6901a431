package trim

import (
	"testing"

	"github.com/grailbio/trimmer/fqio"
)

func TestFilterChainClassifiesInOrder(t *testing.T) {
	fc := NewFilterChain(1)
	fc.Add(DestTooShort, MinLength(10, 1))
	fc.Add(DestTrimmed, Trimmed(1))

	short := Context{R1: &fqio.Read{Seq: []byte("ACGT")}}
	if d := fc.Classify(short); d != DestTooShort {
		t.Errorf("got %v, want too-short", d)
	}

	trimmed := Context{R1: &fqio.Read{Seq: []byte("ACGTACGTACGT")}, BP1: 3}
	if d := fc.Classify(trimmed); d != DestTrimmed {
		t.Errorf("got %v, want trimmed", d)
	}

	untouched := Context{R1: &fqio.Read{Seq: []byte("ACGTACGTACGT")}}
	if d := fc.Classify(untouched); d != DestNone {
		t.Errorf("got %v, want none", d)
	}
}

func TestMinLengthPairAffected(t *testing.T) {
	pred := MinLength(10, 2) // requires BOTH sides too short
	ctx := Context{
		R1: &fqio.Read{Seq: []byte("AC")},
		R2: &fqio.Read{Seq: []byte("ACGTACGTACGT")},
	}
	if pred(ctx) {
		t.Errorf("expected predicate not to fire when only one side is short")
	}
	ctx.R2 = &fqio.Read{Seq: []byte("AC")}
	if !pred(ctx) {
		t.Errorf("expected predicate to fire when both sides are short")
	}
}

func TestMaxNContent(t *testing.T) {
	pred := MaxNContent(0.5, 1)
	ctx := Context{R1: &fqio.Read{Seq: []byte("NNNNNACG")}}
	if !pred(ctx) {
		t.Errorf("expected high-N read to fire the filter")
	}
	ctx.R1.Seq = []byte("NACGTACG")
	if pred(ctx) {
		t.Errorf("expected low-N read not to fire the filter")
	}
}
