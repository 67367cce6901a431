package trim

import (
	"bytes"
	"testing"

	"github.com/grailbio/trimmer/align"
	"github.com/grailbio/trimmer/fqio"
)

func TestAdapterCutterRemovesBackAdapter(t *testing.T) {
	adapter, err := align.NewAdapter("a1", []byte("AGATCGGAAGAGC"), align.Back, 0.2)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	aligner := align.NewAligner(adapter.Seq, adapter.MaxErrorRate, align.Back.Flags(), false, false)
	cutter := NewAdapterCutter([]*align.Adapter{adapter}, []align.Locator{aligner}, 1, SideBoth)

	r := &fqio.Read{Name: []byte("r1"), Seq: []byte("ACGTACGTAGATCGGAAGAGC"), Qual: bytes.Repeat([]byte{'I'}, 21)}
	out, bp := cutter.Apply(r)
	if bp == 0 {
		t.Fatalf("expected some bases trimmed")
	}
	if string(out.Seq) != "ACGTACGT" {
		t.Errorf("got seq %q, want %q", out.Seq, "ACGTACGT")
	}
	if len(out.Qual) != len(out.Seq) {
		t.Errorf("qual/seq length mismatch: %d vs %d", len(out.Qual), len(out.Seq))
	}
	if cutter.HitCounts()["a1"] != 1 {
		t.Errorf("got HitCounts[a1]=%d, want 1", cutter.HitCounts()["a1"])
	}
}

func TestChainAdapterHitCounts(t *testing.T) {
	adapter, err := align.NewAdapter("a1", []byte("AGATCGGAAGAGC"), align.Back, 0.2)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	aligner := align.NewAligner(adapter.Seq, adapter.MaxErrorRate, align.Back.Flags(), false, false)
	cutter := NewAdapterCutter([]*align.Adapter{adapter}, []align.Locator{aligner}, 1, Side1)
	chain := NewChain(nil)
	chain.AddModifier(OpAdapterCut, Side1, cutter)

	r1 := &fqio.Read{Name: []byte("r1"), Seq: []byte("ACGTACGTAGATCGGAAGAGC"), Qual: bytes.Repeat([]byte{'I'}, 21)}
	r2 := &fqio.Read{Name: []byte("r2"), Seq: []byte("TTTTAGATCGGAAGAGC"), Qual: bytes.Repeat([]byte{'I'}, 17)}
	chain.Modify(r1, nil)
	chain.Modify(r2, nil)

	counts := chain.AdapterHitCounts()
	if counts["a1"] != 2 {
		t.Errorf("got AdapterHitCounts[a1]=%d, want 2", counts["a1"])
	}
}

func TestAdapterCutterLastAnnotations(t *testing.T) {
	adapter, err := align.NewAdapter("a1", []byte("AGATCGGAAGAGC"), align.Back, 0.2)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	aligner := align.NewAligner(adapter.Seq, adapter.MaxErrorRate, align.Back.Flags(), false, false)
	cutter := NewAdapterCutter([]*align.Adapter{adapter}, []align.Locator{aligner}, 1, Side1)

	r := &fqio.Read{Name: []byte("r1"), Seq: []byte("ACGTACGTAGATCGGAAGAGC"), Qual: bytes.Repeat([]byte{'I'}, 21)}
	cutter.Apply(r)

	ann := cutter.LastAnnotations()
	if len(ann.Infos) != 1 {
		t.Fatalf("got %d infos, want 1", len(ann.Infos))
	}
	if ann.Infos[0].AdapterName != "a1" {
		t.Errorf("got adapter name %q, want a1", ann.Infos[0].AdapterName)
	}
	if string(ann.Rest) != "AGATCGGAAGAGC" {
		t.Errorf("got discarded rest %q, want the removed adapter span", ann.Rest)
	}

	// A read with no adapter occurrence clears stale Annotations from the
	// previous Apply call.
	clean := &fqio.Read{Name: []byte("r2"), Seq: []byte("ACGTACGT"), Qual: bytes.Repeat([]byte{'I'}, 8)}
	cutter.Apply(clean)
	if ann2 := cutter.LastAnnotations(); len(ann2.Infos) != 0 || len(ann2.Rest) != 0 {
		t.Errorf("expected empty Annotations for a clean read, got %+v", ann2)
	}
}

func TestChainLastAnnotationsBySide(t *testing.T) {
	adapter, err := align.NewAdapter("a1", []byte("AGATCGGAAGAGC"), align.Back, 0.2)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	aligner1 := align.NewAligner(adapter.Seq, adapter.MaxErrorRate, align.Back.Flags(), false, false)
	aligner2 := align.NewAligner(adapter.Seq, adapter.MaxErrorRate, align.Back.Flags(), false, false)
	cutter1 := NewAdapterCutter([]*align.Adapter{adapter}, []align.Locator{aligner1}, 1, Side1)
	cutter2 := NewAdapterCutter([]*align.Adapter{adapter}, []align.Locator{aligner2}, 1, Side2)
	chain := NewChain(nil)
	chain.AddModifier(OpAdapterCut, Side1, cutter1)
	chain.AddModifier(OpAdapterCut, Side2, cutter2)

	r1 := &fqio.Read{Name: []byte("r1"), Seq: []byte("ACGTACGTAGATCGGAAGAGC"), Qual: bytes.Repeat([]byte{'I'}, 21)}
	r2 := &fqio.Read{Name: []byte("r2"), Seq: []byte("TTTTACGT"), Qual: bytes.Repeat([]byte{'I'}, 8)}
	chain.Modify(r1, r2)

	ann1, ann2 := chain.LastAnnotations()
	if len(ann1.Infos) != 1 {
		t.Errorf("got %d side-1 infos, want 1", len(ann1.Infos))
	}
	if len(ann2.Infos) != 0 {
		t.Errorf("got %d side-2 infos, want 0 (no adapter occurrence in r2)", len(ann2.Infos))
	}
}

func TestUnconditionalCut(t *testing.T) {
	c := NewUnconditionalCut(3, SideBoth)
	r := &fqio.Read{Seq: []byte("ACGTACGT"), Qual: []byte("IIIIIIII")}
	out, bp := c.Apply(r)
	if bp != 3 || string(out.Seq) != "TACGT" {
		t.Errorf("got seq=%q bp=%d", out.Seq, bp)
	}

	c2 := NewUnconditionalCut(-3, SideBoth)
	out2, bp2 := c2.Apply(r)
	if bp2 != 3 || string(out2.Seq) != "ACGTA" {
		t.Errorf("got seq=%q bp=%d", out2.Seq, bp2)
	}
}

func TestQualityTrim3Prime(t *testing.T) {
	q := NewQualityTrim(0, 20, '!', SideBoth)
	// Quals "IIIII#####" at Phred+33: 'I'=40, '#'=2. With cutoff 20, trailing
	// low-quality run should be trimmed.
	r := &fqio.Read{Seq: []byte("AAAAACCCCC"), Qual: []byte("IIIII#####")}
	out, bp := q.Apply(r)
	if bp == 0 {
		t.Fatalf("expected some quality trimming")
	}
	if string(out.Seq) != "AAAAA" {
		t.Errorf("got seq %q, want %q", out.Seq, "AAAAA")
	}
}

func TestNEndTrim(t *testing.T) {
	trim := NewNEndTrim(SideBoth)
	r := &fqio.Read{Seq: []byte("NNACGTNN"), Qual: []byte("IIIIIIII")}
	out, bp := trim.Apply(r)
	if string(out.Seq) != "ACGT" || bp != 4 {
		t.Errorf("got seq=%q bp=%d", out.Seq, bp)
	}
}

func TestOverwriteLowQuality(t *testing.T) {
	o := NewOverwriteLowQuality(20, '!', SideBoth)
	r := &fqio.Read{Seq: []byte("ACGTA"), Qual: []byte("II#II")}
	out, n := o.Apply(r)
	if n != 1 || string(out.Seq) != "ACNTA" {
		t.Errorf("got seq=%q n=%d", out.Seq, n)
	}
}

func TestChainModifyOrdersByOpCode(t *testing.T) {
	chain := NewChain([]OpCode{OpUnconditionalCut, OpQualityTrim})
	chain.AddModifier(OpUnconditionalCut, SideBoth, NewUnconditionalCut(2, SideBoth))
	r1 := &fqio.Read{Seq: []byte("ACGTACGT"), Qual: []byte("IIIIIIII")}
	out1, out2, bp1, bp2 := chain.Modify(r1, nil)
	if out2 != nil {
		t.Errorf("expected nil r2 to stay nil in single-end mode")
	}
	if bp2 != 0 {
		t.Errorf("expected bp2=0 for single-end, got %d", bp2)
	}
	if string(out1.Seq) != "GTACGT" || bp1 != 2 {
		t.Errorf("got seq=%q bp1=%d", out1.Seq, bp1)
	}
}

func TestAdapterFlagsHelper(t *testing.T) {
	// Regression check that trim package can reach the exported Flags
	// accessor for Where (used to build Locators for AdapterCutter).
	if align.Back.Flags() == 0 {
		t.Errorf("expected non-zero flags for BACK")
	}
}
