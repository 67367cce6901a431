package adapters

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/trimmer/align"
)

func TestParseInlineBack(t *testing.T) {
	as, err := Parse("AGATCGGAAGAGC", SideBack, 0.1)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(as) != 1 {
		t.Fatalf("got %d adapters, want 1", len(as))
	}
	a := as[0]
	if a.Where != align.Back {
		t.Errorf("got Where=%v, want Back", a.Where)
	}
	if a.Name != "AGATCGGAAGAGC" {
		t.Errorf("got Name=%q, want sequence as default name", a.Name)
	}
	if string(a.Seq) != "AGATCGGAAGAGC" {
		t.Errorf("got Seq=%q", a.Seq)
	}
}

func TestParseNamed(t *testing.T) {
	as, err := Parse("truseq=AGATCGGAAGAGC", SideBack, 0.1)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if as[0].Name != "truseq" {
		t.Errorf("got Name=%q, want truseq", as[0].Name)
	}
}

func TestParseAnchoredFront(t *testing.T) {
	as, err := Parse("^AGATCGGAAGAGC", SideFront, 0.1)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if as[0].Where != align.AnchoredFront {
		t.Errorf("got Where=%v, want AnchoredFront", as[0].Where)
	}
}

func TestParseAnchoredBack(t *testing.T) {
	as, err := Parse("AGATCGGAAGAGC$", SideBack, 0.1)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if as[0].Where != align.AnchoredBack {
		t.Errorf("got Where=%v, want AnchoredBack", as[0].Where)
	}
}

func TestParseAnchorWrongSideRejected(t *testing.T) {
	if _, err := Parse("^AGATCGGAAGAGC", SideBack, 0.1); err == nil {
		t.Errorf("expected error anchoring '^' on a -a (back) adapter")
	}
	if _, err := Parse("AGATCGGAAGAGC$", SideFront, 0.1); err == nil {
		t.Errorf("expected error anchoring '$' on a -g (front) adapter")
	}
}

func TestParseDefaultErrorRate(t *testing.T) {
	as, err := Parse("ACGT", SideAnywhere, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if as[0].MaxErrorRate != DefaultMaxErrorRate {
		t.Errorf("got MaxErrorRate=%v, want default %v", as[0].MaxErrorRate, DefaultMaxErrorRate)
	}
}

func TestParseFastaFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "adapters")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "adapters.fasta")
	if err := ioutil.WriteFile(path, []byte(">truseq\nAGATCGGAAGAGC\n>nextera\nCTGTCTCTTATACACATCT\n"), 0644); err != nil {
		t.Fatal(err)
	}

	as, err := Parse("file:"+path, SideBack, 0.1)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(as) != 2 {
		t.Fatalf("got %d adapters, want 2", len(as))
	}
	if as[0].Name != "truseq" || string(as[0].Seq) != "AGATCGGAAGAGC" {
		t.Errorf("got adapter 0 = %+v", as[0])
	}
	if as[1].Name != "nextera" || string(as[1].Seq) != "CTGTCTCTTATACACATCT" {
		t.Errorf("got adapter 1 = %+v", as[1])
	}
}
