package main

import (
	"flag"
	"testing"

	"github.com/grailbio/trimmer/adapters"
)

func resetFlags() {
	flag.CommandLine = flag.NewFlagSet("trimmer", flag.ContinueOnError)
}

func TestParseFlagsDefaults(t *testing.T) {
	resetFlags()
	fl := parseFlags([]string{"-r1", "reads.fastq"})
	if fl.r1 != "reads.fastq" {
		t.Errorf("got r1=%q", fl.r1)
	}
	if fl.output != "-" {
		t.Errorf("got output=%q, want default \"-\"", fl.output)
	}
	if fl.errorRate != 0.1 {
		t.Errorf("got errorRate=%v, want default 0.1", fl.errorRate)
	}
	if fl.times != 1 {
		t.Errorf("got times=%d, want 1", fl.times)
	}
	if !fl.serial {
		t.Errorf("expected serial=true when -j is unset (defaults to 1)")
	}
}

func TestParseFlagsRepeatedAdapters(t *testing.T) {
	resetFlags()
	fl := parseFlags([]string{"-r1", "r1.fq", "-a", "AAAA", "-a", "truseq=CCCC", "-g", "^GGGG"})
	if len(fl.adaptersBack) != 2 || fl.adaptersBack[0] != "AAAA" || fl.adaptersBack[1] != "truseq=CCCC" {
		t.Errorf("got adaptersBack=%v", fl.adaptersBack)
	}
	if len(fl.adaptersFront) != 1 || fl.adaptersFront[0] != "^GGGG" {
		t.Errorf("got adaptersFront=%v", fl.adaptersFront)
	}
}

func TestParseFlagsThreadsDisablesSerial(t *testing.T) {
	resetFlags()
	fl := parseFlags([]string{"-r1", "r1.fq", "-j", "4"})
	if fl.serial {
		t.Errorf("expected serial=false when -j > 1")
	}
}

func TestBuildAdapters(t *testing.T) {
	// buildAdapters calls log.Fatalf on a parse error, so this test sticks
	// to the success path; adapters.Parse's own tests cover the error cases.
	specs := stringList{"AGATCGGAAGAGC", "truseq=CTGTCTCTTATACACATCT"}
	as := buildAdapters(specs, adapters.SideBack, 0.1)
	if len(as) != 2 {
		t.Fatalf("got %d adapters, want 2", len(as))
	}
	if as[1].Name != "truseq" {
		t.Errorf("got Name=%q, want truseq", as[1].Name)
	}
}

func TestMinAffected(t *testing.T) {
	fl := &flags{}
	if got := minAffected(fl); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	fl.pairFilterBoth = true
	if got := minAffected(fl); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestPipelineFactoryBuildQualityTrimOnly(t *testing.T) {
	resetFlags()
	fl := parseFlags([]string{"-r1", "r1.fq", "-q", "20"})
	pf := newPipelineFactory(fl)
	pipeline, formatter := pf.build()
	if pipeline == nil || formatter == nil {
		t.Fatalf("build returned nil pipeline/formatter")
	}
}

func TestPipelineFactoryBuildWithAdapters(t *testing.T) {
	resetFlags()
	fl := parseFlags([]string{"-r1", "r1.fq", "-a", "AGATCGGAAGAGC"})
	pf := newPipelineFactory(fl)
	if len(pf.adapters1) != 1 {
		t.Fatalf("got %d adapters1, want 1", len(pf.adapters1))
	}
	pipeline, formatter := pf.build()
	if pipeline == nil || formatter == nil {
		t.Fatalf("build returned nil pipeline/formatter")
	}
}
