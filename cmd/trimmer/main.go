// Command trimmer removes sequencing adapters and low-quality bases from
// FASTQ reads, single- or paired-end, following the cutadapt/atropos family
// of CLIs (original_source/atropos/commands/trim.py) while wiring this
// repo's rmp/align/trim/runner/fqio/sink/adapters packages the way
// cmd/bio-fusion/main.go wires the teacher's fusion pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/trimmer/adapters"
	"github.com/grailbio/trimmer/align"
	"github.com/grailbio/trimmer/fqio"
	"github.com/grailbio/trimmer/rmp"
	"github.com/grailbio/trimmer/runner"
	"github.com/grailbio/trimmer/sink"
	"github.com/grailbio/trimmer/trim"
	"v.io/x/lib/vlog"
)

// stringList accumulates repeated occurrences of a flag, e.g. -a A -a B.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type flags struct {
	adaptersBack, adaptersFront, adaptersAny     stringList
	adaptersBack2, adaptersFront2, adaptersAny2  stringList
	errorRate                                    float64
	times                                        int

	r1, r2               string
	interleavedInput     bool
	output, pairedOutput string
	interleavedOutput    bool

	tooShortOutput, tooShortPairedOutput   string
	tooLongOutput, tooLongPairedOutput     string
	untrimmedOutput, untrimmedPairedOutput string
	discardTrimmed, discardUntrimmed       bool

	minLength, maxLength int
	maxN                 float64
	pairFilterBoth       bool

	qualityCutoff3, qualityCutoff5 int
	nextseqTrim                    int

	mergeOverlap bool

	restFile, infoFile, wildcardFile string

	threads         int
	batchSize       int
	orderPreserving bool
	serial          bool
	compression     string
}

func parseFlags(args []string) *flags {
	fl := &flags{}
	fs := flag.CommandLine

	fs.Var(&fl.adaptersBack, "a", "3' adapter on read 1 (repeatable); name=SEQUENCE or SEQUENCE$ to anchor")
	fs.Var(&fl.adaptersFront, "g", "5' adapter on read 1 (repeatable); name=SEQUENCE or ^SEQUENCE to anchor")
	fs.Var(&fl.adaptersAny, "b", "adapter that may occur at either end of read 1 (repeatable)")
	fs.Var(&fl.adaptersBack2, "A", "3' adapter on read 2 (repeatable)")
	fs.Var(&fl.adaptersFront2, "G", "5' adapter on read 2 (repeatable)")
	fs.Var(&fl.adaptersAny2, "B", "adapter that may occur at either end of read 2 (repeatable)")
	fs.Float64Var(&fl.errorRate, "e", adapters.DefaultMaxErrorRate, "maximum allowed error rate for adapter matches")
	fs.IntVar(&fl.times, "n", 1, "remove up to this many adapter occurrences per read")

	fs.StringVar(&fl.r1, "r1", "", "read 1 FASTQ input path (or the only input, single-end)")
	fs.StringVar(&fl.r2, "r2", "", "read 2 FASTQ input path (paired-end)")
	fs.BoolVar(&fl.interleavedInput, "interleaved", false, "r1 input is interleaved paired-end FASTQ")
	fs.StringVar(&fl.output, "o", "-", "trimmed read 1 output path")
	fs.StringVar(&fl.pairedOutput, "p", "", "trimmed read 2 output path (paired-end)")
	fs.BoolVar(&fl.interleavedOutput, "interleaved-output", false, "write trimmed output as interleaved FASTQ to -o")

	fs.StringVar(&fl.tooShortOutput, "too-short-output", "", "write reads rejected as too-short here instead of discarding")
	fs.StringVar(&fl.tooShortPairedOutput, "too-short-paired-output", "", "read-2 counterpart of --too-short-output")
	fs.StringVar(&fl.tooLongOutput, "too-long-output", "", "write reads rejected as too-long here instead of discarding")
	fs.StringVar(&fl.tooLongPairedOutput, "too-long-paired-output", "", "read-2 counterpart of --too-long-output")
	fs.StringVar(&fl.untrimmedOutput, "untrimmed-output", "", "write reads with no adapter match here instead of -o")
	fs.StringVar(&fl.untrimmedPairedOutput, "untrimmed-paired-output", "", "read-2 counterpart of --untrimmed-output")
	fs.BoolVar(&fl.discardTrimmed, "discard-trimmed", false, "discard reads in which an adapter was found")
	fs.BoolVar(&fl.discardUntrimmed, "discard-untrimmed", false, "discard reads in which no adapter was found")

	fs.IntVar(&fl.minLength, "m", 0, "discard processed reads shorter than this (0 disables)")
	fs.IntVar(&fl.maxLength, "M", 0, "discard processed reads longer than this (0 disables)")
	fs.Float64Var(&fl.maxN, "max-n", 0, "discard reads with more than this fraction of N calls (0 disables)")
	fs.BoolVar(&fl.pairFilterBoth, "pair-filter-both", false, "length/N filters require both mates to qualify, not just one")

	fs.IntVar(&fl.qualityCutoff3, "q", 0, "3' quality trim cutoff (0 disables)")
	fs.IntVar(&fl.qualityCutoff5, "q5", 0, "5' quality trim cutoff (0 disables)")
	fs.IntVar(&fl.nextseqTrim, "nextseq-trim", 0, "3' quality trim cutoff treating high-confidence G calls as low quality (NextSeq two-channel chemistry)")

	fs.BoolVar(&fl.mergeOverlap, "merge-overlap", false, "detect 3' adapter contamination from paired-end mate overlap instead of aligning each read independently")

	fs.StringVar(&fl.restFile, "rest-file", "", "write the non-adapter remainder of trimmed reads here")
	fs.StringVar(&fl.infoFile, "info-file", "", "write one line per adapter match here")
	fs.StringVar(&fl.wildcardFile, "wildcard-file", "", "write observed wildcard-position base calls here")

	fs.IntVar(&fl.threads, "j", 1, "worker goroutines (1 runs the serial runner)")
	fs.IntVar(&fl.batchSize, "batch-size", 1000, "reads per batch handed to a worker")
	fs.BoolVar(&fl.orderPreserving, "order-preserving", true, "preserve input order in output when running with multiple threads")
	fs.StringVar(&fl.compression, "compression", "", "\"writer\" reserves one worker for output compression")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: trimmer -a ADAPTER [-a ADAPTER ...] -r1 reads.fastq [-r2 mate.fastq] -o out.fastq [-p out2.fastq]\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	fl.serial = fl.threads <= 1
	return fl
}

// maxAdapterWarmLen bounds the rmp.Table.Warm call: longer than almost any
// adapter or quality-trimmed read prefix this pipeline aligns against.
const maxAdapterWarmLen = 300

func buildAdapters(specs stringList, side adapters.Side, errorRate float64) []*align.Adapter {
	var out []*align.Adapter
	for _, spec := range specs {
		as, err := adapters.Parse(spec, side, errorRate)
		if err != nil {
			log.Fatalf("trimmer: %v", err)
		}
		out = append(out, as...)
	}
	return out
}

// pipelineFactory builds a fresh, goroutine-exclusive Pipeline+Formatter
// pair sharing the read-only adapters/aligners/rmp table captured in fl.
type pipelineFactory struct {
	fl        *flags
	adapters1 []*align.Adapter
	adapters2 []*align.Adapter
	table     *rmp.Table
}

func newPipelineFactory(fl *flags) *pipelineFactory {
	table := rmp.New(rmp.DefaultAlphabetSize)
	// Warm the memo table for common adapter/read lengths up front, spread
	// across worker goroutines, so the first batch each worker handles
	// doesn't serialize on a cold cache behind table's mutex.
	if err := table.Warm(maxAdapterWarmLen); err != nil {
		log.Error.Printf("trimmer: warming rmp table: %v", err)
	}
	a1 := append(append(buildAdapters(fl.adaptersBack, adapters.SideBack, fl.errorRate),
		buildAdapters(fl.adaptersFront, adapters.SideFront, fl.errorRate)...),
		buildAdapters(fl.adaptersAny, adapters.SideAnywhere, fl.errorRate)...)
	a2 := append(append(buildAdapters(fl.adaptersBack2, adapters.SideBack, fl.errorRate),
		buildAdapters(fl.adaptersFront2, adapters.SideFront, fl.errorRate)...),
		buildAdapters(fl.adaptersAny2, adapters.SideAnywhere, fl.errorRate)...)
	for _, a := range a1 {
		a.Times = fl.times
	}
	for _, a := range a2 {
		a.Times = fl.times
	}
	return &pipelineFactory{fl: fl, adapters1: a1, adapters2: a2, table: table}
}

func locators(as []*align.Adapter) []align.Locator {
	locs := make([]align.Locator, len(as))
	for i, a := range as {
		locs[i] = align.NewLocatorForAdapter(a)
	}
	return locs
}

func (pf *pipelineFactory) build() (*trim.Pipeline, *trim.Formatter) {
	fl := pf.fl
	chain := trim.NewChain(nil)

	if len(pf.adapters1) > 0 {
		chain.AddModifier(trim.OpAdapterCut, trim.Side1, trim.NewAdapterCutter(pf.adapters1, locators(pf.adapters1), fl.times, trim.Side1))
	}
	if len(pf.adapters2) > 0 {
		chain.AddModifier(trim.OpAdapterCut, trim.Side2, trim.NewAdapterCutter(pf.adapters2, locators(pf.adapters2), fl.times, trim.Side2))
	}
	if fl.qualityCutoff3 > 0 || fl.qualityCutoff5 > 0 {
		chain.AddModifier(trim.OpQualityTrim, trim.SideBoth, trim.NewQualityTrim(fl.qualityCutoff5, fl.qualityCutoff3, '#', trim.SideBoth))
	}
	if fl.nextseqTrim > 0 {
		chain.AddModifier(trim.OpNextSeqQualityTrim, trim.SideBoth, trim.NewNextSeqQualityTrim(fl.nextseqTrim, '#', trim.SideBoth))
	}
	if fl.mergeOverlap && len(pf.adapters1) > 0 && len(pf.adapters2) > 0 {
		ia := align.NewInsertAligner(pf.adapters1[0].Seq, pf.adapters2[0].Seq, pf.table)
		chain.SetMergeOverlap(trim.NewMergeOverlap(ia))
	}

	filters := trim.NewFilterChain(minAffected(fl))
	if fl.maxLength > 0 {
		filters.Add(trim.DestTooLong, trim.MaxLength(fl.maxLength, minAffected(fl)))
	}
	if fl.minLength > 0 {
		filters.Add(trim.DestTooShort, trim.MinLength(fl.minLength, minAffected(fl)))
	}
	if fl.maxN > 0 {
		filters.Add(trim.DestNContent, trim.MaxNContent(fl.maxN, minAffected(fl)))
	}
	if fl.mergeOverlap {
		filters.Add(trim.DestMerged, trim.Merged())
	}
	filters.Add(trim.DestTrimmed, trim.Trimmed(1))
	filters.Add(trim.DestUntrimmed, func(ctx trim.Context) bool { return true })

	// A destination with no registered paths is dropped by Format, which is
	// how --discard-trimmed/--discard-untrimmed discard their reads.
	f := trim.NewFormatter()
	f.SetPaths(trim.DestNone, fl.output, fl.pairedOutput, fl.interleavedOutput)
	if !fl.discardTrimmed {
		f.SetPaths(trim.DestTrimmed, fl.output, fl.pairedOutput, fl.interleavedOutput)
	}
	f.SetPaths(trim.DestMerged, fl.output, fl.pairedOutput, fl.interleavedOutput)
	if fl.discardUntrimmed {
		// no paths for DestUntrimmed
	} else if fl.untrimmedOutput != "" {
		f.SetPaths(trim.DestUntrimmed, fl.untrimmedOutput, fl.untrimmedPairedOutput, fl.interleavedOutput)
	} else {
		f.SetPaths(trim.DestUntrimmed, fl.output, fl.pairedOutput, fl.interleavedOutput)
	}
	if fl.tooShortOutput != "" {
		f.SetPaths(trim.DestTooShort, fl.tooShortOutput, fl.tooShortPairedOutput, fl.interleavedOutput)
	}
	if fl.tooLongOutput != "" {
		f.SetPaths(trim.DestTooLong, fl.tooLongOutput, fl.tooLongPairedOutput, fl.interleavedOutput)
	}
	f.SetInfoFiles(fl.restFile, fl.infoFile, fl.wildcardFile)

	return trim.NewPipeline(chain, filters), f
}

func minAffected(fl *flags) int {
	if fl.pairFilterBoth {
		return 2
	}
	return 1
}

// openInput opens path via github.com/grailbio/base/file, the same
// ctx-scoped abstraction encoding/fastq/downsample.go uses, so local and
// blob-backed (s3://) input paths share one code path.
func openInput(ctx context.Context, path string) (io.Reader, func() error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		log.Fatalf("trimmer: opening %s: %v", path, err)
	}
	return f.Reader(ctx), func() error { return f.Close(ctx) }
}

// openSource builds the batch source for fl's inputs and returns a closer
// for every file it opened.
func openSource(fl *flags) (runner.BatchSource, []func() error) {
	ctx := vcontext.Background()
	r1, close1 := openInput(ctx, fl.r1)
	if fl.interleavedInput {
		return fqio.NewInterleavedPairReader(fqio.NewInterleavedPairScanner(r1), fl.batchSize), []func() error{close1}
	}
	if fl.r2 == "" {
		return fqio.NewReader(fqio.NewScanner(r1), fl.batchSize), []func() error{close1}
	}
	r2, close2 := openInput(ctx, fl.r2)
	return fqio.NewPairReader(fqio.NewPairScanner(r1, r2), fl.batchSize), []func() error{close1, close2}
}

func printSummary(s runner.Summary) {
	vlog.Infof("trimmer: processed %d reads, %d bp (r1), %d bp (r2)",
		s.Process.ProcessedReads, s.Process.TotalBP1, s.Process.TotalBP2)
	for dest, n := range s.Process.Destinations {
		vlog.Infof("trimmer: %s: %d", dest, n)
	}
	for name, n := range s.Adapters {
		vlog.Infof("trimmer: adapter %s: %d", name, n)
	}
}

func main() {
	fl := parseFlags(os.Args[1:])
	cleanup := grail.Init()
	defer cleanup()

	if len(fl.adaptersBack) == 0 && len(fl.adaptersFront) == 0 && len(fl.adaptersAny) == 0 &&
		fl.qualityCutoff3 == 0 && fl.qualityCutoff5 == 0 && fl.nextseqTrim == 0 && !fl.mergeOverlap {
		log.Fatal("trimmer: no adapters and no quality trimming requested; nothing to do")
	}
	if fl.r1 == "" {
		log.Fatal("trimmer: -r1 is required")
	}
	if fl.interleavedInput && fl.r2 != "" {
		log.Fatal("trimmer: --interleaved takes mates from -r1 alone; -r2 is invalid with it")
	}
	if fl.mergeOverlap && (len(fl.adaptersBack) != 1 || len(fl.adaptersBack2) != 1) {
		log.Fatal("trimmer: --merge-overlap requires exactly one -a adapter and one -A adapter")
	}

	pf := newPipelineFactory(fl)
	src, closers := openSource(fl)

	out := sink.NewWriter(vcontext.Background(), 0)
	defer func() {
		if err := out.Close(); err != nil {
			log.Error.Printf("trimmer: closing output: %v", err)
		}
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Error.Printf("trimmer: closing input: %v", err)
			}
		}
	}()

	var (
		summary runner.Summary
		err     error
	)
	if fl.serial {
		pipeline, formatter := pf.build()
		summary, err = runner.NewSerialRunner(pipeline, formatter, out).Run(src)
	} else {
		cfg := runner.Config{
			Threads:          fl.threads,
			UseWriterProcess: fl.orderPreserving || fl.compression == "writer",
			Compression:      fl.compression,
			OrderPreserving:  fl.orderPreserving,
		}
		summary, err = runner.NewParallelRunner(cfg, out).Run(src, pf.build)
	}
	if err != nil {
		log.Fatalf("trimmer: %v", err)
	}
	printSummary(summary)
}
