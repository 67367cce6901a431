package runner

import (
	"fmt"

	"github.com/grailbio/trimmer/trim"
)

// SerialRunner processes batches one at a time on the calling goroutine, in
// batch-number order, producing output byte-identical to an order-preserving
// ParallelRunner over the same input (§4.K).
type SerialRunner struct {
	Pipeline  *trim.Pipeline
	Formatter *trim.Formatter
	Sink      Sink
}

// NewSerialRunner builds a SerialRunner.
func NewSerialRunner(pipeline *trim.Pipeline, formatter *trim.Formatter, sink Sink) *SerialRunner {
	return &SerialRunner{Pipeline: pipeline, Formatter: formatter, Sink: sink}
}

// Run drives src to completion, writing each batch's results as soon as
// they're produced (batches already arrive in order since there is only one
// worker), and returns the run's Summary.
func (r *SerialRunner) Run(src BatchSource) (Summary, error) {
	var agg Summary
	agg.Process = newProcessStats()
	agg.Adapters = make(AdapterStats)

	expected := 1
	for {
		b, ok := src.Next()
		if !ok {
			break
		}
		if b.Number != expected {
			return agg, fmt.Errorf("runner: serial runner expected batch %d, got %d", expected, b.Number)
		}
		expected++

		rm := make(trim.ResultMap)
		for _, pair := range b.Pairs {
			dest, out1, out2 := r.Pipeline.Call(pair)
			r.Formatter.Format(rm, dest, out1, out2)
			formatInfoFiles(r.Formatter, rm, out1, out2, r.Pipeline)
			agg.Process.Destinations[dest]++
		}
		agg.Process.ProcessedReads += int64(len(b.Pairs))
		if err := writeResultMap(r.Sink, rm); err != nil {
			return agg, err
		}
	}
	agg.Process.TotalBP1 = r.Pipeline.TotalBP1
	agg.Process.TotalBP2 = r.Pipeline.TotalBP2
	for name, n := range r.Pipeline.AdapterHitCounts() {
		agg.Adapters[name] += n
	}
	return agg, src.Err()
}
