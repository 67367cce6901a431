package runner

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/trimmer/fqio"
	"github.com/grailbio/trimmer/trim"
)

// runWorker implements §4.J's worker loop: pop a batch, run every record
// through the pipeline and formatter, then hand the result to the sink
// (direct-write, when resultCh is nil, i.e. no writer process) or enqueue it
// for the writer goroutine. Any direct-write error is recorded in errOnce
// rather than stopping the worker, so batch accounting (step 6 of the main
// loop) stays accurate even when one write fails.
func runWorker(idx int, inputCh <-chan batchJob, resultCh chan<- batchResult, sink Sink,
	pipeline *trim.Pipeline, formatter *trim.Formatter, seen map[int]bool, live *liveness, errOnce *errors.Once) ProcessStats {

	stats := newProcessStats()
	for job := range inputCh {
		live.tick()
		if job.done {
			return stats
		}
		rm := make(trim.ResultMap)
		for _, pair := range job.batch.Pairs {
			dest, out1, out2 := pipeline.Call(pair)
			formatter.Format(rm, dest, out1, out2)
			formatInfoFiles(formatter, rm, out1, out2, pipeline)
			stats.Destinations[dest]++
		}
		stats.ProcessedReads += int64(len(job.batch.Pairs))
		stats.TotalBP1 = pipeline.TotalBP1
		stats.TotalBP2 = pipeline.TotalBP2
		seen[job.batch.Number] = true

		if resultCh != nil {
			resultCh <- batchResult{number: job.batch.Number, rm: rm}
		} else {
			errOnce.Set(writeResultMap(sink, rm))
		}
	}
	return stats
}

// formatInfoFiles renders the rest-file/info-file/wildcard-file side
// channels for one processed pair (§4.H), using the Annotations the
// pipeline's adapter cutters observed during the Call that produced
// out1/out2. Formatter's own path checks make every call a no-op when the
// corresponding -*-file flag wasn't set.
func formatInfoFiles(formatter *trim.Formatter, rm trim.ResultMap, out1, out2 *fqio.Read, pipeline *trim.Pipeline) {
	ann1, ann2 := pipeline.LastAnnotations()
	formatter.FormatRest(rm, string(out1.Name), ann1.Rest)
	formatter.FormatInfo(rm, string(out1.Name), ann1.Infos)
	formatter.FormatWildcards(rm, string(out1.Name), ann1.Wildcards)
	if out2 != nil {
		formatter.FormatRest(rm, string(out2.Name), ann2.Rest)
		formatter.FormatInfo(rm, string(out2.Name), ann2.Infos)
		formatter.FormatWildcards(rm, string(out2.Name), ann2.Wildcards)
	}
}

func writeResultMap(sink Sink, rm trim.ResultMap) error {
	for path, data := range rm {
		if err := sink.Write(path, data); err != nil {
			return err
		}
	}
	return nil
}
