package runner

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/trimmer/fqio"
	"github.com/grailbio/trimmer/trim"
	"v.io/x/lib/vlog"
)

// BatchSource enumerates numbered batches, e.g. fqio.Reader.
type BatchSource interface {
	Next() (fqio.Batch, bool)
	Err() error
}

// ParallelRunner implements §4.J: a bounded-queue worker pool feeding an
// optional dedicated writer goroutine, preserving input order in its output
// when Config.OrderPreserving is set.
type ParallelRunner struct {
	cfg       Config
	pipeline  *trim.Pipeline
	formatter *trim.Formatter
	sink      Sink
}

// NewParallelRunner builds a ParallelRunner; pipeline and formatter are
// NOT goroutine-safe and must be cloned per worker by caller-supplied
// factories if they carry mutable state (see Run's newPipeline parameter).
func NewParallelRunner(cfg Config, sink Sink) *ParallelRunner {
	return &ParallelRunner{cfg: cfg, sink: sink}
}

// Run drives src through the worker pool described in §4.J and returns the
// folded Summary, or an error if any batch went unaccounted for or any
// worker/writer failed.
func (r *ParallelRunner) Run(src BatchSource, newPipeline func() (*trim.Pipeline, *trim.Formatter)) (Summary, error) {
	cfg := r.cfg
	workers := cfg.threads()
	if workers < 1 {
		workers = 1
	}

	// Compression-in-writer policy (§4.J): when requested and there's more
	// than one worker to spare, pull one pipeline worker out of the pool and
	// route every write (and thus every sink-side compression) through the
	// dedicated writer goroutine instead. Without a writer goroutine there is
	// nothing to reserve a worker for, so this also forces UseWriterProcess.
	useWriterProcess := cfg.UseWriterProcess
	if cfg.reservedForCompression() {
		workers--
		useWriterProcess = true
		vlog.VI(1).Infof("runner: reserving one worker for writer-side compression, %d pipeline workers remain", workers)
	}

	inputCh := make(chan batchJob, cfg.inputQueueSize())
	var resultCh chan batchResult
	var writerDone chan error
	if useWriterProcess {
		resultCh = make(chan batchResult, cfg.ResultQueueSize)
	}

	summaryCh := make(chan workerResult, workers)
	var errOnce errors.Once
	seenBatches := make([]map[int]bool, workers)

	var writerWg sync.WaitGroup
	var totalBatches int32
	if useWriterProcess {
		writerDone = make(chan error, 1)
		writerWg.Add(1)
		go func() {
			defer writerWg.Done()
			writerDone <- runWriter(resultCh, r.sink, cfg.OrderPreserving, &totalBatches)
		}()
	}

	var workerWg sync.WaitGroup
	liveWorkers := make([]*liveness, workers)
	for i := 0; i < workers; i++ {
		liveWorkers[i] = newLiveness()
		seenBatches[i] = make(map[int]bool)
		workerWg.Add(1)
		idx := i
		go func() {
			defer workerWg.Done()
			pipeline, formatter := newPipeline()
			stats := runWorker(idx, inputCh, resultCh, r.sink, pipeline, formatter, seenBatches[idx], liveWorkers[idx], &errOnce)
			summaryCh <- workerResult{stats: stats, adapters: pipeline.AdapterHitCounts()}
		}()
	}

	// Main-thread loop, step 1: enumerate batches, numbered from 1.
	numBatches := 0
	mainLive := newLiveness()
	for {
		b, ok := src.Next()
		if !ok {
			break
		}
		numBatches++
		inputCh <- batchJob{batch: b}
		mainLive.tick()
		mainLive.ensureAlive("reader", cfg.softTimeout())
	}
	if err := src.Err(); err != nil {
		errOnce.Set(err)
	}

	// Step 2: push one sentinel per worker.
	for i := 0; i < workers; i++ {
		inputCh <- batchJob{done: true}
	}
	close(inputCh)

	// Step 3: publish total_batches to the writer.
	atomic.StoreInt32(&totalBatches, int32(numBatches))

	// Step 5: wait for every worker's summary, folding process_stats.
	var agg Summary
	agg.Process = newProcessStats()
	agg.Adapters = make(AdapterStats)
	for i := 0; i < workers; i++ {
		wr := <-summaryCh
		agg.Process.fold(wr.stats)
		for name, n := range wr.adapters {
			agg.Adapters[name] += n
		}
	}
	workerWg.Wait()

	// Step 6: verify every batch number 1..numBatches was seen by some worker.
	seenAll := make(map[int]bool, numBatches)
	for _, m := range seenBatches {
		for n := range m {
			seenAll[n] = true
		}
	}
	for n := 1; n <= numBatches; n++ {
		if !seenAll[n] {
			errOnce.Set(fmt.Errorf("runner: batch %d was never processed by any worker", n))
		}
	}

	// Step 7: wait for the writer, if any.
	if useWriterProcess {
		if resultCh != nil {
			close(resultCh)
		}
		writerWg.Wait()
		if err := <-writerDone; err != nil {
			errOnce.Set(err)
		}
	}

	vlog.Infof("runner: processed %d batches, %d reads", numBatches, agg.Process.ProcessedReads)
	return agg, errOnce.Err()
}
