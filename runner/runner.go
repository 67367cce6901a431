// Package runner drives the trimming pipeline over a stream of batches,
// either in parallel (ParallelRunner, §4.J) or serially (SerialRunner,
// §4.K), following the worker-pool/channel style of the teacher's
// encoding/converter.ConvertToBAM.
package runner

import (
	"sync"
	"time"

	"github.com/grailbio/trimmer/fqio"
	"github.com/grailbio/trimmer/trim"
	"v.io/x/lib/vlog"
)

// Sink writes a ResultMap's accumulated bytes to their destination paths.
// sink.Writer (and its compressing/S3 decorators) implements this.
type Sink interface {
	Write(path string, data []byte) error
}

// ProcessStats and AdapterStats are the two summary fragments folded from
// each worker into the aggregate Summary, per §4.J step 5.
type ProcessStats struct {
	ProcessedReads int64
	TotalBP1       int64
	TotalBP2       int64
	Destinations   map[trim.Destination]int64
}

// AdapterStats counts how many times each named adapter fired, across every
// worker in the run.
type AdapterStats map[string]int64

// Summary is the aggregate result of a run.
type Summary struct {
	Process  ProcessStats
	Adapters AdapterStats
}

func newProcessStats() ProcessStats {
	return ProcessStats{Destinations: make(map[trim.Destination]int64)}
}

func (s *ProcessStats) fold(o ProcessStats) {
	s.ProcessedReads += o.ProcessedReads
	s.TotalBP1 += o.TotalBP1
	s.TotalBP2 += o.TotalBP2
	for d, n := range o.Destinations {
		s.Destinations[d] += n
	}
}

// batchJob is what flows through the input queue: a numbered batch, or a
// sentinel with done set ("none") telling a worker to exit.
type batchJob struct {
	batch fqio.Batch
	done  bool
}

// batchResult is what flows through the result queue toward the writer.
type batchResult struct {
	number int
	rm     trim.ResultMap
}

// workerResult is what a worker goroutine reports back once its input
// channel is exhausted: its folded ProcessStats plus its pipeline's
// per-adapter hit counts.
type workerResult struct {
	stats    ProcessStats
	adapters map[string]int64
}

// liveness is the ensure_alive escalation state for one tracked goroutine:
// a soft timeout logs at DEBUG, repeated misses escalate to ERROR, per
// §4.J's "periodic ensure_alive liveness check."
type liveness struct {
	mu       sync.Mutex
	lastSeen time.Time
	misses   int
}

func newLiveness() *liveness { return &liveness{lastSeen: time.Now()} }

func (l *liveness) tick() {
	l.mu.Lock()
	l.lastSeen = time.Now()
	l.misses = 0
	l.mu.Unlock()
}

// ensureAlive checks elapsed time since the last tick against softTimeout;
// call periodically from the main thread's enumeration loop.
func (l *liveness) ensureAlive(who string, softTimeout time.Duration) {
	l.mu.Lock()
	idle := time.Since(l.lastSeen)
	if idle > softTimeout {
		l.misses++
		n := l.misses
		l.mu.Unlock()
		if n <= 1 {
			vlog.VI(1).Infof("runner: %s idle for %v (soft timeout %v)", who, idle, softTimeout)
		} else {
			vlog.Errorf("runner: %s idle for %v (soft timeout %v), %d consecutive misses", who, idle, softTimeout, n)
		}
		return
	}
	l.mu.Unlock()
}

// Config holds the tunables §4.J/§5 name for a run.
type Config struct {
	Threads          int
	InputQueueSize   int // 0 == unbounded
	ResultQueueSize  int
	UseWriterProcess bool
	Compression      string // "writer" reserves one worker for compression-in-writer
	SoftTimeout      time.Duration
	OrderPreserving  bool
}

func (c Config) threads() int {
	if c.Threads <= 0 {
		return 1
	}
	return c.Threads
}

func (c Config) softTimeout() time.Duration {
	if c.SoftTimeout <= 0 {
		return 30 * time.Second
	}
	return c.SoftTimeout
}

// reservedForCompression implements §4.J's compression policy: when true,
// ParallelRunner.Run pulls one worker out of the pipeline pool and routes
// every write (hence every sink-side compression) through the writer
// goroutine instead of leaving each pipeline worker to compress its own
// direct writes in place. Only applies when explicitly requested and
// there's more than one worker to spare for it.
func (c Config) reservedForCompression() bool {
	return c.Compression == "writer" && c.threads() > 2
}

// unboundedQueueSize approximates "0 ≡ unbounded" for input_queue: Go
// channels have no true unbounded mode, so a 0-sized config is given a
// buffer generous enough that the reader never blocks on a realistic batch
// count, rather than the unbuffered (capacity-0, most restrictive) channel a
// literal reading of the config value would produce.
const unboundedQueueSize = 1 << 16

func (c Config) inputQueueSize() int {
	if c.InputQueueSize <= 0 {
		return unboundedQueueSize
	}
	return c.InputQueueSize
}
