package runner

import (
	"container/heap"
	"fmt"
	"sync/atomic"
)

// resultHeap is a min-priority queue of out-of-order batch results, keyed by
// batch number, used to buffer ahead-of-order writes until the writer can
// flush a contiguous prefix (§4.J's writer loop, step 1).
type resultHeap []batchResult

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].number < h[j].number }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(batchResult)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// runWriter implements §4.J's writer loop. When orderPreserving is set, its
// output bytes are byte-identical to SerialRunner's for the same input,
// since both flush strictly in ascending batch-number order.
func runWriter(resultCh <-chan batchResult, sink Sink, orderPreserving bool, totalBatches *int32) error {
	var errFirst error
	record := func(err error) {
		if err != nil && errFirst == nil {
			errFirst = err
		}
	}

	written := 0
	next := 1
	pending := &resultHeap{}
	heap.Init(pending)

	flush := func(res batchResult) {
		record(writeResultMap(sink, res.rm))
		written++
	}

	for res := range resultCh {
		if !orderPreserving {
			flush(res)
			continue
		}
		heap.Push(pending, res)
		for pending.Len() > 0 && (*pending)[0].number == next {
			flush(heap.Pop(pending).(batchResult))
			next++
		}
	}

	total := int(atomic.LoadInt32(totalBatches))
	if written != total {
		record(errUnwrittenBatches(written, total))
	}
	return errFirst
}

func errUnwrittenBatches(written, total int) error {
	if written == total {
		return nil
	}
	return fmt.Errorf("runner: writer flushed %d of %d published batches", written, total)
}
