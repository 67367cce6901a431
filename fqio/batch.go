package fqio

import "fmt"

// Batch is an ordered, numbered group of pairs, realizing spec §3's Batch.
// Batch numbers are assigned contiguously starting at 1 by Reader.
type Batch struct {
	Number int
	Pairs  []*Pair
}

// Reader turns a (Pair)Scanner into a stream of fixed-size Batches, the
// unit of work the parallel and serial runners (§4.J/§4.K) hand to workers.
type Reader struct {
	scan    func(*Pair) bool
	errFunc func() error
	size    int
	next    int
}

// NewReader builds a batching Reader over a single-end scanner.
func NewReader(s *Scanner, batchSize int) *Reader {
	return &Reader{
		scan: func(p *Pair) bool {
			if p.R1 == nil {
				p.R1 = &Read{}
			}
			return s.Scan(p.R1)
		},
		errFunc: s.Err,
		size:    batchSize,
		next:    1,
	}
}

// NewPairReader builds a batching Reader over a paired-end scanner.
func NewPairReader(s *PairScanner, batchSize int) *Reader {
	return &Reader{scan: s.Scan, errFunc: s.Err, size: batchSize, next: 1}
}

// NewInterleavedPairReader builds a batching Reader over an interleaved
// paired-end scanner.
func NewInterleavedPairReader(s *InterleavedPairScanner, batchSize int) *Reader {
	return &Reader{scan: s.Scan, errFunc: s.Err, size: batchSize, next: 1}
}

// Next returns the next batch, or ok=false at end of stream (check Err to
// distinguish a clean EOF from a read error).
func (r *Reader) Next() (Batch, bool) {
	if r.size <= 0 {
		r.size = 1
	}
	var pairs []*Pair
	for len(pairs) < r.size {
		p := &Pair{}
		if !r.scan(p) {
			break
		}
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return Batch{}, false
	}
	b := Batch{Number: r.next, Pairs: pairs}
	r.next++
	return b, true
}

// Err returns the underlying scanner error, if any.
func (r *Reader) Err() error { return r.errFunc() }

func (b Batch) String() string {
	return fmt.Sprintf("batch %d (%d pairs)", b.Number, len(b.Pairs))
}
