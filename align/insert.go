package align

import (
	"math"

	"github.com/grailbio/trimmer/rmp"
)

// InsertAligner detects 3' adapter contamination in paired-end reads by
// aligning one mate against the reverse complement of the other and using
// the overlap to infer where each read's adapter tail begins, per spec
// §4.D. This is more reliable than single-end adapter alignment when reads
// are short relative to the adapter, since the overlap carries far more
// evidence than a short adapter fragment alone.
type InsertAligner struct {
	Adapter1, Adapter2 []byte

	InsertMaxRMP          float64
	AdapterMaxRMP         float64
	MinInsertOverlap       int
	MaxInsertMismatchFrac  float64
	MinAdapterOverlap      int
	MinAdapterMatchFrac    float64
	AdapterCheckCutoff     int

	rmp *rmp.Table
}

// NewInsertAligner constructs an InsertAligner with spec's defaults
// (insert_max_rmp=1e-6, adapter_max_rmp=1e-3, min_insert_overlap=1,
// max_insert_mismatch_frac=0.2, min_adapter_overlap=1,
// min_adapter_match_frac=0.8, adapter_check_cutoff=9). table is shared
// across every aligner in a run so its memo amortizes across reads.
func NewInsertAligner(adapter1, adapter2 []byte, table *rmp.Table) *InsertAligner {
	return &InsertAligner{
		Adapter1:              adapter1,
		Adapter2:              adapter2,
		InsertMaxRMP:          1e-6,
		AdapterMaxRMP:         1e-3,
		MinInsertOverlap:      1,
		MaxInsertMismatchFrac: 0.2,
		MinAdapterOverlap:     1,
		MinAdapterMatchFrac:   0.8,
		AdapterCheckCutoff:    9,
		rmp:                   table,
	}
}

// InsertResult is the outcome of MatchInsert: the mate-overlap evidence plus,
// when adapter contamination was confirmed, one Match per read describing
// the adapter tail to trim from it.
type InsertResult struct {
	// InsertFound is true when an overlap between the two mates was located
	// and passed the random-match-probability gate.
	InsertFound bool
	InsertSize  int
	Overlap     Result

	Adapter1Match *Match
	Adapter2Match *Match
}

// MatchInsert implements spec §4.D's 9-step algorithm.
func (ia *InsertAligner) MatchInsert(seq1, seq2 []byte) InsertResult {
	// 1. Truncate the longer of seq1, seq2 to the shorter one's length.
	seqLen := len(seq1)
	if len(seq2) < seqLen {
		seqLen = len(seq2)
	}
	s1, s2 := seq1[:seqLen], seq2[:seqLen]

	// 2. Align seq1 (query) against reverse_complement(seq2) (reference).
	reference := ReverseComplement(s2)
	aligner := NewAligner(reference, ia.MaxInsertMismatchFrac, StartWithinSeq2|StopWithinSeq2, false, false)
	aligner.MinOverlap = ia.MinInsertOverlap
	aligner.IndelCost = disableIndelCost
	overlap, ok := aligner.Locate(s1)
	if !ok {
		return InsertResult{}
	}

	// 3. offset/insert_size.
	offset := overlap.RefStart
	if rem := seqLen - overlap.QueryStop; rem < offset {
		offset = rem
	}
	insertSize := seqLen - offset

	// 4. RMP gate on the insert match itself.
	if ia.rmp.Prob(overlap.Matches, insertSize) > ia.InsertMaxRMP {
		return InsertResult{}
	}
	result := InsertResult{InsertFound: true, InsertSize: insertSize, Overlap: overlap}

	// 5. Too little adapter evidence to say anything about adapter content.
	if offset < ia.MinAdapterOverlap {
		return result
	}

	// 6. Compare trailing segments against each configured adapter.
	adapterLen := offset
	if len(ia.Adapter1) < adapterLen {
		adapterLen = len(ia.Adapter1)
	}
	if len(ia.Adapter2) < adapterLen {
		adapterLen = len(ia.Adapter2)
	}
	if adapterLen <= 0 {
		return result
	}
	tail1 := seq1[insertSize:]
	if len(tail1) > adapterLen {
		tail1 = tail1[:adapterLen]
	}
	tail2 := seq2[insertSize:]
	if len(tail2) > adapterLen {
		tail2 = tail2[:adapterLen]
	}
	cmp1 := ComparePrefixes(ia.Adapter1[:adapterLen], tail1, false, false)
	cmp2 := ComparePrefixes(ia.Adapter2[:adapterLen], tail2, false, false)

	// 7. Require at least one side to clear the match-fraction bar.
	minMatches := int(math.Ceil(float64(adapterLen) * ia.MinAdapterMatchFrac))
	if cmp1.Matches < minMatches && cmp2.Matches < minMatches {
		return result
	}

	// 8. Doubly-gate on the joint random-match probability once there's
	// enough adapter length for the statistic to be meaningful.
	p1 := ia.rmp.Prob(cmp1.Matches, adapterLen)
	p2 := ia.rmp.Prob(cmp2.Matches, adapterLen)
	if adapterLen > ia.AdapterCheckCutoff && p1*p2 > ia.AdapterMaxRMP {
		return result
	}

	// 9. The side with the lower probability is the stronger evidence;
	// both emitted matches carry its (matches, errors), each read keeping
	// its own boundaries.
	matches, errors := cmp1.Matches, cmp1.Errors
	if p2 < p1 {
		matches, errors = cmp2.Matches, cmp2.Errors
	}

	adapter1 := &Adapter{Name: "adapter1", Seq: ia.Adapter1, Where: Back, MaxErrorRate: ia.MaxInsertMismatchFrac, MinOverlap: ia.MinAdapterOverlap}
	adapter2 := &Adapter{Name: "adapter2", Seq: ia.Adapter2, Where: Back, MaxErrorRate: ia.MaxInsertMismatchFrac, MinOverlap: ia.MinAdapterOverlap}
	m1 := Match{
		Adapter: adapter1, Read: seq1,
		AdapterStart: 0, AdapterStop: adapterLen,
		ReadStart: insertSize, ReadStop: insertSize + len(tail1),
		Matches: matches, Errors: errors,
		Front: false,
	}
	m2 := Match{
		Adapter: adapter2, Read: seq2,
		AdapterStart: 0, AdapterStop: adapterLen,
		ReadStart: insertSize, ReadStop: insertSize + len(tail2),
		Matches: matches, Errors: errors,
		Front: false,
	}
	result.Adapter1Match = &m1
	result.Adapter2Match = &m2
	return result
}
