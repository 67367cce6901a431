package trim

import (
	"github.com/grailbio/trimmer/align"
	"github.com/grailbio/trimmer/fqio"
)

// MergeOverlap is the paired-only fixed-priority stage that detects adapter
// read-through via an insert-match (§4.D) and trims both mates' adapter
// tails in one step, per atropos' InsertAdapterCutter. Unlike the other
// Modifiers, it operates on both reads at once and so is driven directly by
// Chain.Modify rather than the single-read Apply path.
type MergeOverlap struct {
	Aligner *align.InsertAligner
}

// NewMergeOverlap builds a MergeOverlap stage sharing ia (and its memoized
// rmp.Table) across every record in a run.
func NewMergeOverlap(ia *align.InsertAligner) *MergeOverlap { return &MergeOverlap{Aligner: ia} }

// Merge runs the insert aligner over a mate pair and, when adapter read-
// through is confirmed, returns both reads trimmed to their inferred insert
// boundary plus the bases removed from each side (bp1, bp2).
func (m *MergeOverlap) Merge(r1, r2 *fqio.Read) (out1, out2 *fqio.Read, bp1, bp2 int, merged bool) {
	res := m.Aligner.MatchInsert(r1.Seq, r2.Seq)
	if !res.InsertFound || res.Adapter1Match == nil || res.Adapter2Match == nil {
		return r1, r2, 0, 0, false
	}
	out1 = r1.Clone()
	bp1 = len(out1.Seq) - res.Adapter1Match.ReadStart
	out1.Seq = out1.Seq[:res.Adapter1Match.ReadStart]
	out1.Qual = out1.Qual[:res.Adapter1Match.ReadStart]

	out2 = r2.Clone()
	bp2 = len(out2.Seq) - res.Adapter2Match.ReadStart
	out2.Seq = out2.Seq[:res.Adapter2Match.ReadStart]
	out2.Qual = out2.Qual[:res.Adapter2Match.ReadStart]
	return out1, out2, bp1, bp2, true
}
