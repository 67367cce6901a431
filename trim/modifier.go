// Package trim implements the per-record processing pipeline: the modifier
// chain that trims and rewrites reads (§4.F), the filter chain that
// classifies the result (§4.G), the formatter set that renders it to output
// paths (§4.H), and the Pipeline that ties the three together (§4.I).
package trim

import (
	"bytes"

	"github.com/grailbio/trimmer/align"
	"github.com/grailbio/trimmer/fqio"
)

// Side selects which mate(s) a modifier applies to.
type Side int

const (
	Side1 Side = 1 << iota
	Side2
	SideBoth = Side1 | Side2
)

// Modifier trims or rewrites one read, reporting how many bases it removed.
type Modifier interface {
	// Apply returns the modified read (which may be r itself, mutated) and
	// the number of bases consumed (removed) from r.
	Apply(r *fqio.Read) (out *fqio.Read, bpConsumed int)
	// Sides reports which mate(s) this modifier instance applies to.
	Sides() Side
}

// Stage names the fixed-priority non-reorderable modifier slots, applied
// after the configurable op-order vector (§4.F).
type Stage int

const (
	StageBisulfite Stage = iota
	StageNEndTrim
	StageMinCut
	StageLengthTag
	StageSuffixStrip
	StagePrefixSuffixAdd
	StageDoubleEncode
	StageZeroCap
	StagePrimerTrim
	StageMergeOverlap
)

// OpCode names the configurable op-order modifiers (§4.F).
type OpCode byte

const (
	OpOverwriteLowQuality OpCode = 'W'
	OpAdapterCut          OpCode = 'A'
	OpUnconditionalCut    OpCode = 'C'
	OpNextSeqQualityTrim  OpCode = 'G'
	OpQualityTrim         OpCode = 'Q'
)

// DefaultOpOrder is atropos' default ordering of the configurable stages.
var DefaultOpOrder = []OpCode{OpOverwriteLowQuality, OpAdapterCut, OpUnconditionalCut, OpNextSeqQualityTrim, OpQualityTrim}

type entry struct {
	side Side
	mod  Modifier
}

// Annotations carries the per-record side-channel data an AdapterCutter
// observed while trimming one read: the adapter occurrences found (for the
// info-file), the discarded span (for the rest-file), and any wildcard-base
// calls (for the wildcard-file), per §4.H.
type Annotations struct {
	Infos     []align.Info
	Rest      []byte
	Wildcards []byte
}

// Chain threads a record through a registration-ordered list of per-side
// modifiers, per §4.F.
type Chain struct {
	opOrder []OpCode
	ordered map[OpCode][]entry // configurable stages, keyed by op code
	fixed   [][]entry          // fixed-priority stages, indexed by Stage
	merge   *MergeOverlap      // optional StageMergeOverlap handler (paired-only)

	lastMerged bool

	lastAnn1, lastAnn2 Annotations
}

// SetMergeOverlap registers the merge-overlap stage, run last, per §4.F's
// fixed-priority ordering. Single-end records skip it (Modify leaves r2 nil).
func (c *Chain) SetMergeOverlap(m *MergeOverlap) { c.merge = m }

// Merged reports whether the last call to Modify ran the merge-overlap
// stage and found an overlap, for the filter chain's "merged" destination.
func (c *Chain) Merged() bool { return c.lastMerged }

// LastAnnotations returns the info/rest/wildcard side-channel data observed
// for each side (r2's is zero-valued in single-end mode) during the most
// recent call to Modify, for the info-file/rest-file/wildcard-file
// formatters (§4.H).
func (c *Chain) LastAnnotations() (ann1, ann2 Annotations) {
	return c.lastAnn1, c.lastAnn2
}

// collectAdapterAnnotations gathers every OpAdapterCut entry's most recent
// Annotations into lastAnn1/lastAnn2, keyed by which side(s) the entry
// applies to. Called once per Modify after every modifier has run.
func (c *Chain) collectAdapterAnnotations() {
	c.lastAnn1, c.lastAnn2 = Annotations{}, Annotations{}
	for _, e := range c.ordered[OpAdapterCut] {
		ac, ok := e.mod.(*AdapterCutter)
		if !ok {
			continue
		}
		ann := ac.LastAnnotations()
		if e.side&Side1 != 0 {
			c.lastAnn1.Infos = append(c.lastAnn1.Infos, ann.Infos...)
			c.lastAnn1.Rest = append(c.lastAnn1.Rest, ann.Rest...)
			c.lastAnn1.Wildcards = append(c.lastAnn1.Wildcards, ann.Wildcards...)
		}
		if e.side&Side2 != 0 {
			c.lastAnn2.Infos = append(c.lastAnn2.Infos, ann.Infos...)
			c.lastAnn2.Rest = append(c.lastAnn2.Rest, ann.Rest...)
			c.lastAnn2.Wildcards = append(c.lastAnn2.Wildcards, ann.Wildcards...)
		}
	}
}

// AdapterHitCounts sums HitCounts across every AdapterCutter registered
// under OpAdapterCut, by adapter name.
func (c *Chain) AdapterHitCounts() map[string]int64 {
	out := make(map[string]int64)
	for _, e := range c.ordered[OpAdapterCut] {
		ac, ok := e.mod.(*AdapterCutter)
		if !ok {
			continue
		}
		for name, n := range ac.HitCounts() {
			out[name] += n
		}
	}
	return out
}

// NewChain builds an empty Chain using opOrder to sequence the configurable
// stages; a nil/empty opOrder falls back to DefaultOpOrder.
func NewChain(opOrder []OpCode) *Chain {
	if len(opOrder) == 0 {
		opOrder = DefaultOpOrder
	}
	return &Chain{
		opOrder: opOrder,
		ordered: make(map[OpCode][]entry),
		fixed:   make([][]entry, StageMergeOverlap), // merge-overlap is handled separately via SetMergeOverlap
	}
}

// AddModifier registers one modifier for the given side(s), under a
// configurable op code.
func (c *Chain) AddModifier(op OpCode, side Side, m Modifier) {
	c.ordered[op] = append(c.ordered[op], entry{side, m})
}

// AddModifierPair registers modifiers for side 1 and/or side 2 independently,
// under a configurable op code; a nil modifier skips that side, realizing
// add_modifier_pair's "skip a side when its args are absent."
func (c *Chain) AddModifierPair(op OpCode, m1, m2 Modifier) {
	if m1 != nil {
		c.ordered[op] = append(c.ordered[op], entry{Side1, m1})
	}
	if m2 != nil {
		c.ordered[op] = append(c.ordered[op], entry{Side2, m2})
	}
}

// AddFixed registers a modifier under one of the fixed-priority stages.
func (c *Chain) AddFixed(stage Stage, side Side, m Modifier) {
	c.fixed[stage] = append(c.fixed[stage], entry{side, m})
}

// Modify threads r1/r2 (r2 nil in single-end mode) through every registered
// modifier in order, returning the (possibly replaced) reads and the bases
// consumed per side.
func (c *Chain) Modify(r1, r2 *fqio.Read) (out1, out2 *fqio.Read, bp1, bp2 int) {
	out1, out2 = r1, r2
	apply := func(e entry) {
		if e.side&Side1 != 0 && out1 != nil {
			var n int
			out1, n = e.mod.Apply(out1)
			bp1 += n
		}
		if e.side&Side2 != 0 && out2 != nil {
			var n int
			out2, n = e.mod.Apply(out2)
			bp2 += n
		}
	}
	for _, op := range c.opOrder {
		for _, e := range c.ordered[op] {
			apply(e)
		}
	}
	for _, stage := range c.fixed {
		for _, e := range stage {
			apply(e)
		}
	}
	c.lastMerged = false
	if c.merge != nil && out2 != nil {
		var n1, n2 int
		var ok bool
		out1, out2, n1, n2, ok = c.merge.Merge(out1, out2)
		bp1 += n1
		bp2 += n2
		c.lastMerged = ok
	}
	c.collectAdapterAnnotations()
	return out1, out2, bp1, bp2
}

// AdapterCutter removes the longest/best-scoring adapter occurrence found by
// trying each registered adapter's aligner against the read, up to Times
// attempts (§4.F/§4.C).
type AdapterCutter struct {
	Adapters []*align.Adapter
	Aligners []align.Locator
	Times    int
	side     Side

	// hits counts matched-and-removed occurrences by adapter name, read by
	// Pipeline.AdapterHitCounts. A Chain/AdapterCutter is owned by exactly
	// one worker goroutine (pipelineFactory.build builds a fresh one per
	// worker), so Apply's sequential calls need no locking here.
	hits map[string]int64

	// lastAnn holds the Annotations observed during the most recent Apply
	// call, reset at the top of each call.
	lastAnn Annotations
}

// NewAdapterCutter builds an AdapterCutter; aligners[i] must locate
// adapters[i] (e.g. built via align.NewLocatorForAdapter, which picks an
// Aligner or NoIndelAligner from the adapter's indel settings and flags).
func NewAdapterCutter(adapters []*align.Adapter, aligners []align.Locator, times int, side Side) *AdapterCutter {
	if times <= 0 {
		times = 1
	}
	return &AdapterCutter{Adapters: adapters, Aligners: aligners, Times: times, side: side, hits: make(map[string]int64)}
}

// HitCounts returns the number of occurrences removed per adapter name so
// far.
func (c *AdapterCutter) HitCounts() map[string]int64 { return c.hits }

// LastAnnotations returns the info/rest/wildcard data observed during the
// most recent Apply call.
func (c *AdapterCutter) LastAnnotations() Annotations { return c.lastAnn }

func (c *AdapterCutter) Sides() Side { return c.side }

// Apply repeatedly locates and removes the best adapter occurrence, up to
// Times attempts, stopping early once no adapter matches.
func (c *AdapterCutter) Apply(r *fqio.Read) (*fqio.Read, int) {
	cur := r
	consumed := 0
	c.lastAnn = Annotations{}
	for attempt := 0; attempt < c.Times; attempt++ {
		bestIdx := -1
		var best align.Result
		for i, a := range c.Aligners {
			res, ok := a.Locate(cur.Seq)
			if !ok {
				continue
			}
			if bestIdx < 0 || res.Matches > best.Matches ||
				(res.Matches == best.Matches && res.Errors < best.Errors) {
				bestIdx = i
				best = res
			}
		}
		if bestIdx < 0 {
			break
		}
		where := c.Adapters[bestIdx].Where
		front := where == align.Front || where == align.AnchoredFront ||
			(where == align.Anywhere && best.QueryStart == 0)
		m, err := align.NewMatch(c.Adapters[bestIdx], cur.Seq, best, front)
		if err != nil {
			break // below min_overlap / above max_error_rate: not a usable occurrence
		}
		trimmed := cur.Clone()
		rest := m.Rest()
		removed := len(cur.Seq) - len(rest)
		trimmed.Seq = append([]byte(nil), rest...)
		trimmed.Qual = trimQual(cur.Qual, cur.Seq, rest, m.Front)
		consumed += removed
		c.hits[c.Adapters[bestIdx].Name]++
		c.lastAnn.Infos = append(c.lastAnn.Infos, m.InfoRecord())
		c.lastAnn.Rest = append(c.lastAnn.Rest, discardedSpan(cur.Seq, m)...)
		if w := m.Wildcards('N'); len(w) > 0 {
			c.lastAnn.Wildcards = append(c.lastAnn.Wildcards, w...)
		}
		cur = trimmed
	}
	return cur, consumed
}

// discardedSpan returns the portion of seq that a match removed — the
// complement of Match.Rest() — for the rest-file formatter, per atropos'
// --rest-file.
func discardedSpan(seq []byte, m align.Match) []byte {
	if m.Front {
		return seq[:m.ReadStop]
	}
	return seq[m.ReadStart:]
}

func trimQual(qual, origSeq, rest []byte, front bool) []byte {
	if front {
		off := len(origSeq) - len(rest)
		if off < 0 || off > len(qual) {
			off = len(qual)
		}
		return append([]byte(nil), qual[off:]...)
	}
	if len(rest) > len(qual) {
		return append([]byte(nil), qual...)
	}
	return append([]byte(nil), qual[:len(rest)]...)
}

// UnconditionalCut removes a fixed number of bases from one end of the read
// (positive Length trims the 5' end, negative the 3' end), per atropos'
// "unconditional cut" modifier (op code C).
type UnconditionalCut struct {
	Length int
	side   Side
}

func NewUnconditionalCut(length int, side Side) *UnconditionalCut {
	return &UnconditionalCut{Length: length, side: side}
}

func (c *UnconditionalCut) Sides() Side { return c.side }

func (c *UnconditionalCut) Apply(r *fqio.Read) (*fqio.Read, int) {
	n := len(r.Seq)
	cut := c.Length
	if cut == 0 || n == 0 {
		return r, 0
	}
	out := r.Clone()
	if cut > 0 {
		if cut > n {
			cut = n
		}
		out.Seq = out.Seq[cut:]
		out.Qual = out.Qual[cut:]
	} else {
		cut = -cut
		if cut > n {
			cut = n
		}
		out.Seq = out.Seq[:n-cut]
		out.Qual = out.Qual[:n-cut]
	}
	return out, n - len(out.Seq)
}

// QualityTrim trims low-quality bases from the 3' end (and, if Cutoff5 is
// positive, the 5' end first) using a running-sum algorithm equivalent to
// cutadapt's quality-trimming (BWA-style), per atropos' QualityTrimmer (op
// code Q).
type QualityTrim struct {
	Cutoff5, Cutoff3 int
	Base             byte // quality ASCII zero point, typically '!' (Phred+33)
	side             Side
}

func NewQualityTrim(cutoff5, cutoff3 int, base byte, side Side) *QualityTrim {
	if base == 0 {
		base = '!'
	}
	return &QualityTrim{Cutoff5: cutoff5, Cutoff3: cutoff3, Base: base, side: side}
}

func (q *QualityTrim) Sides() Side { return q.side }

func (q *QualityTrim) Apply(r *fqio.Read) (*fqio.Read, int) {
	start, stop := 0, len(r.Qual)
	if q.Cutoff5 > 0 {
		start = trimFrontBySum(r.Qual, q.Base, q.Cutoff5)
	}
	if q.Cutoff3 > 0 {
		stop = start + trimBackBySum(r.Qual[start:], q.Base, q.Cutoff3)
	}
	if start == 0 && stop == len(r.Qual) {
		return r, 0
	}
	out := r.Clone()
	out.Seq = out.Seq[start:stop]
	out.Qual = out.Qual[start:stop]
	return out, len(r.Qual) - (stop - start)
}

// trimBackBySum implements cutadapt's 3' running-sum quality trim: walk from
// the end, summing (cutoff - qual); keep the prefix up to the position of
// the maximum running sum (clamped at 0).
func trimBackBySum(qual []byte, base byte, cutoff int) int {
	s, maxS, maxI := 0, 0, len(qual)
	for i := len(qual) - 1; i >= 0; i-- {
		s += cutoff - int(qual[i]-base)
		if s < 0 {
			break
		}
		if s > maxS {
			maxS = s
			maxI = i
		}
	}
	return maxI
}

func trimFrontBySum(qual []byte, base byte, cutoff int) int {
	s, maxS, maxI := 0, 0, 0
	for i := 0; i < len(qual); i++ {
		s += cutoff - int(qual[i]-base)
		if s < 0 {
			break
		}
		if s > maxS {
			maxS = s
			maxI = i + 1
		}
	}
	return maxI
}

// NextSeqQualityTrim is NextSeq/NovaSeq-specific 3' trimming (op code G):
// identical to QualityTrim's running-sum algorithm, except that G calls (the
// two-channel chemistry's dark-cycle artifact, reported with high quality)
// are scored one below the trim cutoff whatever their reported quality, so a
// trailing G run is trimmed, per atropos' NextseqQualityTrimmer.
type NextSeqQualityTrim struct {
	Cutoff int
	Base   byte
	side   Side
}

func NewNextSeqQualityTrim(cutoff int, base byte, side Side) *NextSeqQualityTrim {
	if base == 0 {
		base = '!'
	}
	return &NextSeqQualityTrim{Cutoff: cutoff, Base: base, side: side}
}

func (n *NextSeqQualityTrim) Sides() Side { return n.side }

func (n *NextSeqQualityTrim) Apply(r *fqio.Read) (*fqio.Read, int) {
	s, maxS, maxI := 0, 0, len(r.Qual)
	for i := len(r.Qual) - 1; i >= 0; i-- {
		q := int(r.Qual[i] - n.Base)
		if r.Seq[i] == 'G' || r.Seq[i] == 'g' {
			q = n.Cutoff - 1
		}
		s += n.Cutoff - q
		if s < 0 {
			break
		}
		if s > maxS {
			maxS = s
			maxI = i
		}
	}
	if maxI == len(r.Qual) {
		return r, 0
	}
	out := r.Clone()
	out.Seq = out.Seq[:maxI]
	out.Qual = out.Qual[:maxI]
	return out, len(r.Qual) - maxI
}

// OverwriteLowQuality (op code W) rewrites runs of low-quality bases to N
// rather than cutting them, per atropos' NEndTrimmer/OverwriteReadModifier
// family: preserves read length while marking untrustworthy calls.
type OverwriteLowQuality struct {
	Cutoff int
	Base   byte
	side   Side
}

func NewOverwriteLowQuality(cutoff int, base byte, side Side) *OverwriteLowQuality {
	if base == 0 {
		base = '!'
	}
	return &OverwriteLowQuality{Cutoff: cutoff, Base: base, side: side}
}

func (o *OverwriteLowQuality) Sides() Side { return o.side }

func (o *OverwriteLowQuality) Apply(r *fqio.Read) (*fqio.Read, int) {
	var out *fqio.Read
	n := 0
	for i, q := range r.Qual {
		if int(q-o.Base) < o.Cutoff && r.Seq[i] != 'N' {
			if out == nil {
				out = r.Clone()
			}
			out.Seq[i] = 'N'
			n++
		}
	}
	if out == nil {
		return r, 0
	}
	return out, n
}

// NEndTrim trims leading and trailing runs of 'N' calls, per atropos'
// NEndTrimmer (fixed-priority stage, after the configurable op-order).
type NEndTrim struct{ side Side }

func NewNEndTrim(side Side) *NEndTrim { return &NEndTrim{side} }

func (t *NEndTrim) Sides() Side { return t.side }

func (t *NEndTrim) Apply(r *fqio.Read) (*fqio.Read, int) {
	start := 0
	for start < len(r.Seq) && (r.Seq[start] == 'N' || r.Seq[start] == 'n') {
		start++
	}
	stop := len(r.Seq)
	for stop > start && (r.Seq[stop-1] == 'N' || r.Seq[stop-1] == 'n') {
		stop--
	}
	if start == 0 && stop == len(r.Seq) {
		return r, 0
	}
	out := r.Clone()
	out.Seq = out.Seq[start:stop]
	out.Qual = out.Qual[start:stop]
	return out, len(r.Seq) - (stop - start)
}

// SuffixStrip removes a configured literal suffix from the read name (e.g.
// re-stripping "/1"/"/2" variants fqio.Scanner didn't already catch, or a
// sample-specific tag), per atropos' name-suffix modifier.
type SuffixStrip struct {
	Suffix []byte
	side   Side
}

func NewSuffixStrip(suffix []byte, side Side) *SuffixStrip {
	return &SuffixStrip{Suffix: suffix, side: side}
}

func (s *SuffixStrip) Sides() Side { return s.side }

func (s *SuffixStrip) Apply(r *fqio.Read) (*fqio.Read, int) {
	if !bytes.HasSuffix(r.Name, s.Suffix) {
		return r, 0
	}
	out := r.Clone()
	out.Name = out.Name[:len(out.Name)-len(s.Suffix)]
	return out, 0
}

// ZeroCap clamps quality values below Base (i.e. negative Phred scores,
// which some basecallers emit) up to Base, per atropos' ZeroCapper.
type ZeroCap struct {
	Base byte
	side Side
}

func NewZeroCap(base byte, side Side) *ZeroCap {
	if base == 0 {
		base = '!'
	}
	return &ZeroCap{Base: base, side: side}
}

func (z *ZeroCap) Sides() Side { return z.side }

func (z *ZeroCap) Apply(r *fqio.Read) (*fqio.Read, int) {
	var out *fqio.Read
	for i, q := range r.Qual {
		if q < z.Base {
			if out == nil {
				out = r.Clone()
			}
			out.Qual[i] = z.Base
		}
	}
	if out == nil {
		return r, 0
	}
	return out, 0
}
