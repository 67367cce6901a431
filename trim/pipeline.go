package trim

import "github.com/grailbio/trimmer/fqio"

// Record is one unit of pipeline input: a read pair (R2 nil in single-end
// mode), per spec's Data Model.
type Record = fqio.Pair

// Stats accumulates running totals across a pipeline invocation, wrapped
// around Pipeline.Call by the statistics-wrapping variant (§4.I).
type Stats interface {
	PreTrim(rec Record)
	PostTrim(dest Destination, r1, r2 *fqio.Read)
}

// Pipeline threads a record through the modifier chain and filter chain,
// per §4.I's three-step __call__.
type Pipeline struct {
	Modifiers *Chain
	Filters   *FilterChain
	Stats     Stats // nil disables the statistics-wrapping variant

	TotalBP1, TotalBP2 int64
}

// NewPipeline builds a Pipeline from its two stages.
func NewPipeline(modifiers *Chain, filters *FilterChain) *Pipeline {
	return &Pipeline{Modifiers: modifiers, Filters: filters}
}

// AdapterHitCounts reports how many occurrences of each named adapter have
// been removed by this pipeline's modifier chain so far.
func (p *Pipeline) AdapterHitCounts() map[string]int64 { return p.Modifiers.AdapterHitCounts() }

// LastAnnotations returns the info/rest/wildcard side-channel data observed
// for each side of the most recent Call, for the info-file/rest-file/
// wildcard-file formatters (§4.H).
func (p *Pipeline) LastAnnotations() (ann1, ann2 Annotations) { return p.Modifiers.LastAnnotations() }

// Call runs the pipeline over rec, accumulating per-side base counts and
// returning the destination the result was classified into plus the
// (possibly replaced) reads.
func (p *Pipeline) Call(rec Record) (Destination, *fqio.Read, *fqio.Read) {
	if p.Stats != nil {
		p.Stats.PreTrim(rec)
	}

	out1, out2, bp1, bp2 := p.Modifiers.Modify(rec.R1, rec.R2)
	p.TotalBP1 += int64(bp1)
	p.TotalBP2 += int64(bp2)

	ctx := Context{R1: out1, R2: out2, BP1: bp1, BP2: bp2, Merged: p.Modifiers.Merged()}
	dest := p.Filters.Classify(ctx)

	if p.Stats != nil {
		p.Stats.PostTrim(dest, out1, out2)
	}
	return dest, out1, out2
}
