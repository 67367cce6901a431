package trim

import "github.com/grailbio/trimmer/fqio"

// Destination is the label a record is classified into by the filter chain.
type Destination string

const (
	DestTooShort  Destination = "too-short"
	DestTooLong   Destination = "too-long"
	DestNContent  Destination = "n-content"
	DestTrimmed   Destination = "trimmed"
	DestUntrimmed Destination = "untrimmed"
	DestMerged    Destination = "merged"
	DestNone      Destination = "none"
)

// Context carries the modifier chain's side-effects (bases trimmed per side,
// whether the merge-overlap stage fired) alongside the modified reads, since
// the trimmed/untrimmed/merged destinations classify on those, not just on
// read content.
type Context struct {
	R1, R2       *fqio.Read
	BP1, BP2     int
	Merged       bool
}

// Predicate reports whether a filter fires for the given record.
type Predicate func(ctx Context) bool

type filterEntry struct {
	dest Destination
	pred Predicate
}

// FilterChain classifies a record into exactly one Destination: filters are
// evaluated in registration order, the first whose predicate fires wins
// (§4.G). How a predicate combines across the mates of a paired record is
// set per predicate, by the minAffected argument of its constructor.
type FilterChain struct {
	filters    []filterEntry
	minAffected int // 1 or 2; stored only, Classify does not consult it
}

// NewFilterChain builds an empty chain. minAffected defaults to 1 when given
// as 0; it is stored on the chain but does not change how Classify works.
func NewFilterChain(minAffected int) *FilterChain {
	if minAffected <= 0 {
		minAffected = 1
	}
	return &FilterChain{minAffected: minAffected}
}

// Add registers a filter under dest, evaluated in registration order.
func (c *FilterChain) Add(dest Destination, pred Predicate) {
	c.filters = append(c.filters, filterEntry{dest, pred})
}

// Classify returns the destination of the first filter whose predicate
// fires, or DestNone if none does.
func (c *FilterChain) Classify(ctx Context) Destination {
	for _, f := range c.filters {
		if f.pred(ctx) {
			return f.dest
		}
	}
	return DestNone
}

// MinLength rejects reads shorter than n (DestTooShort), per --minimum-
// length. Fires when at least minAffected side(s) are too short.
func MinLength(n, minAffected int) Predicate {
	return pairPredicate(minAffected, func(r *fqio.Read) bool { return len(r.Seq) < n })
}

// MaxLength rejects reads longer than n (DestTooLong), per --maximum-length.
func MaxLength(n, minAffected int) Predicate {
	return pairPredicate(minAffected, func(r *fqio.Read) bool { return len(r.Seq) > n })
}

// MaxNContent rejects reads whose fraction of 'N' calls exceeds frac (as an
// absolute count when frac >= 1), per atropos' NContentFilter.
func MaxNContent(frac float64, minAffected int) Predicate {
	return pairPredicate(minAffected, func(r *fqio.Read) bool {
		if len(r.Seq) == 0 {
			return false
		}
		n := 0
		for _, b := range r.Seq {
			if b == 'N' || b == 'n' {
				n++
			}
		}
		if frac >= 1 {
			return float64(n) > frac
		}
		return float64(n)/float64(len(r.Seq)) > frac
	})
}

// Trimmed fires when at least minAffected side(s) had bases removed.
func Trimmed(minAffected int) Predicate {
	return func(ctx Context) bool {
		n := 0
		if ctx.BP1 > 0 {
			n++
		}
		if ctx.R2 != nil && ctx.BP2 > 0 {
			n++
		}
		return n >= minAffected
	}
}

// Merged fires when the merge-overlap stage found an insert match.
func Merged() Predicate {
	return func(ctx Context) bool { return ctx.Merged }
}

func pairPredicate(minAffected int, single func(*fqio.Read) bool) Predicate {
	return func(ctx Context) bool {
		n := 0
		if ctx.R1 != nil && single(ctx.R1) {
			n++
		}
		if ctx.R2 != nil && single(ctx.R2) {
			n++
		}
		return n >= minAffected
	}
}
