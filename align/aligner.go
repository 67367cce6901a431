package align

// Flags controls which ends of the reference/query pair are allowed to
// float for free in the semi-global alignment computed by Aligner.Locate.
// The DP construction (see Locate) treats each bit independently:
//
//   - StartWithinSeq1 makes the top row (reference unconsumed) cost 0 across
//     its span, so the query's own leading bases may be excluded from the
//     alignment at no cost.
//   - StartWithinSeq2 makes the left column (query unconsumed) cost 0 across
//     its span, so the reference's own leading bases may be excluded at no
//     cost.
//   - StopWithinSeq1 admits the last column (query fully consumed) as a
//     candidate end point, so the reference may stop short of its end.
//   - StopWithinSeq2 admits the last row (reference fully consumed) as a
//     candidate end point, so the query may stop short of its end.
//
// When neither start bit is set, only cell (0,0) starts for free. When
// neither stop bit is set, the only candidate end point is the bottom-right
// corner (reference and query both fully consumed) — this is what anchors
// both sequences' ends to a fixed point.
type Flags uint8

const (
	StartWithinSeq1 Flags = 1 << iota
	StartWithinSeq2
	StopWithinSeq1
	StopWithinSeq2
)

// Semiglobal is shorthand for every freedom enabled (component C's ANYWHERE
// behavior, and the entry point for building an Aligner from scratch rather
// than from an Adapter's Where).
const Semiglobal = StartWithinSeq1 | StartWithinSeq2 | StopWithinSeq1 | StopWithinSeq2

// Locator is implemented by Aligner and NoIndelAligner: anything that can
// find the best occurrence of query within a fixed reference.
type Locator interface {
	Locate(query []byte) (Result, bool)
}

// Aligner performs a semi-global (freeness-flagged) edit-distance alignment
// of a query against a fixed reference sequence, following the matrix
// construction in util.EditDistance but generalized with configurable
// indel cost, wildcard matching and free start/stop ends.
type Aligner struct {
	Reference     []byte
	MaxErrorRate  float64
	Flags         Flags
	WildcardRef   bool
	WildcardQuery bool

	// MinOverlap is the minimum aligned reference span a candidate match
	// must cover. Defaults to 1.
	MinOverlap int
	// IndelCost is the cost of a single insertion or deletion. Defaults to
	// 1. A cost of disableIndelCost effectively disables indels (used by
	// the insert aligner, which wants a pure-substitution alignment).
	IndelCost int
}

// NewAligner builds an Aligner over reference with the given error rate and
// freedom flags. MinOverlap defaults to 1 and IndelCost defaults to 1;
// callers may override either field after construction.
func NewAligner(reference []byte, maxErrorRate float64, flags Flags, wildcardRef, wildcardQuery bool) *Aligner {
	return &Aligner{
		Reference:     reference,
		MaxErrorRate:  maxErrorRate,
		Flags:         flags,
		WildcardRef:   wildcardRef,
		WildcardQuery: wildcardQuery,
		MinOverlap:    1,
		IndelCost:     1,
	}
}

// cell is one entry of the DP matrix: the minimum cost to reach this
// (reference, query) position, the number of matching bases accumulated
// along the optimal path reaching it, and the origin (reference start,
// query start) of that path.
type cell struct {
	cost       int
	matches    int
	errors     int
	refStart   int
	queryStart int
}

// Locate finds the best-scoring alignment of query against the reference,
// subject to a.Flags, a.MaxErrorRate and a.MinOverlap. ok is false when no
// candidate end point satisfies both constraints.
func (a *Aligner) Locate(query []byte) (res Result, ok bool) {
	m, n := len(a.Reference), len(query)
	rows := make([][]cell, m+1)
	for i := range rows {
		rows[i] = make([]cell, n+1)
	}

	rows[0][0] = cell{refStart: 0, queryStart: 0}
	for j := 1; j <= n; j++ {
		if a.Flags&StartWithinSeq1 != 0 {
			rows[0][j] = cell{refStart: 0, queryStart: j}
		} else {
			rows[0][j] = cell{cost: j, errors: j, refStart: 0, queryStart: 0}
		}
	}
	for i := 1; i <= m; i++ {
		if a.Flags&StartWithinSeq2 != 0 {
			rows[i][0] = cell{refStart: i, queryStart: 0}
		} else {
			rows[i][0] = cell{cost: i, errors: i, refStart: 0, queryStart: 0}
		}
	}

	indelCost := a.effectiveIndelCost()
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			match := baseMatches(a.Reference[i-1], query[j-1], a.WildcardRef, a.WildcardQuery)
			subCost := 1
			if match {
				subCost = 0
			}

			diag := rows[i-1][j-1]
			diagMatches := diag.matches
			diagErrors := diag.errors
			if match {
				diagMatches++
			} else {
				diagErrors++
			}
			best := cell{cost: diag.cost + subCost, matches: diagMatches, errors: diagErrors, refStart: diag.refStart, queryStart: diag.queryStart}

			up := rows[i-1][j] // consume reference, gap in query (deletion)
			if upCost := up.cost + indelCost; upCost < best.cost || (upCost == best.cost && up.matches > best.matches) {
				best = cell{cost: upCost, matches: up.matches, errors: up.errors + 1, refStart: up.refStart, queryStart: up.queryStart}
			}

			left := rows[i][j-1] // consume query, gap in reference (insertion)
			if leftCost := left.cost + indelCost; leftCost < best.cost || (leftCost == best.cost && left.matches > best.matches) {
				best = cell{cost: leftCost, matches: left.matches, errors: left.errors + 1, refStart: left.refStart, queryStart: left.queryStart}
			}
			rows[i][j] = best
		}
	}

	var (
		found   bool
		bestRes Result
	)
	consider := func(i, j int) {
		c := rows[i][j]
		length := i - c.refStart
		if length < a.MinOverlap {
			return
		}
		if float64(c.errors) > a.MaxErrorRate*float64(length) {
			return
		}
		cand := Result{
			RefStart: c.refStart, RefStop: i,
			QueryStart: c.queryStart, QueryStop: j,
			Matches: c.matches, Errors: c.errors,
		}
		if !found || betterCandidate(cand, bestRes) {
			bestRes = cand
			found = true
		}
	}

	if a.Flags&StopWithinSeq2 != 0 {
		for j := 0; j <= n; j++ {
			consider(m, j)
		}
	}
	if a.Flags&StopWithinSeq1 != 0 {
		for i := 0; i <= m; i++ {
			consider(i, n)
		}
	}
	if a.Flags&(StopWithinSeq1|StopWithinSeq2) == 0 {
		consider(m, n)
	}

	return bestRes, found
}

// betterCandidate reports whether a is preferred over b under spec's
// selection order: maximize matches, then minimize errors, then maximize
// length, then minimize reference start.
func betterCandidate(a, b Result) bool {
	if a.Matches != b.Matches {
		return a.Matches > b.Matches
	}
	if a.Errors != b.Errors {
		return a.Errors < b.Errors
	}
	if a.Len() != b.Len() {
		return a.Len() > b.Len()
	}
	return a.RefStart < b.RefStart
}

func (a *Aligner) effectiveIndelCost() int {
	if a.IndelCost <= 0 {
		return 1
	}
	return a.IndelCost
}

// disableIndelCost is large enough that no alignment will ever prefer an
// indel move over a run of substitutions, effectively disabling indels
// without a separate code path through the DP.
const disableIndelCost = 1 << 20

// NoIndelAligner performs the same candidate search as Aligner but without
// ever considering an indel move, equivalent to running ComparePrefixes (or
// its suffix/offset variants) over every reference offset the flags permit.
// It is a cheaper alternative to Aligner when IndelsAllowed is false.
type NoIndelAligner struct {
	Reference     []byte
	MaxErrorRate  float64
	Flags         Flags
	WildcardRef   bool
	WildcardQuery bool
	MinOverlap    int
}

// Locate slides query against every offset the flags permit and returns the
// best-scoring ungapped alignment.
func (a *NoIndelAligner) Locate(query []byte) (res Result, ok bool) {
	m, n := len(a.Reference), len(query)
	minOverlap := a.MinOverlap
	if minOverlap <= 0 {
		minOverlap = 1
	}

	var (
		found   bool
		bestRes Result
	)
	consider := func(refStart, queryStart, length int) {
		if length < minOverlap {
			return
		}
		matches, errors := scanForward(a.Reference[refStart:refStart+length], query[queryStart:queryStart+length], length, a.WildcardRef, a.WildcardQuery)
		if float64(errors) > a.MaxErrorRate*float64(length) {
			return
		}
		cand := Result{
			RefStart: refStart, RefStop: refStart + length,
			QueryStart: queryStart, QueryStop: queryStart + length,
			Matches: matches, Errors: errors,
		}
		if !found || betterCandidate(cand, bestRes) {
			bestRes = cand
			found = true
		}
	}

	startWithin1 := a.Flags&StartWithinSeq1 != 0 // query's own prefix is free
	startWithin2 := a.Flags&StartWithinSeq2 != 0 // reference's own prefix is free
	stopWithin1 := a.Flags&StopWithinSeq1 != 0   // reference may stop short (query fully consumed)
	stopWithin2 := a.Flags&StopWithinSeq2 != 0   // query may stop short (reference fully consumed)

	// Without indels, every alignment lies on a single diagonal d =
	// queryStart - refStart. Walk every diagonal that overlaps both
	// sequences; a diagonal with refStart > 0 is only reachable when the
	// reference's own prefix is free, and one with queryStart > 0 only when
	// the query's own prefix is free.
	for d := -m; d <= n; d++ {
		refStart, queryStart := 0, d
		if d < 0 {
			refStart, queryStart = -d, 0
		}
		if refStart > 0 && !startWithin2 {
			continue
		}
		if queryStart > 0 && !startWithin1 {
			continue
		}
		length := m - refStart
		if rem := n - queryStart; rem < length {
			length = rem
		}
		if length <= 0 {
			continue
		}
		refStop, queryStop := refStart+length, queryStart+length

		switch {
		case stopWithin1 && stopWithin2:
			// Either end may fall short; the natural full extension along
			// this diagonal is always a valid candidate.
		case stopWithin2 && !stopWithin1:
			if refStop != m {
				continue
			}
		case stopWithin1 && !stopWithin2:
			if queryStop != n {
				continue
			}
		default:
			if refStop != m || queryStop != n {
				continue
			}
		}
		consider(refStart, queryStart, length)
	}

	return bestRes, found
}
