package align

// Result is the 6-tuple returned by an alignment: the half-open interval
// [RefStart, RefStop) in the reference, the half-open interval
// [QueryStart, QueryStop) in the query, and the number of matches and errors
// observed over that span.
type Result struct {
	RefStart, RefStop     int
	QueryStart, QueryStop int
	Matches, Errors       int
}

// Len returns the aligned span in the reference.
func (r Result) Len() int { return r.RefStop - r.RefStart }

// ComparePrefixes performs a bounded, indel-free, base-by-base comparison of
// two byte slices starting at position 0, advancing for min(len(s1), len(s2))
// positions. A position is a match when the bases are equal, or when
// wildcardRef is set and s1[i] == 'N', or when wildcardQuery is set and
// s2[i] == 'N'. It never fails: the reference semantics of a "no indel"
// adapter check.
func ComparePrefixes(s1, s2 []byte, wildcardRef, wildcardQuery bool) Result {
	n := len(s1)
	if len(s2) < n {
		n = len(s2)
	}
	matches, errors := scanForward(s1, s2, n, wildcardRef, wildcardQuery)
	return Result{
		RefStart: 0, RefStop: n,
		QueryStart: 0, QueryStop: n,
		Matches: matches, Errors: errors,
	}
}

// CompareSuffixes is ComparePrefixes applied to the trailing ends of s1, s2,
// reporting positions relative to the original (un-reversed) inputs.
func CompareSuffixes(s1, s2 []byte, wildcardRef, wildcardQuery bool) Result {
	n := len(s1)
	if len(s2) < n {
		n = len(s2)
	}
	matches, errors := scanBackward(s1, s2, n, wildcardRef, wildcardQuery)
	return Result{
		RefStart: len(s1) - n, RefStop: len(s1),
		QueryStart: len(s2) - n, QueryStop: len(s2),
		Matches: matches, Errors: errors,
	}
}

func baseMatches(a, b byte, wildcardRef, wildcardQuery bool) bool {
	if a == b {
		return true
	}
	if wildcardRef && a == 'N' {
		return true
	}
	if wildcardQuery && b == 'N' {
		return true
	}
	return false
}

func scanForward(s1, s2 []byte, n int, wildcardRef, wildcardQuery bool) (matches, errors int) {
	for i := 0; i < n; i++ {
		if baseMatches(s1[i], s2[i], wildcardRef, wildcardQuery) {
			matches++
		} else {
			errors++
		}
	}
	return
}

func scanBackward(s1, s2 []byte, n int, wildcardRef, wildcardQuery bool) (matches, errors int) {
	l1, l2 := len(s1), len(s2)
	for i := 0; i < n; i++ {
		if baseMatches(s1[l1-1-i], s2[l2-1-i], wildcardRef, wildcardQuery) {
			matches++
		} else {
			errors++
		}
	}
	return
}
