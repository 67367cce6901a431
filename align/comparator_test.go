package align

import "testing"

func TestComparePrefixes(t *testing.T) {
	r := ComparePrefixes([]byte("ACGTACGT"), []byte("ACGAACGT"), false, false)
	if r.Matches != 7 || r.Errors != 1 {
		t.Errorf("got matches=%d errors=%d, want 7/1", r.Matches, r.Errors)
	}
	if r.RefStart != 0 || r.RefStop != 8 {
		t.Errorf("got span [%d,%d)", r.RefStart, r.RefStop)
	}
}

func TestComparePrefixesWildcard(t *testing.T) {
	r := ComparePrefixes([]byte("ACGNACGT"), []byte("ACGAACGT"), true, false)
	if r.Errors != 0 {
		t.Errorf("wildcard ref base should match anything, got errors=%d", r.Errors)
	}
}

func TestCompareSuffixes(t *testing.T) {
	r := CompareSuffixes([]byte("AAACGTAC"), []byte("CGTAC"), false, false)
	if r.Matches != 5 || r.Errors != 0 {
		t.Errorf("got matches=%d errors=%d, want 5/0", r.Matches, r.Errors)
	}
	if r.RefStart != 3 || r.RefStop != 8 {
		t.Errorf("got span [%d,%d), want [3,8)", r.RefStart, r.RefStop)
	}
}

func TestComparePrefixesShorterQuery(t *testing.T) {
	r := ComparePrefixes([]byte("ACGTACGT"), []byte("ACG"), false, false)
	if r.Len() != 3 {
		t.Errorf("got len %d, want 3 (bounded by shorter input)", r.Len())
	}
}
