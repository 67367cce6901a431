package align

import (
	"bytes"
	"testing"
)

func TestNewMatch(t *testing.T) {
	adapter, err := NewAdapter("a1", []byte("AGATCGGAAGAGC"), Back, 0.2)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	read := []byte("TTTTTTTTTTAGATCGGAAG")
	res := Result{RefStart: 0, RefStop: 10, QueryStart: 10, QueryStop: 20, Matches: 10, Errors: 0}
	m, err := NewMatch(adapter, read, res, false)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if !bytes.Equal(m.Rest(), read[:10]) {
		t.Errorf("Rest() = %q, want %q", m.Rest(), read[:10])
	}
	if m.Length() != 10 {
		t.Errorf("Length() = %d, want 10", m.Length())
	}
}

func TestNewMatchRejectsLowOverlap(t *testing.T) {
	adapter, _ := NewAdapter("a1", []byte("AGATCGGAAGAGC"), Back, 0.2)
	adapter.MinOverlap = 5
	res := Result{RefStart: 0, RefStop: 2, QueryStart: 18, QueryStop: 20, Matches: 2, Errors: 0}
	if _, err := NewMatch(adapter, make([]byte, 20), res, false); err == nil {
		t.Errorf("expected a min_overlap violation error")
	}
}

func TestNewMatchRejectsHighErrorRate(t *testing.T) {
	adapter, _ := NewAdapter("a1", []byte("AGATCGGAAGAGC"), Back, 0.1)
	res := Result{RefStart: 0, RefStop: 10, QueryStart: 10, QueryStop: 20, Matches: 7, Errors: 3}
	if _, err := NewMatch(adapter, make([]byte, 20), res, false); err == nil {
		t.Errorf("expected a max_error_rate violation error")
	}
}

func TestMatchFrontRest(t *testing.T) {
	adapter, _ := NewAdapter("a1", []byte("AGATCGGAAGAGC"), Front, 0.2)
	read := []byte("GGAAGAGCTTTTTTTTTT")
	res := Result{RefStart: 5, RefStop: 13, QueryStart: 0, QueryStop: 8, Matches: 8, Errors: 0}
	m, err := NewMatch(adapter, read, res, true)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if !bytes.Equal(m.Rest(), read[8:]) {
		t.Errorf("Rest() = %q, want %q", m.Rest(), read[8:])
	}
}

func TestMatchWildcards(t *testing.T) {
	adapter, _ := NewAdapter("a1", []byte("ACNT"), Back, 0.5)
	adapter.WildcardAdapter = true
	read := []byte("GGACGT")
	res := Result{RefStart: 0, RefStop: 4, QueryStart: 2, QueryStop: 6, Matches: 4, Errors: 0}
	m, err := NewMatch(adapter, read, res, false)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	wc := m.Wildcards('N')
	if !bytes.Equal(wc, []byte("G")) {
		t.Errorf("Wildcards() = %q, want %q", wc, "G")
	}
}
