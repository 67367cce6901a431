package rmp

import (
	"math"
	"testing"
)

func TestProbMonotonic(t *testing.T) {
	table := New(DefaultAlphabetSize)
	p10 := table.Prob(10, 20)
	p15 := table.Prob(15, 20)
	p20 := table.Prob(20, 20)
	if !(p10 > p15 && p15 > p20) {
		t.Errorf("expected Prob to decrease as matches increases: %v %v %v", p10, p15, p20)
	}
}

func TestProbEdgeCases(t *testing.T) {
	table := New(DefaultAlphabetSize)
	if table.Prob(0, 10) != 1.0 {
		t.Errorf("Prob(0, n) should be 1.0")
	}
	if table.Prob(11, 10) != 0.0 {
		t.Errorf("Prob(m>n, n) should be 0.0")
	}
}

func TestProbMemoized(t *testing.T) {
	table := New(DefaultAlphabetSize)
	a := table.Prob(5, 10)
	b := table.Prob(5, 10)
	if a != b {
		t.Errorf("expected memoized value to be stable: %v != %v", a, b)
	}
}

func TestProbAllMatchesIsSmall(t *testing.T) {
	table := New(DefaultAlphabetSize)
	p := table.Prob(20, 20)
	if p <= 0 || p > math.Pow(0.25, 20)*2 {
		t.Errorf("Prob(n,n) = %v, expected roughly p^n", p)
	}
}

func TestWarmPopulatesCache(t *testing.T) {
	table := New(DefaultAlphabetSize)
	if err := table.Warm(30); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	table.mu.Lock()
	n := len(table.cache)
	table.mu.Unlock()
	if n == 0 {
		t.Fatalf("expected Warm to populate the cache")
	}
	if v, ok := table.cache[key{15, 30}]; !ok || v != table.Prob(15, 30) {
		t.Errorf("got cache[{15,30}]=%v,%v, want it pre-populated and consistent with Prob", v, ok)
	}
}

func TestWarmZeroIsNoop(t *testing.T) {
	table := New(DefaultAlphabetSize)
	if err := table.Warm(0); err != nil {
		t.Fatalf("Warm(0): %v", err)
	}
	table.mu.Lock()
	n := len(table.cache)
	table.mu.Unlock()
	if n != 0 {
		t.Errorf("expected no cache entries from Warm(0), got %d", n)
	}
}
