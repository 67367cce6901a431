// Package rmp computes random-match probabilities: given that a candidate
// alignment produced m matches out of n aligned positions, what is the
// probability that a uniformly random sequence would have matched at least
// as well? The insert aligner uses this as a statistical gate on
// top of the raw error-rate threshold, since short, low-complexity adapter
// fragments can pass an error-rate check by chance alone.
package rmp

import (
	"math"
	"sync"

	"github.com/grailbio/base/traverse"
)

// key identifies one (matches, size) memo entry.
type key struct {
	m, n int
}

// Table memoizes P(m, n) values for one alphabet size. A Table is safe for
// concurrent use by multiple goroutines; callers should share a single Table
// across every Aligner and InsertAligner in a run, per spec: the memo bounds
// memory by (max read length x max adapter length) regardless of how many
// aligners reuse it.
type Table struct {
	mu    sync.Mutex
	cache map[key]float64
	// p is the per-position match probability of a uniformly random base
	// against a fixed reference base, i.e. 1/alphabetSize.
	p float64
}

// DefaultAlphabetSize is the number of symbols in {A,C,G,T}.
const DefaultAlphabetSize = 4

// New returns a Table for the given alphabet size (use rmp.DefaultAlphabetSize
// for plain nucleotide sequence).
func New(alphabetSize int) *Table {
	if alphabetSize <= 0 {
		alphabetSize = DefaultAlphabetSize
	}
	return &Table{
		cache: make(map[key]float64),
		p:     1.0 / float64(alphabetSize),
	}
}

// Prob returns P(X >= m) where X ~ Binomial(n, p), p = 1/alphabetSize. This
// is the probability that a random length-n sequence matches a fixed
// reference in at least m positions.
func (t *Table) Prob(matches, size int) float64 {
	if matches <= 0 {
		return 1.0
	}
	if matches > size {
		return 0.0
	}
	k := key{matches, size}

	t.mu.Lock()
	if v, ok := t.cache[k]; ok {
		t.mu.Unlock()
		return v
	}
	t.mu.Unlock()

	v := binomialUpperTail(matches, size, t.p)

	t.mu.Lock()
	t.cache[k] = v
	t.mu.Unlock()
	return v
}

// Warm populates t's cache for every (matches, maxSize) pair with
// maxSize in [1, maxLen] and matches in [1, maxSize], fanned out across
// bounded worker goroutines the way encoding/converter/convert.go spreads
// per-shard BAM conversion across traverse.Each: every aligner sharing t
// then hits a populated cache from its first Prob call instead of each
// racing to fill the same entries under t.mu.
func (t *Table) Warm(maxLen int) error {
	if maxLen <= 0 {
		return nil
	}
	return traverse.Each(maxLen, func(i int) error {
		n := i + 1
		for m := 1; m <= n; m++ {
			t.Prob(m, n)
		}
		return nil
	})
}

// binomialUpperTail computes P(X >= m) for X ~ Binomial(n, p) via the
// regularized incomplete beta function, which is numerically stable for the
// read/adapter lengths this package is used with (at most a few hundred).
func binomialUpperTail(m, n int, p float64) float64 {
	if m == 0 {
		return 1.0
	}
	if m > n {
		return 0.0
	}
	// P(X >= m) = I_p(m, n-m+1), the regularized incomplete beta function.
	return incompleteBeta(p, float64(m), float64(n-m+1))
}

// incompleteBeta returns the regularized incomplete beta function I_x(a, b),
// computed with the continued-fraction expansion from Numerical Recipes.
// Implemented directly on float64s (no external stats dependency needed, and
// none of the teacher's or pack's dependencies offer this) since n and m stay
// in the low hundreds for adapter/read lengths, where the continued fraction
// converges in well under 100 iterations.
func incompleteBeta(x, a, b float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lbeta := lgammaSum(a, b)
	front := math.Exp(lbeta + a*math.Log(x) + b*math.Log(1-x))
	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(x, a, b) / a
	}
	return 1 - front*betaContinuedFraction(1-x, b, a)/b
}

func lgammaSum(a, b float64) float64 {
	lgA, _ := math.Lgamma(a)
	lgB, _ := math.Lgamma(b)
	lgAB, _ := math.Lgamma(a + b)
	return lgAB - lgA - lgB
}

// betaContinuedFraction evaluates the Lentz continued fraction used by
// incompleteBeta.
func betaContinuedFraction(x, a, b float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		tiny    = 1e-300
	)
	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d
	for i := 1; i <= maxIter; i++ {
		m := float64(i)
		m2 := 2 * m

		aa := m * (b - m) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + m) * (qab + m) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
