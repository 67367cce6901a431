// Package fqio reads and writes FASTQ records for the trimming pipeline.
// It is adapted from the teacher's encoding/fastq package: the same
// line-oriented bufio.Scanner approach, generalized from string fields to
// []byte (the hot path copies read content repeatedly through the modifier
// chain, so avoiding string<->[]byte conversions matters), plus a Pair type
// and a batching Reader that feed the runner's work queue (§4.J/§5).
package fqio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("fqio: short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("fqio: invalid FASTQ file")
	// ErrDiscordant is returned when two underlying FASTQ files disagree on
	// read count (one mate file ran out before the other).
	ErrDiscordant = errors.New("fqio: discordant FASTQ pairs")
)

// Read is one FASTQ record. Name excludes the leading '@' and any trailing
// "/1"/"/2" mate suffix (§6, supplemented from atropos' PairedEndReader).
type Read struct {
	Name []byte
	Seq  []byte
	Plus []byte // line 3, conventionally "+" or "+"+Name again
	Qual []byte
}

// Clone returns a deep copy of r, used by modifiers that return a trimmed
// version while leaving the original read unmodified.
func (r *Read) Clone() *Read {
	return &Read{
		Name: append([]byte(nil), r.Name...),
		Seq:  append([]byte(nil), r.Seq...),
		Plus: append([]byte(nil), r.Plus...),
		Qual: append([]byte(nil), r.Qual...),
	}
}

// Pair is a paired-end read pair. R2 is nil in single-end mode.
type Pair struct {
	R1, R2 *Read
}

// PairedEnd reports whether p carries a second mate.
func (p *Pair) PairedEnd() bool { return p.R2 != nil }

var mateSuffixes = [][]byte{[]byte("/1"), []byte("/2")}

// stripMateSuffix removes a trailing "/1" or "/2" from a read name, per
// atropos' PairedEndReader preprocessing.
func stripMateSuffix(name []byte) []byte {
	for _, suf := range mateSuffixes {
		if bytes.HasSuffix(name, suf) {
			return name[:len(name)-len(suf)]
		}
	}
	return name
}

// Scanner reads successive Read records from a single FASTQ stream.
// Scanner performs the same light validation as the teacher's: ID lines
// must begin with '@', line 3 with '+'; it does not check that Seq and Qual
// have equal length.
type Scanner struct {
	b   *bufio.Scanner
	err error
}

var errEOF = errors.New("fqio: eof")

// NewScanner constructs a Scanner reading raw FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Scanner{b: s}
}

// Scan reads the next record into read, reporting whether it succeeded.
// Once Scan returns false it never returns true again; call Err to learn
// whether the stream simply ended or failed.
func (s *Scanner) Scan(read *Read) bool {
	if s.err != nil {
		return false
	}
	if !s.scanLine() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = errEOF
		}
		return false
	}
	name := s.b.Bytes()
	if len(name) == 0 || name[0] != '@' {
		s.err = ErrInvalid
		return false
	}
	read.Name = stripMateSuffix(append(read.Name[:0], name[1:]...))

	if !s.scanLine() {
		s.err = ErrShort
		return false
	}
	read.Seq = append(read.Seq[:0], s.b.Bytes()...)

	if !s.scanLine() {
		s.err = ErrShort
		return false
	}
	plus := s.b.Bytes()
	if len(plus) == 0 || plus[0] != '+' {
		s.err = ErrInvalid
		return false
	}
	read.Plus = append(read.Plus[:0], plus...)

	if !s.scanLine() {
		s.err = ErrShort
		return false
	}
	read.Qual = append(read.Qual[:0], s.b.Bytes()...)
	return true
}

func (s *Scanner) scanLine() bool { return s.b.Scan() }

// Err returns the scanning error, if any; nil at a clean EOF.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}

// PairScanner composes two Scanners to read a mate pair together.
type PairScanner struct {
	r1, r2 *Scanner
	err    error
}

// NewPairScanner creates a pair scanner from the given R1/R2 streams.
func NewPairScanner(r1, r2 io.Reader) *PairScanner {
	return &PairScanner{r1: NewScanner(r1), r2: NewScanner(r2)}
}

// Scan reads the next pair into p, allocating R1/R2 if nil.
func (p *PairScanner) Scan(pair *Pair) bool {
	if pair.R1 == nil {
		pair.R1 = &Read{}
	}
	if pair.R2 == nil {
		pair.R2 = &Read{}
	}
	ok1 := p.r1.Scan(pair.R1)
	ok2 := p.r2.Scan(pair.R2)
	if ok1 != ok2 {
		p.err = ErrDiscordant
	}
	return ok1 && ok2
}

// Err returns the scanning error, if any.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}

// InterleavedPairScanner reads a mate pair as two consecutive records of a
// single FASTQ stream (R1, then R2, then the next pair's R1, ...), the
// layout cutadapt/atropos call --interleaved.
type InterleavedPairScanner struct {
	s   *Scanner
	err error
}

// NewInterleavedPairScanner creates a pair scanner reading both mates from r.
func NewInterleavedPairScanner(r io.Reader) *InterleavedPairScanner {
	return &InterleavedPairScanner{s: NewScanner(r)}
}

// Scan reads the next pair into p, allocating R1/R2 if nil.
func (p *InterleavedPairScanner) Scan(pair *Pair) bool {
	if pair.R1 == nil {
		pair.R1 = &Read{}
	}
	if pair.R2 == nil {
		pair.R2 = &Read{}
	}
	if !p.s.Scan(pair.R1) {
		return false
	}
	if !p.s.Scan(pair.R2) {
		p.err = ErrShort
		return false
	}
	return true
}

// Err returns the scanning error, if any.
func (p *InterleavedPairScanner) Err() error {
	if err := p.s.Err(); err != nil {
		return err
	}
	return p.err
}
