// Package fasta contains code for parsing FASTA files, used to load named
// adapter sequences from an adapter file (§6). FASTA files consist of a
// number of named sequences that may be interrupted by newlines. For
// example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appear after a space are ignored.
// For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/grailbio/trimmer/align"
)

const (
	mib            = 1024 * 1024
	bufferInitSize = 300 * mib
)

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end). Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the FASTA file.
	SeqNames() []string
}

type opts struct {
	Clean bool
}

// Opt is an optional argument to New.
type Opt func(*opts)

// OptClean specifies returned FASTA sequences should be cleaned as described
// in align.CleanSeqInplace: capitalized, non-ACGT bytes replaced with 'N'.
func OptClean(o *opts) { o.Clean = true }

func makeOpts(userOpts ...Opt) opts {
	var parsedOpts opts
	for _, userOpt := range userOpts {
		userOpt(&parsedOpts)
	}
	return parsedOpts
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads every sequence out of r into memory, keyed by the name
// following '>' up to the first space. Used to load an adapter file's
// named sequences (§6); pass OptClean to normalize bases the way
// align.NewAdapter expects (uppercase ACGT, everything else 'N').
func New(r io.Reader, opts ...Opt) (Fasta, error) {
	parsedOpts := makeOpts(opts...)
	f := &fasta{seqs: make(map[string]string)}

	var name string
	var seq []byte
	store := func() error {
		if name == "" {
			return nil
		}
		if _, dup := f.seqs[name]; dup {
			return fmt.Errorf("fasta: duplicate sequence name %q", name)
		}
		if parsedOpts.Clean {
			align.CleanSeqInplace(seq)
		}
		f.seqs[name] = string(seq)
		f.seqNames = append(f.seqNames, name)
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		switch {
		case len(line) == 0:
			continue
		case line[0] == '>':
			if err := store(); err != nil {
				return nil, err
			}
			name, seq = string(bytes.SplitN(line[1:], []byte(" "), 2)[0]), nil
		case name == "":
			return nil, fmt.Errorf("fasta: sequence data before first '>' header")
		default:
			seq = append(seq, line...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fasta: couldn't read FASTA data: %w", err)
	}
	if err := store(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", fmt.Errorf("fasta: sequence not found: %s", seqName)
	}
	if end <= start {
		return "", fmt.Errorf("fasta: start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", fmt.Errorf("fasta: invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seq string) (uint64, error) {
	s, ok := f.seqs[seq]
	if !ok {
		return 0, fmt.Errorf("fasta: sequence not found: %s", seq)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}
