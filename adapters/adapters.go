// Package adapters parses adapter specifications the way cutadapt-family
// CLIs do (-a/-g/-b flags, optional name=sequence prefix, ^/$ anchors, and
// file: references to FASTA-named adapter sets), building align.Adapter
// values for cmd/trimmer. Grounded on atropos/commands/trim.py's -a/-g/-b
// wiring (kept in original_source/) and the teacher's encoding/fasta
// package for file-backed adapter sets.
package adapters

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/trimmer/align"
	"github.com/grailbio/trimmer/encoding/fasta"
)

// DefaultMaxErrorRate is cutadapt's default -e value.
const DefaultMaxErrorRate = 0.1

// Side says which flag (-a, -g, or -b) an adapter spec came from.
type Side int

const (
	// SideBack corresponds to -a (3' adapter).
	SideBack Side = iota
	// SideFront corresponds to -g (5' adapter).
	SideFront
	// SideAnywhere corresponds to -b (either end).
	SideAnywhere
)

// Parse builds one or more align.Adapter values from a single -a/-g/-b flag
// occurrence. A spec of the form "file:path.fasta" expands to one adapter
// per FASTA record; anything else is a single inline spec of the form
// "[name=]sequence", optionally anchored with a leading '^' (valid only for
// SideFront, producing AnchoredFront) or a trailing '$' (valid only for
// SideBack, producing AnchoredBack).
func Parse(spec string, side Side, maxErrorRate float64) ([]*align.Adapter, error) {
	if maxErrorRate <= 0 {
		maxErrorRate = DefaultMaxErrorRate
	}
	if path := strings.TrimPrefix(spec, "file:"); path != spec {
		return loadFastaAdapters(path, side, maxErrorRate)
	}
	a, err := parseInline(spec, side, maxErrorRate)
	if err != nil {
		return nil, err
	}
	return []*align.Adapter{a}, nil
}

func parseInline(spec string, side Side, maxErrorRate float64) (*align.Adapter, error) {
	name, seqSpec := splitName(spec)

	anchoredFront := false
	anchoredBack := false
	if strings.HasPrefix(seqSpec, "^") {
		if side != SideFront {
			return nil, fmt.Errorf("adapters: %q: '^' anchor is only valid with -g (front) adapters", spec)
		}
		anchoredFront = true
		seqSpec = seqSpec[1:]
	}
	if strings.HasSuffix(seqSpec, "$") {
		if side != SideBack {
			return nil, fmt.Errorf("adapters: %q: '$' anchor is only valid with -a (back) adapters", spec)
		}
		anchoredBack = true
		seqSpec = seqSpec[:len(seqSpec)-1]
	}
	if seqSpec == "" {
		return nil, fmt.Errorf("adapters: %q: empty sequence", spec)
	}

	where := whereFor(side, anchoredFront, anchoredBack)
	if name == "" {
		name = seqSpec
	}
	return align.NewAdapter(name, []byte(strings.ToUpper(seqSpec)), where, maxErrorRate)
}

func whereFor(side Side, anchoredFront, anchoredBack bool) align.Where {
	switch {
	case anchoredFront:
		return align.AnchoredFront
	case anchoredBack:
		return align.AnchoredBack
	case side == SideFront:
		return align.Front
	case side == SideAnywhere:
		return align.Anywhere
	default:
		return align.Back
	}
}

// splitName splits a "name=sequence" spec into its parts; a spec with no
// '=' has no name.
func splitName(spec string) (name, seq string) {
	if i := strings.IndexByte(spec, '='); i >= 0 {
		return spec[:i], spec[i+1:]
	}
	return "", spec
}

func loadFastaAdapters(path string, side Side, maxErrorRate float64) ([]*align.Adapter, error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("adapters: opening %s: %v", path, err)
	}
	defer in.Close(ctx)

	f, err := fasta.New(in.Reader(ctx), fasta.OptClean)
	if err != nil {
		return nil, fmt.Errorf("adapters: loading %s: %v", path, err)
	}
	var out []*align.Adapter
	for _, name := range f.SeqNames() {
		n, err := f.Len(name)
		if err != nil {
			return nil, err
		}
		seq, err := f.Get(name, 0, n)
		if err != nil {
			return nil, err
		}
		where := whereFor(side, false, false)
		a, err := align.NewAdapter(name, []byte(seq), where, maxErrorRate)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
