package align

// revCompTable maps every byte value to its complement under the ASCII
// nucleotide alphabet, defaulting to 'N' for anything that isn't
// A/C/G/T/a/c/g/t. Ported from the lookup-table technique in the teacher's
// biosimd.ReverseComp8Inplace: a 256-entry table turns complementation into
// a single indexed load per byte instead of a branch chain.
var revCompTable = buildRevCompTable()

func buildRevCompTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	pairs := map[byte]byte{'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C'}
	for a, b := range pairs {
		t[a] = b
		t[a+('a'-'A')] = b
	}
	return t
}

// ReverseComplement returns the reverse complement of seq as a new slice,
// used by the insert aligner (§4.D) to align one read against the other's
// reverse complement.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	n := len(seq)
	for i, b := range seq {
		out[n-1-i] = revCompTable[b]
	}
	return out
}

// cleanSeqTable maps every byte to itself if it's an upper-case A/C/G/T, to
// its upper-cased form for lower-case a/c/g/t, and to 'N' for anything else.
// Same table-lookup idiom as revCompTable, ported from the teacher's
// biosimd.CleanASCIISeqInplace.
var cleanSeqTable = buildCleanSeqTable()

func buildCleanSeqTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	for _, b := range []byte{'A', 'C', 'G', 'T'} {
		t[b] = b
		t[b+('a'-'A')] = b
	}
	return t
}

// CleanSeqInplace capitalizes a/c/g/t and replaces everything else with 'N',
// used when loading adapter FASTA files (§6, atropos-style named adapters)
// to normalize sequences read from arbitrary-case, possibly IUPAC-ambiguous
// input files down to the alphabet the aligner understands.
func CleanSeqInplace(seq []byte) {
	for i, b := range seq {
		seq[i] = cleanSeqTable[b]
	}
}
