package align

import "fmt"

// Match is the immutable record of one adapter occurrence located within a
// read, realizing spec §3/§4.E. AdapterStart/AdapterStop index into the
// adapter sequence, ReadStart/ReadStop into the read, both half-open.
type Match struct {
	Adapter *Adapter
	Read    []byte

	AdapterStart, AdapterStop int
	ReadStart, ReadStop       int
	Matches, Errors           int

	// Front is true when the adapter occurrence's read-side start is the
	// anchor for trimming (i.e. everything through ReadStop is removed),
	// false when the occurrence runs to the read's end (everything from
	// ReadStart on is removed). FRONT/ANCHORED_FRONT matches are Front;
	// BACK/ANCHORED_BACK matches are not; ANYWHERE decides by position.
	Front bool
}

// NewMatch builds a Match from a Result returned by an Aligner or
// NoIndelAligner, validating every invariant in spec §3/§8.
func NewMatch(adapter *Adapter, read []byte, r Result, front bool) (Match, error) {
	m := Match{
		Adapter:      adapter,
		Read:         read,
		AdapterStart: r.RefStart,
		AdapterStop:  r.RefStop,
		ReadStart:    r.QueryStart,
		ReadStop:     r.QueryStop,
		Matches:      r.Matches,
		Errors:       r.Errors,
		Front:        front,
	}
	return m, m.validate()
}

func (m Match) validate() error {
	if m.AdapterStart < 0 || m.AdapterStop > len(m.Adapter.Seq) || m.AdapterStart > m.AdapterStop {
		return fmt.Errorf("align: match: adapter span [%d,%d) out of bounds for adapter %q (len %d)",
			m.AdapterStart, m.AdapterStop, m.Adapter.Name, len(m.Adapter.Seq))
	}
	if m.ReadStart < 0 || m.ReadStop > len(m.Read) || m.ReadStart > m.ReadStop {
		return fmt.Errorf("align: match: read span [%d,%d) out of bounds (read len %d)",
			m.ReadStart, m.ReadStop, len(m.Read))
	}
	length := m.AdapterStop - m.AdapterStart
	if length < m.Adapter.MinOverlap {
		return fmt.Errorf("align: match: aligned length %d below min_overlap %d", length, m.Adapter.MinOverlap)
	}
	if length > 0 && float64(m.Errors) > m.Adapter.MaxErrorRate*float64(length) {
		return fmt.Errorf("align: match: %d errors over %d aligned bases exceeds max_error_rate %v",
			m.Errors, length, m.Adapter.MaxErrorRate)
	}
	if m.Matches+m.Errors > length+(m.ReadStop-m.ReadStart) {
		return fmt.Errorf("align: match: matches(%d)+errors(%d) inconsistent with aligned spans", m.Matches, m.Errors)
	}
	return nil
}

// Length is the aligned span in the adapter (spec's "length").
func (m Match) Length() int { return m.AdapterStop - m.AdapterStart }

// Rest returns the portion of the read that is NOT part of the adapter
// occurrence and should survive trimming: the part after the occurrence
// (from ReadStop on) when Front is true, the part before it (up to
// ReadStart) otherwise.
func (m Match) Rest() []byte {
	if m.Front {
		return m.Read[m.ReadStop:]
	}
	return m.Read[:m.ReadStart]
}

// Wildcards reports, for every adapter wildcard base (byte value wc, 'N' by
// convention) inside the matched span, the read base it was matched
// against, in adapter order. Used by modifiers that fold observed wildcard
// calls into read annotations.
func (m Match) Wildcards(wc byte) []byte {
	if !m.Adapter.WildcardAdapter {
		return nil
	}
	var out []byte
	readPos := m.ReadStart
	for i := m.AdapterStart; i < m.AdapterStop && readPos < len(m.Read); i++ {
		if m.Adapter.Seq[i] == wc {
			out = append(out, m.Read[readPos])
		}
		readPos++
	}
	return out
}

// Info is the flattened record written by the "info file" formatter
// (§4.H, supplemented from atropos' --info-file), one line per adapter
// occurrence found in a read.
type Info struct {
	AdapterName               string
	AdapterStart, AdapterStop int
	ReadStart, ReadStop       int
	Matches, Errors           int
}

// InfoRecord converts a Match into its Info projection.
func (m Match) InfoRecord() Info {
	return Info{
		AdapterName:  m.Adapter.Name,
		AdapterStart: m.AdapterStart,
		AdapterStop:  m.AdapterStop,
		ReadStart:    m.ReadStart,
		ReadStop:     m.ReadStop,
		Matches:      m.Matches,
		Errors:       m.Errors,
	}
}
