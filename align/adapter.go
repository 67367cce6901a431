package align

import "fmt"

// Where identifies where on the read an adapter is expected to occur.
type Where int

const (
	// Back is a 3' adapter: the read runs into the adapter's start.
	Back Where = iota
	// Front is a 5' adapter: the adapter precedes the read's content.
	Front
	// Anywhere means the adapter may occur at either end.
	Anywhere
	// AnchoredFront requires the adapter to start at read position 0.
	AnchoredFront
	// AnchoredBack requires the adapter to end at the read's last position.
	AnchoredBack
)

func (w Where) String() string {
	switch w {
	case Front:
		return "FRONT"
	case Back:
		return "BACK"
	case Anywhere:
		return "ANYWHERE"
	case AnchoredFront:
		return "ANCHORED_FRONT"
	case AnchoredBack:
		return "ANCHORED_BACK"
	default:
		return "UNKNOWN"
	}
}

// Adapter describes one sequence to search for within a read.
type Adapter struct {
	Name string
	Seq  []byte
	Where

	MaxErrorRate float64
	MinOverlap   int
	IndelCost    int
	IndelsAllowed bool

	WildcardRead    bool
	WildcardAdapter bool

	// MaxRMP holds a random-match-probability cutoff (spec §4.C/§4.D). No
	// aligner or modifier in this module reads it, so it gates no adapter
	// match whatever its value.
	MaxRMP float64

	// Times is the number of times this adapter may be found and removed
	// from the same read by the adapter-cutter modifier (§4.F, supplemented
	// from atropos' AdapterCutter.times).
	Times int
}

// NewAdapter constructs an Adapter with the spec-mandated defaults
// (MinOverlap=1, IndelCost=1, IndelsAllowed=true, Times=1) applied, then
// validates it.
func NewAdapter(name string, seq []byte, where Where, maxErrorRate float64) (*Adapter, error) {
	a := &Adapter{
		Name:          name,
		Seq:           append([]byte(nil), seq...),
		Where:         where,
		MaxErrorRate:  maxErrorRate,
		MinOverlap:    1,
		IndelCost:     1,
		IndelsAllowed: true,
		Times:         1,
	}
	return a, a.Validate()
}

// Validate enforces the Adapter invariants from spec §3.
func (a *Adapter) Validate() error {
	if a.MaxErrorRate <= 0 || a.MaxErrorRate >= 1 {
		return fmt.Errorf("align: adapter %q: max_error_rate must be in (0,1), got %v", a.Name, a.MaxErrorRate)
	}
	if a.MinOverlap > len(a.Seq) {
		return fmt.Errorf("align: adapter %q: min_overlap %d exceeds adapter length %d (short-circuit reject)", a.Name, a.MinOverlap, len(a.Seq))
	}
	if a.MinOverlap < 1 {
		return fmt.Errorf("align: adapter %q: min_overlap must be >= 1", a.Name)
	}
	if a.IndelCost < 1 {
		return fmt.Errorf("align: adapter %q: indel_cost must be >= 1", a.Name)
	}
	return nil
}

// effectiveIndelCost returns disableIndelCost when indels are disallowed,
// otherwise the configured IndelCost.
func (a *Adapter) effectiveIndelCost() int {
	if !a.IndelsAllowed {
		return disableIndelCost
	}
	if a.IndelCost <= 0 {
		return 1
	}
	return a.IndelCost
}

// flags returns the Aligner construction flags implied by an adapter's
// Where value, per spec §4.C. The Aligner's reference is the adapter
// sequence and its query is the read; StartWithinSeq1/StopWithinSeq1 govern
// the read's own free ends, StartWithinSeq2/StopWithinSeq2 the adapter's
// (see the doc comment on Flags for the precise row/column construction
// this implies):
//
//   - BACK (3'): the read may carry arbitrary content before the adapter
//     starts (StartWithinSeq1), and the match may end either because the
//     read runs out (StopWithinSeq1, adapter truncated) or because the
//     whole adapter has been consumed with read left over (StopWithinSeq2).
//   - FRONT (5'): symmetric to BACK at the other end — the adapter may
//     itself be truncated at its start (StartWithinSeq2, read is missing a
//     prefix of the adapter), the read's own start is free (StartWithinSeq1),
//     and the match ends once the whole adapter is consumed (StopWithinSeq2).
//   - ANYWHERE allows all four freedoms (full semi-global alignment).
//   - ANCHORED_FRONT pins both starts at zero, leaving only the two stop
//     freedoms (adapter may run past the read, or the read past the adapter).
//   - ANCHORED_BACK pins both ends at their natural stop, leaving only the
//     two start freedoms (either side may have been truncated from the
//     front of the match).
func (w Where) Flags() Flags {
	switch w {
	case Back:
		return StartWithinSeq1 | StopWithinSeq1 | StopWithinSeq2
	case Front:
		return StartWithinSeq1 | StartWithinSeq2 | StopWithinSeq2
	case Anywhere:
		return Semiglobal
	case AnchoredFront:
		return StopWithinSeq1 | StopWithinSeq2
	case AnchoredBack:
		return StartWithinSeq1 | StartWithinSeq2
	default:
		return 0
	}
}
