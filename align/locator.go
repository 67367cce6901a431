package align

// NewLocatorForAdapter builds the Locator (Aligner or NoIndelAligner)
// implied by an adapter's configuration (modifier_test.go builds its
// Aligners directly with NewAligner instead): NoIndelAligner when the
// adapter disallows indels (cheaper, per NoIndelAligner's own doc comment),
// otherwise an Aligner with the adapter's effective indel cost.
func NewLocatorForAdapter(a *Adapter) Locator {
	flags := a.Where.Flags()
	if !a.IndelsAllowed {
		return &NoIndelAligner{
			Reference:     a.Seq,
			MaxErrorRate:  a.MaxErrorRate,
			Flags:         flags,
			WildcardRef:   a.WildcardAdapter,
			WildcardQuery: a.WildcardRead,
			MinOverlap:    a.MinOverlap,
		}
	}
	al := NewAligner(a.Seq, a.MaxErrorRate, flags, a.WildcardAdapter, a.WildcardRead)
	al.MinOverlap = a.MinOverlap
	al.IndelCost = a.effectiveIndelCost()
	return al
}
