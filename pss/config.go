package pss

// Config holds the three knobs §6 documents. The zero value is not
// directly usable; use DefaultConfig to get the documented defaults.
type Config struct {
	// MaxOffset is the largest GEP-computed offset that is kept
	// concrete; anything beyond it saturates to UnknownOffset.
	MaxOffset Offset

	// PreprocessGEPs toggles the SCC-driven GEP widening in §4.3.
	PreprocessGEPs bool

	// InvalidateNodes is reserved. It is wired into Config for parity
	// with the original engine but has no effect on the solver's
	// contract — reproducing the original's "wired but unused" state
	// rather than inventing semantics for it (§9).
	InvalidateNodes bool
}

// DefaultConfig returns the documented defaults: unconstrained max
// offset, GEP preprocessing enabled, invalidation disabled.
func DefaultConfig() Config {
	return Config{
		MaxOffset:       UnknownOffset,
		PreprocessGEPs:  true,
		InvalidateNodes: false,
	}
}
