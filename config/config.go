// Package config holds the analysis-wide options the CLI parses and the
// engine packages consume, modeled on the teacher's own config package
// (github.com/o2lab/go2/config, referenced from main.go).
package config

import "github.com/o2lab/reach/pss"

// Options bundles the §6 Configuration block. PSSConfig projects it into
// a pss.Config for the solver; Scope and Exclusion are read only by
// Included.
type Options struct {
	// MaxOffset is the largest GEP-computed offset kept concrete.
	MaxOffset pss.Offset

	// PreprocessGEPs toggles the SCC-driven GEP widening pass.
	PreprocessGEPs bool

	// InvalidateNodes is reserved, wired for parity with the original
	// engine; see pss.Config's doc comment.
	InvalidateNodes bool

	// Scope lists the function name prefixes Included accepts. An empty
	// Scope accepts every name. Neither the solver nor report filters by it.
	Scope []string

	// Exclusion lists function name prefixes Included rejects regardless
	// of Scope, mirroring the teacher's ExcludedPkgs convention in
	// analyzer/analyzer.go.
	Exclusion []string
}

// Default returns the documented defaults with an empty scope/exclusion.
func Default() Options {
	return Options{
		MaxOffset:       pss.UnknownOffset,
		PreprocessGEPs:  true,
		InvalidateNodes: false,
	}
}

// PSSConfig projects the solver-relevant fields into a pss.Config.
func (o Options) PSSConfig() pss.Config {
	return pss.Config{
		MaxOffset:       o.MaxOffset,
		PreprocessGEPs:  o.PreprocessGEPs,
		InvalidateNodes: o.InvalidateNodes,
	}
}

// Included reports whether name passes Scope and Exclusion: it must
// match some Scope prefix (or Scope must be empty) and must not match
// any Exclusion prefix.
func (o Options) Included(name string) bool {
	for _, excl := range o.Exclusion {
		if hasPrefix(name, excl) {
			return false
		}
	}
	if len(o.Scope) == 0 {
		return true
	}
	for _, scope := range o.Scope {
		if hasPrefix(name, scope) {
			return true
		}
	}
	return false
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
