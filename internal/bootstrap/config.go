// Package bootstrap orchestrates package-level analysis of a Lyra
// source tree: it registers sources, demands AST and semantic packages
// lazily with memoization, builds the implicit preludes, detects import
// cycles, and compiles an analyzed tree into binary modules.
package bootstrap

import "martianoff/lyra/internal/semantic"

// Config fixes the bootstrap policy for one Database: which packages
// form the preludes, which foundational packages are only ever given the
// internal prelude, and whether preludes are used at all. Policy is
// passed in rather than compiled in so tests and alternate distributions
// can run with their own package lists.
type Config struct {
	// InternalPrelude is the minimal prelude, ordered. Its members are
	// analyzed with an empty environment so the prelude cannot depend on
	// itself.
	InternalPrelude []string
	// FullPrelude is the prelude given to ordinary packages, ordered.
	// Its members are analyzed against the internal prelude.
	FullPrelude []string
	// InternalOnly lists foundational packages that receive the internal
	// prelude without being prelude members themselves.
	InternalOnly []string
	UsePrelude   bool
	Analyzer     semantic.AnalyzerConfig
}

// DefaultConfig returns the standard library's bootstrap policy.
func DefaultConfig() Config {
	internal := []string{"internal/boolean", "internal/location"}
	full := make([]string, 0, len(internal)+2)
	full = append(full, internal...)
	full = append(full, "universe", "lyra/db")
	return Config{
		InternalPrelude: internal,
		FullPrelude:     full,
		InternalOnly: []string{
			"system",
			"date",
			"math",
			"strings",
			"regexp",
			"experimental/table",
		},
		UsePrelude: true,
	}
}

func contains(list []string, s string) bool {
	for _, have := range list {
		if have == s {
			return true
		}
	}
	return false
}
