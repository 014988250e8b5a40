// Package semantic holds the typed representation of a Lyra package and
// the passes that operate on it: inference, export extraction, and
// vectorization.
package semantic

// Symbol is a qualified binding name. Two symbols are equal exactly when
// both the name and the owning package match, so it can be used directly
// as a map key.
type Symbol struct {
	Name    string
	Package string
}

func NewSymbol(name, pkg string) Symbol {
	return Symbol{Name: name, Package: pkg}
}

func (s Symbol) String() string {
	if s.Package == "" {
		return s.Name
	}
	return s.Name + "@" + s.Package
}
