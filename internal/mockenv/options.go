// Package mockenv fabricates the minimal set of framework symbols an
// implementation file may import: the configuration-option kinds, the base
// objective template and game types, and the platform enumeration. The
// symbols are exported into a yaegi interpreter under the virtual import
// paths implementations use, so loading never fails on a missing framework.
package mockenv

// Toggle is a boolean on/off option.
type Toggle struct {
	Value bool
}

// DefaultOnToggle is a Toggle whose canonical default is true.
type DefaultOnToggle struct {
	Value bool
}

// Choice is a single-selection option.
type Choice struct {
	Value string
}

// Range is a bounded numeric option. Value is expected to sit inside
// [RangeStart, RangeEnd]; the synthesizer uses the midpoint when an
// implementation declares no default.
type Range struct {
	RangeStart int
	RangeEnd   int
	Value      int
}

// PercentageRange is a numeric option bounded to 0-100.
type PercentageRange struct {
	Value int
}

// NamedRange is a numeric option with named special values in the real
// framework; here only the numeric slot matters.
type NamedRange struct {
	Value int
}

// OptionSet is a set-valued option.
type OptionSet struct {
	Value map[string]bool
}

// OptionList is a list-valued option.
type OptionList struct {
	Value []string
}

// OptionDict is a mapping-valued option.
type OptionDict struct {
	Value map[string]string
}

// Placeholder stands in for any symbol of an import we had to fabricate.
// It carries a single mutable value slot, which is all the tester ever
// needs from an unknown type.
type Placeholder struct {
	Value interface{}
}

// KindNames is the closed set of option kind names, in classification
// priority order. Compound names come before the bare names they contain
// so that e.g. DefaultOnToggle is never misread as Toggle.
var KindNames = []string{
	"DefaultOnToggle",
	"PercentageRange",
	"NamedRange",
	"OptionSet",
	"OptionList",
	"OptionDict",
	"Toggle",
	"Choice",
	"Range",
}

// IsKnownKind reports whether name is one of the fabricated option kinds.
func IsKnownKind(name string) bool {
	for _, k := range KindNames {
		if k == name {
			return true
		}
	}
	return false
}

// IsFrameworkType reports whether name is any symbol the fabricated
// environment provides (option kinds plus the base game types).
func IsFrameworkType(name string) bool {
	switch name {
	case "GameObjectiveTemplate", "Game", "Platform":
		return true
	}
	return IsKnownKind(name)
}
