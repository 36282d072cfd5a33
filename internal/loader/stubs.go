package loader

import (
	"fmt"
	"strings"
)

// StubFlavor determines a synthesized placeholder type's value slot and
// constructor default.
type StubFlavor int

const (
	StubSet     StubFlavor = iota // set-valued, singleton default
	StubNumeric                   // numeric, mid-range default
	StubToggle                    // boolean, true default
)

func (f StubFlavor) String() string {
	switch f {
	case StubNumeric:
		return "numeric"
	case StubToggle:
		return "toggle"
	default:
		return "set"
	}
}

// Stub is a minimal placeholder type synthesized for an unresolved schema
// type: a struct carrying a single mutable value slot.
type Stub struct {
	Name       string
	Flavor     StubFlavor
	DefaultKey string // member placed in set-flavored defaults
}

// classifyStub picks a flavor by ordered substring match against the type
// name, mirroring how implementations conventionally name their option
// types.
func classifyStub(name string) Stub {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "selection"):
		return Stub{Name: name, Flavor: StubSet, DefaultKey: "default_selection"}
	case strings.Contains(lower, "actions"):
		return Stub{Name: name, Flavor: StubSet, DefaultKey: "default_action"}
	case strings.Contains(lower, "range"):
		return Stub{Name: name, Flavor: StubNumeric}
	case strings.Contains(lower, "toggle"):
		return Stub{Name: name, Flavor: StubToggle}
	default:
		return Stub{Name: name, Flavor: StubSet, DefaultKey: "default"}
	}
}

func (st Stub) valueType() string {
	switch st.Flavor {
	case StubNumeric:
		return "int"
	case StubToggle:
		return "bool"
	default:
		return "map[string]bool"
	}
}

// TypeSource renders the placeholder type declaration evaluated alongside
// the implementation so its references resolve.
func (st Stub) TypeSource() string {
	return fmt.Sprintf("type %s struct{ Value %s }", st.Name, st.valueType())
}

// DefaultLiteral renders the constructor default for the flavor.
func (st Stub) DefaultLiteral() string {
	switch st.Flavor {
	case StubNumeric:
		return fmt.Sprintf("%s{Value: 50}", st.Name)
	case StubToggle:
		return fmt.Sprintf("%s{Value: true}", st.Name)
	default:
		return fmt.Sprintf("%s{Value: map[string]bool{%q: true}}", st.Name, st.DefaultKey)
	}
}
