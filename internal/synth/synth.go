// Package synth turns a scanned configuration schema into a fully populated
// default configuration. Synthesis never fails: every field resolves to a
// concrete composite literal, falling back to a safe zero form with a
// warning when a type cannot be understood.
package synth

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"keeptest/internal/loader"
	"keeptest/internal/logging"
	"keeptest/internal/mockenv"
)

// Synthesizer plans default configurations from scan results. It is
// stateless and safe to share across sessions.
type Synthesizer struct{}

// New returns a Synthesizer.
func New() *Synthesizer {
	return &Synthesizer{}
}

// resolution is the outcome of chasing one schema field's type down to a
// framework option kind, builtin, stub or opaque type.
type resolution struct {
	Kind      string // framework kind name, "builtin", "stub" or "opaque"
	Builtin   string // builtin type name when Kind == "builtin"
	Stub      loader.Stub
	EmbedName string // embedded field name when the kind comes via embedding
	EmbedType string // verbatim embedded type expression
	Warning   string
}

// Plan synthesizes the default configuration for the candidate's schema.
// Returns nil when the candidate declares no schema struct.
func (sy *Synthesizer) Plan(scan *loader.ScanResult) *loader.OptionPlan {
	if scan.Candidate == nil || scan.Candidate.SchemaType == "" {
		return nil
	}

	plan := &loader.OptionPlan{SchemaType: scan.Candidate.SchemaType}

	var b strings.Builder
	b.WriteString(scan.Candidate.SchemaType)
	b.WriteString("{\n")
	for _, f := range scan.Schema {
		pf := sy.planField(scan, f)
		plan.Fields = append(plan.Fields, pf)
		fmt.Fprintf(&b, "\t%s: %s,\n", pf.Name, pf.Value)
		if pf.Warning != "" {
			logging.SynthWarn("%s.%s: %s", scan.Candidate.SchemaType, pf.Name, pf.Warning)
		}
	}
	b.WriteString("}")
	plan.Literal = b.String()

	logging.Synth("%s: planned %d option fields for schema %s",
		scan.Path, len(plan.Fields), plan.SchemaType)

	return plan
}

func (sy *Synthesizer) planField(scan *loader.ScanResult, f loader.Field) loader.PlannedField {
	res := resolve(scan, f.TypeName, f.Qualifier, 0)

	pf := loader.PlannedField{
		Name:     f.Name,
		TypeName: f.TypeName,
		Category: humanize(f.Name),
		Warning:  res.Warning,
	}

	switch res.Kind {
	case "builtin":
		pf.Kind = res.Builtin
		pf.Value = builtinLiteral(res.Builtin, f.Tag)
	case "stub":
		pf.Kind = res.Stub.Flavor.String()
		pf.Value = res.Stub.DefaultLiteral()
	case "opaque":
		pf.Kind = "unknown"
		pf.Value = f.TypeName + "{}"
	default:
		pf.Kind = res.Kind
		body := kindBody(res.Kind, f.Tag)
		if res.EmbedName != "" {
			pf.Value = fmt.Sprintf("%s{%s: %s{%s}}", f.TypeName, res.EmbedName, res.EmbedType, body)
		} else {
			pf.Value = fmt.Sprintf("%s{%s}", f.TypeName, body)
		}
	}
	return pf
}

// resolve chases a type name to something synthesis understands. Local
// aliases and defined types follow their underlying type; local structs
// embedding a framework kind adopt that kind. The depth cap guards against
// declaration cycles.
func resolve(scan *loader.ScanResult, typeName, qualifier string, depth int) resolution {
	if depth > 8 {
		return resolution{Kind: "opaque", Warning: "type resolution too deep, using zero value"}
	}

	base := typeName
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		base = typeName[i+1:]
		if qualifier == "" {
			qualifier = typeName[:i]
		}
	}

	if qualifier != "" {
		if mockenv.KnownImport(scan.Imports[qualifier]) && mockenv.IsKnownKind(base) {
			return resolution{Kind: base}
		}
		return resolution{Kind: "opaque",
			Warning: fmt.Sprintf("unrecognized option type %s, using zero value", typeName)}
	}

	if mockenv.IsKnownKind(base) {
		return resolution{Kind: base}
	}
	if isBuiltin(base) {
		return resolution{Kind: "builtin", Builtin: base}
	}
	if st, ok := scan.IsStub(base); ok {
		return resolution{Kind: "stub", Stub: st}
	}

	td, ok := scan.Types[base]
	if !ok {
		return resolution{Kind: "opaque",
			Warning: fmt.Sprintf("undeclared option type %s, using zero value", typeName)}
	}

	switch td.Form {
	case loader.FormAlias, loader.FormDefined:
		inner := resolve(scan, td.Underlying, "", depth+1)
		// Defined types keep the outer name in the literal; the field shape
		// carries over from the underlying kind.
		return inner
	case loader.FormStruct:
		for _, embed := range td.Embeds {
			ebase := embed
			if i := strings.LastIndex(embed, "."); i >= 0 {
				ebase = embed[i+1:]
			}
			if mockenv.IsKnownKind(ebase) {
				return resolution{Kind: ebase, EmbedName: ebase, EmbedType: embed}
			}
		}
		return resolution{Kind: "opaque",
			Warning: fmt.Sprintf("option type %s has no recognizable kind, using zero value", typeName)}
	}
	return resolution{Kind: "opaque",
		Warning: fmt.Sprintf("option type %s has no recognizable kind, using zero value", typeName)}
}

// kindBody renders the field list inside a kind's composite literal,
// honoring the schema struct tags when present.
func kindBody(kind string, tag reflect.StructTag) string {
	switch kind {
	case "Toggle", "DefaultOnToggle":
		v := true
		if d, ok := tag.Lookup("default"); ok {
			if parsed, err := strconv.ParseBool(d); err == nil {
				v = parsed
			}
		}
		return fmt.Sprintf("Value: %v", v)

	case "Choice":
		v := "default"
		if choices := tagList(tag, "choices"); len(choices) > 0 {
			v = choices[0]
		}
		if d, ok := tag.Lookup("default"); ok {
			v = d
		}
		return fmt.Sprintf("Value: %q", v)

	case "Range":
		lo, hi := 0, 100
		if bounds := tagList(tag, "range"); len(bounds) == 2 {
			if a, err := strconv.Atoi(bounds[0]); err == nil {
				lo = a
			}
			if b, err := strconv.Atoi(bounds[1]); err == nil {
				hi = b
			}
		}
		v := (lo + hi) / 2
		if d, ok := tag.Lookup("default"); ok {
			if parsed, err := strconv.Atoi(d); err == nil {
				v = parsed
			}
		}
		return fmt.Sprintf("RangeStart: %d, RangeEnd: %d, Value: %d", lo, hi, v)

	case "PercentageRange":
		v := 50
		if d, ok := tag.Lookup("default"); ok {
			if parsed, err := strconv.Atoi(d); err == nil {
				v = parsed
			}
		}
		return fmt.Sprintf("Value: %d", v)

	case "NamedRange":
		v := 1
		if d, ok := tag.Lookup("default"); ok {
			if parsed, err := strconv.Atoi(d); err == nil {
				v = parsed
			}
		}
		return fmt.Sprintf("Value: %d", v)

	case "OptionSet":
		choices := tagList(tag, "choices")
		if len(choices) == 0 {
			choices = []string{"default"}
		}
		var b strings.Builder
		b.WriteString("Value: map[string]bool{")
		for i, c := range choices {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q: true", c)
		}
		b.WriteString("}")
		return b.String()

	case "OptionList":
		choices := tagList(tag, "choices")
		if len(choices) == 0 {
			choices = []string{"default"}
		}
		var b strings.Builder
		b.WriteString("Value: []string{")
		for i, c := range choices {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q", c)
		}
		b.WriteString("}")
		return b.String()

	case "OptionDict":
		return "Value: map[string]string{}"
	}
	return ""
}

func builtinLiteral(name string, tag reflect.StructTag) string {
	d, hasDefault := tag.Lookup("default")
	switch name {
	case "bool":
		if hasDefault {
			if v, err := strconv.ParseBool(d); err == nil {
				return fmt.Sprintf("%v", v)
			}
		}
		return "true"
	case "string":
		if hasDefault {
			return strconv.Quote(d)
		}
		return `"default"`
	default:
		if hasDefault {
			if _, err := strconv.Atoi(d); err == nil {
				return d
			}
		}
		return "0"
	}
}

func tagList(tag reflect.StructTag, key string) []string {
	raw, ok := tag.Lookup(key)
	if !ok || raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isBuiltin(name string) bool {
	switch name {
	case "bool", "string", "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64", "byte", "rune":
		return true
	}
	return false
}

// humanize converts a CamelCase field name into a lower-case phrase for
// report labels, e.g. MatchCountRange -> "match count range".
func humanize(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteRune(' ')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
