package loader

// PlannedField is one synthesized configuration field: the composite
// literal value the glue code will evaluate, plus reporting metadata.
type PlannedField struct {
	Name     string
	TypeName string // resolved type name
	Kind     string // option kind label
	Value    string // rendered Go composite literal
	Category string // humanized label for the analysis report
	Warning  string // non-empty when synthesis fell back to a safe default
}

// OptionPlan is a fully synthesized default configuration for one schema:
// every field has a concrete value and the whole schema renders to a single
// composite literal.
type OptionPlan struct {
	SchemaType string
	Literal    string
	Fields     []PlannedField
}

// Planner produces an OptionPlan from a scan, or nil when the candidate
// declares no schema. Synthesis must never fail; unresolvable fields get a
// safe default and a warning on the field.
type Planner interface {
	Plan(scan *ScanResult) *OptionPlan
}
