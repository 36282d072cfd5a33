package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keeptest/internal/loader"
)

func scanSource(t *testing.T, src string) *loader.ScanResult {
	t.Helper()
	scan, err := loader.Scan("fixture.go", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, scan.Candidate)
	return scan
}

func planFor(t *testing.T, src string) *loader.OptionPlan {
	t.Helper()
	plan := New().Plan(scanSource(t, src))
	require.NotNil(t, plan)
	return plan
}

func fieldByName(t *testing.T, plan *loader.OptionPlan, name string) loader.PlannedField {
	t.Helper()
	for _, f := range plan.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no planned field %q", name)
	return loader.PlannedField{}
}

func TestPlanNilWithoutSchema(t *testing.T) {
	scan, err := loader.Scan("fixture.go", []byte(`package p

type SoloGame struct{}

func (s *SoloGame) Name() string { return "Solo" }
`))
	require.NoError(t, err)
	assert.Nil(t, New().Plan(scan))
}

func TestPlanDeclaredRangeDefault(t *testing.T) {
	// Bounds [0,100] with a declared default of 42 must synthesize exactly 42.
	plan := planFor(t, `package p

import "keep/options"

type TestOptions struct {
	Score options.Range `+"`range:\"0,100\" default:\"42\"`"+`
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	f := fieldByName(t, plan, "Score")
	assert.Equal(t, "Range", f.Kind)
	assert.Equal(t, "options.Range{RangeStart: 0, RangeEnd: 100, Value: 42}", f.Value)
}

func TestPlanRangeMidpointWithoutDefault(t *testing.T) {
	plan := planFor(t, `package p

import "keep/options"

type TestOptions struct {
	Count options.Range `+"`range:\"10,20\"`"+`
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	f := fieldByName(t, plan, "Count")
	assert.Equal(t, "options.Range{RangeStart: 10, RangeEnd: 20, Value: 15}", f.Value)
}

func TestPlanKindDefaults(t *testing.T) {
	plan := planFor(t, `package p

import "keep/options"

type TestOptions struct {
	Hard      options.Toggle
	AutoSave  options.DefaultOnToggle
	Mode      options.Choice `+"`choices:\"classic,arcade\"`"+`
	Percent   options.PercentageRange
	Lives     options.NamedRange
	Tracks    options.OptionSet `+"`choices:\"forest,cave\"`"+`
	Order     options.OptionList
	Mapping   options.OptionDict
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	assert.Equal(t, "options.Toggle{Value: true}", fieldByName(t, plan, "Hard").Value)
	assert.Equal(t, "options.DefaultOnToggle{Value: true}", fieldByName(t, plan, "AutoSave").Value)
	assert.Equal(t, `options.Choice{Value: "classic"}`, fieldByName(t, plan, "Mode").Value)
	assert.Equal(t, "options.PercentageRange{Value: 50}", fieldByName(t, plan, "Percent").Value)
	assert.Equal(t, "options.NamedRange{Value: 1}", fieldByName(t, plan, "Lives").Value)
	assert.Equal(t, `options.OptionSet{Value: map[string]bool{"forest": true, "cave": true}}`, fieldByName(t, plan, "Tracks").Value)
	assert.Equal(t, `options.OptionList{Value: []string{"default"}}`, fieldByName(t, plan, "Order").Value)
	assert.Equal(t, "options.OptionDict{Value: map[string]string{}}", fieldByName(t, plan, "Mapping").Value)
}

func TestPlanLocalDefinedType(t *testing.T) {
	// A local type defined over a framework kind keeps its own name in the
	// literal but inherits the kind's field shape.
	plan := planFor(t, `package p

import "keep/options"

type MatchCount options.Range

type TestOptions struct {
	Matches MatchCount `+"`range:\"1,9\" default:\"3\"`"+`
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	f := fieldByName(t, plan, "Matches")
	assert.Equal(t, "Range", f.Kind)
	assert.Equal(t, "MatchCount{RangeStart: 1, RangeEnd: 9, Value: 3}", f.Value)
}

func TestPlanEmbeddedKind(t *testing.T) {
	plan := planFor(t, `package p

import "keep/options"

type DifficultyChoice struct {
	options.Choice
}

type TestOptions struct {
	Difficulty DifficultyChoice `+"`default:\"brutal\"`"+`
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	f := fieldByName(t, plan, "Difficulty")
	assert.Equal(t, "Choice", f.Kind)
	assert.Equal(t, `DifficultyChoice{Choice: options.Choice{Value: "brutal"}}`, f.Value)
}

func TestPlanStubbedField(t *testing.T) {
	plan := planFor(t, `package p

type TestOptions struct {
	Tracks TrackSelection
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	f := fieldByName(t, plan, "Tracks")
	assert.Equal(t, "set", f.Kind)
	assert.Equal(t, `TrackSelection{Value: map[string]bool{"default_selection": true}}`, f.Value)
}

func TestPlanOpaqueFallsBackWithWarning(t *testing.T) {
	plan := planFor(t, `package p

import "github.com/example/ext"

type TestOptions struct {
	Widget ext.Widget
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	f := fieldByName(t, plan, "Widget")
	assert.Equal(t, "unknown", f.Kind)
	assert.Equal(t, "ext.Widget{}", f.Value)
	assert.NotEmpty(t, f.Warning)
}

func TestPlanBuiltinFields(t *testing.T) {
	plan := planFor(t, `package p

type TestOptions struct {
	Label   string
	Rounds  int `+"`default:\"4\"`"+`
	Enabled bool
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	assert.Equal(t, `"default"`, fieldByName(t, plan, "Label").Value)
	assert.Equal(t, "4", fieldByName(t, plan, "Rounds").Value)
	assert.Equal(t, "true", fieldByName(t, plan, "Enabled").Value)
}

func TestPlanLiteralShape(t *testing.T) {
	plan := planFor(t, `package p

import "keep/options"

type TestOptions struct {
	Hard options.Toggle
}

type TestGame struct {
	Options TestOptions
}

func (g *TestGame) Name() string { return "Test" }
`)

	assert.Equal(t, "TestOptions{\n\tHard: options.Toggle{Value: true},\n}", plan.Literal)
	assert.Equal(t, "TestOptions", plan.SchemaType)
}

func TestHumanize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"MatchCount", "match count"},
		{"HardMode", "hard mode"},
		{"HTTPTimeout", "http timeout"},
		{"X", "x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanize(tt.in), tt.in)
	}
}
