package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionFixture = `package darts

import (
	"keep/game"
	"keep/options"
)

type DartsArchipelagoOptions struct {
	MatchCount options.Range
	HardMode   options.Toggle
}

type DartsGame struct {
	game.Game
	Options DartsArchipelagoOptions
}

func (g *DartsGame) Name() string { return "Darts" }

func (g *DartsGame) GameObjectiveTemplates() []game.GameObjectiveTemplate {
	return []game.GameObjectiveTemplate{
		{
			Label:  "Win COUNT matches",
			Data:   map[string]interface{}{"COUNT": []int{1, 2, 3}},
			Weight: 5,
		},
		{
			Label:           "Hit a perfect checkout",
			IsDifficult:     true,
			Weight:          1,
		},
	}
}
`

// staticPlanner returns a fixed plan regardless of the scan.
type staticPlanner struct {
	plan *OptionPlan
}

func (p staticPlanner) Plan(scan *ScanResult) *OptionPlan { return p.plan }

func writeFixture(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func dartsPlan() *OptionPlan {
	return &OptionPlan{
		SchemaType: "DartsArchipelagoOptions",
		Literal: "DartsArchipelagoOptions{" +
			"MatchCount: options.Range{RangeStart: 1, RangeEnd: 20, Value: 5}, " +
			"HardMode: options.Toggle{Value: true}}",
		Fields: []PlannedField{
			{Name: "MatchCount", Kind: "Range", Category: "match count"},
			{Name: "HardMode", Kind: "Toggle", Category: "hard mode"},
		},
	}
}

func TestSessionLoadEndToEnd(t *testing.T) {
	path := writeFixture(t, "darts.go", sessionFixture)

	session, err := NewSession(staticPlanner{plan: dartsPlan()})
	require.NoError(t, err)

	impl, err := session.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Darts", impl.GameName)
	assert.Equal(t, "DartsGame", impl.ClassName)
	assert.Contains(t, impl.Package, "darts_")
	require.NotNil(t, impl.Plan)

	templates := impl.ObjectiveTemplates()
	require.Len(t, templates, 2)
	assert.Equal(t, "Win COUNT matches", templates[0].Label)
	assert.Equal(t, 5, templates[0].Weight)
	assert.True(t, templates[1].IsDifficult)
}

func TestSessionLoadSameFileTwiceIsolated(t *testing.T) {
	path := writeFixture(t, "darts.go", sessionFixture)

	first, err := NewSession(staticPlanner{plan: dartsPlan()})
	require.NoError(t, err)
	implA, err := first.Load(path)
	require.NoError(t, err)

	second, err := NewSession(staticPlanner{plan: dartsPlan()})
	require.NoError(t, err)
	implB, err := second.Load(path)
	require.NoError(t, err)

	// Distinct sessions give distinct synthetic package names, and the
	// first implementation keeps working after the second load.
	assert.NotEqual(t, implA.Package, implB.Package)
	assert.Len(t, implA.ObjectiveTemplates(), 2)
	assert.Len(t, implB.ObjectiveTemplates(), 2)
}

func TestSessionIsSingleUse(t *testing.T) {
	path := writeFixture(t, "darts.go", sessionFixture)

	session, err := NewSession(nil)
	require.NoError(t, err)

	_, err = session.Load(path)
	require.NoError(t, err)

	_, err = session.Load(path)
	assert.Error(t, err)
}

func TestSessionNoCandidate(t *testing.T) {
	path := writeFixture(t, "helper.go", "package p\n\ntype Helper struct{ Value int }\n")

	session, err := NewSession(nil)
	require.NoError(t, err)

	_, err = session.Load(path)
	assert.ErrorIs(t, err, ErrNoImplementation)
}

func TestSessionMissingFile(t *testing.T) {
	session, err := NewSession(nil)
	require.NoError(t, err)

	_, err = session.Load(filepath.Join(t.TempDir(), "absent.go"))
	assert.Error(t, err)
}

func TestSessionNoTemplatesMethod(t *testing.T) {
	src := `package p

type SoloGame struct{}

func (s *SoloGame) Name() string { return "Solo" }
`
	path := writeFixture(t, "solo.go", src)

	session, err := NewSession(nil)
	require.NoError(t, err)

	impl, err := session.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Solo", impl.GameName)
	assert.Empty(t, impl.ObjectiveTemplates())
}

func TestSessionStubbedSchemaType(t *testing.T) {
	src := `package p

type PuzzleOptions struct {
	Tracks TrackSelection
}

type PuzzleGame struct {
	Options PuzzleOptions
}

func (g *PuzzleGame) Name() string { return "Puzzle" }
`
	path := writeFixture(t, "puzzle.go", src)

	session, err := NewSession(staticPlanner{plan: &OptionPlan{
		SchemaType: "PuzzleOptions",
		Literal:    `PuzzleOptions{Tracks: TrackSelection{Value: map[string]bool{"default_selection": true}}}`,
	}})
	require.NoError(t, err)

	impl, err := session.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Puzzle", impl.GameName)

	_, ok := impl.Scan.IsStub("TrackSelection")
	assert.True(t, ok)
}

func TestSyntheticPackageName(t *testing.T) {
	name := syntheticPackageName("/tmp/x/super-darts.go", "abcdef12-3456-7890-abcd-ef1234567890")
	assert.Equal(t, "super_darts_abcdef12", name)

	name = syntheticPackageName("/tmp/9lives.go", "abcdef12-3456-7890-abcd-ef1234567890")
	assert.Equal(t, "impl_9lives_abcdef12", name)
}

func TestAssembleProgramContainsGlue(t *testing.T) {
	scan, err := Scan("darts.go", []byte(sessionFixture))
	require.NoError(t, err)

	program := assembleProgram(scan, dartsPlan())
	assert.Contains(t, program, "package main")
	assert.Contains(t, program, "var "+glueGameVar+" = &DartsGame{Options: DartsArchipelagoOptions{")
	assert.Contains(t, program, "func "+glueNameFunc+"() string { return "+glueGameVar+".Name() }")
	assert.Contains(t, program, "func "+glueObjectiveFunc+"() interface{} { return "+glueGameVar+".GameObjectiveTemplates() }")
}
