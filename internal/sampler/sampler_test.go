package sampler

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keeptest/internal/mockenv"
)

func fixedSampler(seed int64) *Sampler {
	return New(rand.New(rand.NewSource(seed)))
}

func TestBuildPoolWeightMultiplicity(t *testing.T) {
	templates := []mockenv.GameObjectiveTemplate{
		{Label: "a", Weight: 5},
		{Label: "b", Weight: 1},
		{Label: "c", Weight: 0},
		{Label: "d", Weight: -3},
	}

	pool := BuildPool(templates)

	counts := map[int]int{}
	for _, idx := range pool {
		counts[idx]++
	}
	want := map[int]int{0: 5, 1: 1, 2: 1, 3: 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("pool multiplicity mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, pool, 8)
}

func TestGenerateSubstitutesPlaceholders(t *testing.T) {
	templates := []mockenv.GameObjectiveTemplate{
		{
			Label:  "Win COUNT matches",
			Data:   map[string]interface{}{"COUNT": []int{1, 2, 3}},
			Weight: 5,
		},
	}

	s := fixedSampler(1)
	objectives := s.Generate(templates, 10)
	require.NotEmpty(t, objectives)

	allowed := map[string]bool{
		"Win 1 matches": true,
		"Win 2 matches": true,
		"Win 3 matches": true,
	}
	for _, o := range objectives {
		assert.True(t, allowed[o.Text], "unexpected label %q", o.Text)
		assert.NotContains(t, o.Text, "COUNT", "placeholder must never survive")
	}
}

func TestGenerateCallableSource(t *testing.T) {
	calls := 0
	templates := []mockenv.GameObjectiveTemplate{
		{
			Label: "Collect N gems",
			Data: map[string]interface{}{
				"N": func() []string { calls++; return []string{"7"} },
			},
			Weight: 1,
		},
	}

	s := fixedSampler(2)
	objectives := s.Generate(templates, 3)
	require.Len(t, objectives, 3)
	for _, o := range objectives {
		assert.Equal(t, "Collect 7 gems", o.Text)
	}
	// Re-evaluated each draw, never cached.
	assert.Equal(t, 3, calls)
}

func TestGenerateRangeSource(t *testing.T) {
	templates := []mockenv.GameObjectiveTemplate{
		{
			Label:  "Score PTS points",
			Data:   map[string]interface{}{"PTS": mockenv.Range{RangeStart: 10, RangeEnd: 12}},
			Weight: 1,
		},
	}

	s := fixedSampler(3)
	objectives := s.Generate(templates, 20)
	require.NotEmpty(t, objectives)

	for _, o := range objectives {
		switch o.Text {
		case "Score 10 points", "Score 11 points", "Score 12 points":
		default:
			t.Errorf("value outside range bounds: %q", o.Text)
		}
	}
}

func TestGenerateEmptySourceDropsTemplate(t *testing.T) {
	templates := []mockenv.GameObjectiveTemplate{
		{
			Label:  "Impossible X",
			Data:   map[string]interface{}{"X": []string{}},
			Weight: 1,
		},
	}

	s := fixedSampler(4)
	objectives := s.Generate(templates, 5)
	assert.Empty(t, objectives, "empty data source must drop the template, not emit partial labels")
}

func TestGenerateAttemptBudgetTerminates(t *testing.T) {
	// A mix of one broken and one working template still terminates and
	// only emits fully substituted labels.
	templates := []mockenv.GameObjectiveTemplate{
		{Label: "Broken X", Data: map[string]interface{}{"X": []int{}}, Weight: 10},
		{Label: "Fine", Weight: 1},
	}

	s := fixedSampler(5)
	objectives := s.Generate(templates, 4)
	for _, o := range objectives {
		assert.Equal(t, "Fine", o.Text)
	}
}

func TestGenerateEmptyTemplates(t *testing.T) {
	s := fixedSampler(6)
	assert.Nil(t, s.Generate(nil, 5))
	assert.Nil(t, s.Generate([]mockenv.GameObjectiveTemplate{{Label: "x"}}, 0))
}

func TestGenerateCarriesFlags(t *testing.T) {
	templates := []mockenv.GameObjectiveTemplate{
		{Label: "Grind", IsTimeConsuming: true, IsDifficult: true, Weight: 1},
	}

	s := fixedSampler(7)
	objectives := s.Generate(templates, 1)
	require.Len(t, objectives, 1)
	assert.True(t, objectives[0].TimeConsuming)
	assert.True(t, objectives[0].Difficult)
	assert.Equal(t, 1, objectives[0].Weight)
	assert.Equal(t, 0, objectives[0].DataComplexity)
	assert.Equal(t, 0, objectives[0].TemplateIndex)
}

func TestGenerateDiversityAcrossTemplates(t *testing.T) {
	templates := []mockenv.GameObjectiveTemplate{
		{Label: "alpha", Weight: 1},
		{Label: "beta", Weight: 1},
		{Label: "gamma", Weight: 1},
		{Label: "delta", Weight: 1},
	}

	s := fixedSampler(8)
	objectives := s.Generate(templates, 12)
	require.NotEmpty(t, objectives)

	seen := map[string]bool{}
	for _, o := range objectives {
		seen[o.Text] = true
	}
	// With equal weights and many draws the recently-used preference
	// should touch more than one template.
	assert.Greater(t, len(seen), 1)
}

func TestGeneratePanickingSourceIsIsolated(t *testing.T) {
	templates := []mockenv.GameObjectiveTemplate{
		{
			Label:  "Doom X",
			Data:   map[string]interface{}{"X": func() []string { panic("boom") }},
			Weight: 1,
		},
		{Label: "Safe", Weight: 1},
	}

	s := fixedSampler(9)
	objectives := s.Generate(templates, 4)
	for _, o := range objectives {
		assert.Equal(t, "Safe", o.Text)
	}
}

func TestEvaluateSourceScalars(t *testing.T) {
	s := fixedSampler(10)

	v, ok := s.evaluateSource("hello")
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	v, ok = s.evaluateSource(42)
	require.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = s.evaluateSource(nil)
	assert.False(t, ok)

	v, ok = s.evaluateSource(map[string]bool{"only": true})
	require.True(t, ok)
	assert.Equal(t, "only", v)
}

func TestMultiplePlaceholders(t *testing.T) {
	templates := []mockenv.GameObjectiveTemplate{
		{
			Label: "Beat BOSS using WEAPON",
			Data: map[string]interface{}{
				"BOSS":   []string{"Dragon"},
				"WEAPON": []string{"Spear"},
			},
			Weight: 1,
		},
	}

	s := fixedSampler(11)
	objectives := s.Generate(templates, 1)
	require.Len(t, objectives, 1)
	assert.Equal(t, "Beat Dragon using Spear", objectives[0].Text)
	assert.Equal(t, 2, objectives[0].DataComplexity)
	assert.False(t, strings.ContainsAny(objectives[0].Text, "{}"),
		"no placeholder artifacts")
}
