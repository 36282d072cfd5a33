// Package sampler generates concrete objectives from an implementation's
// weighted objective templates. Template weight controls selection
// frequency, placeholder data sources are evaluated per draw, and a bounded
// attempt budget keeps generation terminating even when most templates
// cannot produce output.
package sampler

import (
	"fmt"
	"math/rand"
	"reflect"
	"strings"

	"keeptest/internal/logging"
	"keeptest/internal/mockenv"
)

// Objective is one generated objective: the template label with every
// placeholder substituted. DataComplexity counts the distinct placeholders
// the template declared.
type Objective struct {
	Text           string
	Weight         int
	TimeConsuming  bool
	Difficult      bool
	DataComplexity int
	TemplateIndex  int
}

// Sampler draws objectives from template pools. The random source is
// injected so tests can pin sequences.
type Sampler struct {
	rng *rand.Rand
}

// New returns a Sampler over the given random source. A nil source gets a
// time-seeded one.
func New(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Sampler{rng: rng}
}

// BuildPool expands templates into a selection pool where each template
// index appears max(weight, 1) times. Non-positive weights still get one
// slot so every template stays reachable.
func BuildPool(templates []mockenv.GameObjectiveTemplate) []int {
	var pool []int
	for i, t := range templates {
		w := t.Weight
		if w < 1 {
			w = 1
		}
		for n := 0; n < w; n++ {
			pool = append(pool, i)
		}
	}
	return pool
}

// Generate draws up to count objectives. It may return fewer when the
// attempt budget (count times ten) runs out, which happens when templates
// keep failing to evaluate. Immediate repeats are avoided while enough
// distinct templates remain, and the recently-used set resets once it
// covers min(len(templates), count/2) templates.
func (s *Sampler) Generate(templates []mockenv.GameObjectiveTemplate, count int) []Objective {
	if len(templates) == 0 || count <= 0 {
		return nil
	}

	pool := BuildPool(templates)
	used := map[int]bool{}
	resetAt := len(templates)
	if count/2 < resetAt {
		resetAt = count / 2
	}

	var out []Objective
	maxAttempts := count * 10
	for attempt := 0; attempt < maxAttempts && len(out) < count; attempt++ {
		idx := pool[s.rng.Intn(len(pool))]

		if used[idx] && len(used) < len(templates) {
			continue
		}

		obj, ok := s.instantiate(templates[idx], idx)
		if !ok {
			logging.SamplerDebug("template %d (%q) produced no objective", idx, templates[idx].Label)
			continue
		}

		out = append(out, obj)
		used[idx] = true
		if len(used) >= resetAt {
			used = map[int]bool{}
		}
	}

	if len(out) < count {
		logging.Sampler("attempt budget exhausted: generated %d of %d objectives", len(out), count)
	}
	return out
}

// instantiate substitutes every data source of one template into its label.
// Any source that evaluates to nothing aborts this draw.
func (s *Sampler) instantiate(t mockenv.GameObjectiveTemplate, idx int) (Objective, bool) {
	text := t.Label
	for key, source := range t.Data {
		value, ok := s.evaluateSource(source)
		if !ok {
			return Objective{}, false
		}
		text = strings.ReplaceAll(text, key, value)
	}
	w := t.Weight
	if w < 1 {
		w = 1
	}
	return Objective{
		Text:           text,
		Weight:         w,
		TimeConsuming:  t.IsTimeConsuming,
		Difficult:      t.IsDifficult,
		DataComplexity: len(t.Data),
		TemplateIndex:  idx,
	}, true
}

// evaluateSource turns one data source into a concrete string. Functions
// are called first (panics abort the draw), then collections yield a random
// element, ranges a random value inside their bounds, and scalars format
// directly. Empty collections yield nothing.
func (s *Sampler) evaluateSource(source interface{}) (value string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.SamplerDebug("data source panicked: %v", r)
			value, ok = "", false
		}
	}()
	return s.evaluate(source, 0)
}

func (s *Sampler) evaluate(source interface{}, depth int) (string, bool) {
	if source == nil || depth > 4 {
		return "", false
	}

	if r, isRange := source.(mockenv.Range); isRange {
		if r.RangeEnd < r.RangeStart {
			return "", false
		}
		return fmt.Sprintf("%d", r.RangeStart+s.rng.Intn(r.RangeEnd-r.RangeStart+1)), true
	}

	v := reflect.ValueOf(source)
	switch v.Kind() {
	case reflect.Func:
		if v.Type().NumIn() != 0 || v.Type().NumOut() == 0 {
			return "", false
		}
		results := v.Call(nil)
		return s.evaluate(results[0].Interface(), depth+1)

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "", false
		}
		return s.evaluate(v.Index(s.rng.Intn(v.Len())).Interface(), depth+1)

	case reflect.Map:
		keys := v.MapKeys()
		if len(keys) == 0 {
			return "", false
		}
		return s.evaluate(keys[s.rng.Intn(len(keys))].Interface(), depth+1)

	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return "", false
		}
		return s.evaluate(v.Elem().Interface(), depth+1)

	case reflect.String:
		return v.String(), true

	default:
		return fmt.Sprint(source), true
	}
}
