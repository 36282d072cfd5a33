// Package analysis computes descriptive statistics over a loaded
// implementation: template counts, a weight histogram, heuristic feature
// tags, distinct data-source identifiers and a composite complexity score.
// Analysis is independent of sampling and fully defensive; a broken
// template or attribute never aborts the report.
package analysis

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"keeptest/internal/loader"
	"keeptest/internal/logging"
	"keeptest/internal/mockenv"
)

// Feature keywords matched against public attribute names. The match is an
// approximate signal: an attribute mentioning a keyword suggests the
// implementation models that concept, nothing stronger.
var featureKeywords = []string{"relationship", "preferred", "difficulty", "cursed"}

// Report is the analysis of one loaded implementation.
type Report struct {
	TotalObjectives int
	WeightHistogram map[int]int
	Features        []string // sorted distinct feature tags
	DataSources     []string // sorted distinct data-source identifiers
	Categories      []string // distinct option categories in schema order
	TimeConsuming   int
	Difficult       int
	ComplexityScore int
}

// Analyze builds the report for one implementation from its templates, the
// scan's structural facts and the synthesized option plan. Any of the three
// may be nil or empty; the report degrades instead of failing.
func Analyze(templates []mockenv.GameObjectiveTemplate, scan *loader.ScanResult, plan *loader.OptionPlan) *Report {
	r := &Report{
		TotalObjectives: len(templates),
		WeightHistogram: map[int]int{},
	}

	sources := map[string]bool{}
	for _, t := range templates {
		w := t.Weight
		if w < 1 {
			w = 1
		}
		r.WeightHistogram[w]++
		if t.IsTimeConsuming {
			r.TimeConsuming++
		}
		if t.IsDifficult {
			r.Difficult++
		}
		for _, source := range t.Data {
			if id := sourceIdentity(source); id != "" {
				sources[id] = true
			}
		}
	}
	for id := range sources {
		r.DataSources = append(r.DataSources, id)
	}
	sort.Strings(r.DataSources)

	features := map[string]bool{}
	if scan != nil && scan.Candidate != nil {
		names := append([]string{}, scan.Candidate.FieldNames...)
		names = append(names, scan.Candidate.MethodNames...)
		for _, name := range names {
			lower := strings.ToLower(name)
			for _, kw := range featureKeywords {
				if strings.Contains(lower, kw) {
					features[kw] = true
				}
			}
		}
	}
	for f := range features {
		r.Features = append(r.Features, f)
	}
	sort.Strings(r.Features)

	if plan != nil {
		seen := map[string]bool{}
		for _, f := range plan.Fields {
			if f.Category == "" || seen[f.Category] {
				continue
			}
			seen[f.Category] = true
			r.Categories = append(r.Categories, f.Category)
		}
	}

	r.ComplexityScore = r.TotalObjectives +
		2*len(r.DataSources) +
		3*len(r.Features) +
		len(r.Categories)

	logging.Analysis("analyzed %d templates: %d sources, %d features, %d categories, complexity %d",
		r.TotalObjectives, len(r.DataSources), len(r.Features), len(r.Categories), r.ComplexityScore)

	return r
}

// sourceIdentity names one data source: the function name for callables,
// otherwise the runtime type name. Anonymous interpreter closures all
// report the same frame name, so the type signature is appended to keep
// distinct shapes distinct.
func sourceIdentity(source interface{}) (id string) {
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if source == nil {
		return ""
	}
	v := reflect.ValueOf(source)
	if v.Kind() == reflect.Func {
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			name := fn.Name()
			if i := strings.LastIndex(name, "/"); i >= 0 {
				name = name[i+1:]
			}
			if !strings.Contains(name, "func") {
				return name
			}
			return name + " " + v.Type().String()
		}
		return v.Type().String()
	}
	return fmt.Sprintf("%T", source)
}

// WeightLine renders the histogram as "w1:n1 w2:n2" in ascending weight
// order for the report output.
func (r *Report) WeightLine() string {
	weights := make([]int, 0, len(r.WeightHistogram))
	for w := range r.WeightHistogram {
		weights = append(weights, w)
	}
	sort.Ints(weights)
	parts := make([]string, 0, len(weights))
	for _, w := range weights {
		parts = append(parts, fmt.Sprintf("%dx weight %d", r.WeightHistogram[w], w))
	}
	return strings.Join(parts, ", ")
}
