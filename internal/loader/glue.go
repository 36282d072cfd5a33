package loader

import (
	"fmt"
	"strings"
)

// Entry point names evaluated out of the session after the program runs.
const (
	glueGameVar       = "__keeptest_game"
	glueNameFunc      = "__keeptest_name"
	glueObjectiveFunc = "__keeptest_objectives"
)

// assembleProgram builds the single source unit the session evaluates: the
// implementation rewritten into package main, the synthesized placeholder
// types, and the glue that instantiates the candidate with the planned
// configuration and exposes typed entry points.
func assembleProgram(scan *ScanResult, plan *OptionPlan) string {
	var b strings.Builder
	b.WriteString(scan.SourceAsMain())
	b.WriteString("\n\n")

	for _, st := range scan.Stubs {
		b.WriteString(st.TypeSource())
		b.WriteString("\n")
	}

	b.WriteString(glueSource(scan, plan))
	return b.String()
}

func glueSource(scan *ScanResult, plan *OptionPlan) string {
	c := scan.Candidate
	var b strings.Builder

	if plan != nil && c.OptionsField != "" {
		fmt.Fprintf(&b, "var %s = &%s{%s: %s}\n", glueGameVar, c.Name, c.OptionsField, plan.Literal)
	} else {
		fmt.Fprintf(&b, "var %s = &%s{}\n", glueGameVar, c.Name)
	}

	switch {
	case c.HasNameMethod:
		fmt.Fprintf(&b, "func %s() string { return %s.Name() }\n", glueNameFunc, glueGameVar)
	case c.HasNameField:
		fmt.Fprintf(&b, "func %s() string { return %s.Name }\n", glueNameFunc, glueGameVar)
	default:
		fmt.Fprintf(&b, "func %s() string { return %q }\n", glueNameFunc, c.Name)
	}

	if c.HasTemplatesMethod {
		fmt.Fprintf(&b, "func %s() interface{} { return %s.GameObjectiveTemplates() }\n",
			glueObjectiveFunc, glueGameVar)
	} else {
		fmt.Fprintf(&b, "func %s() interface{} { return nil }\n", glueObjectiveFunc)
	}

	return b.String()
}
