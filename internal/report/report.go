// Package report renders the human-readable output of a test run: headers,
// analysis summaries, generated objectives and the interactive menu. All
// output is plain styled text to stdout; there is no machine-readable
// format.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"keeptest/internal/analysis"
	"keeptest/internal/discovery"
	"keeptest/internal/sampler"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BC34A"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5bc0de"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9aa5b1"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0ad4e"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ef4444"))

	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6a2e8"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3a4556"))
)

const ruleWidth = 60

func rule() string {
	return ruleStyle.Render(strings.Repeat("=", ruleWidth))
}

// Header renders the banner above one implementation's test output.
func Header(gameName, className, path string) string {
	var b strings.Builder
	b.WriteString(rule() + "\n")
	b.WriteString(titleStyle.Render("Testing: "+gameName) + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("  class %s  (%s)", className, path)) + "\n")
	b.WriteString(rule() + "\n")
	return b.String()
}

// Analysis renders the implementation analysis block.
func Analysis(r *analysis.Report) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Implementation analysis") + "\n")
	fmt.Fprintf(&b, "  objective templates: %d\n", r.TotalObjectives)
	if len(r.WeightHistogram) > 0 {
		fmt.Fprintf(&b, "  weights:             %s\n", r.WeightLine())
	}
	if r.TimeConsuming > 0 || r.Difficult > 0 {
		fmt.Fprintf(&b, "  flagged:             %d time-consuming, %d difficult\n",
			r.TimeConsuming, r.Difficult)
	}
	if len(r.DataSources) > 0 {
		fmt.Fprintf(&b, "  data sources:        %s\n", strings.Join(r.DataSources, ", "))
	}
	if len(r.Features) > 0 {
		fmt.Fprintf(&b, "  features:            %s\n", strings.Join(r.Features, ", "))
	}
	if len(r.Categories) > 0 {
		fmt.Fprintf(&b, "  option categories:   %s\n", strings.Join(truncateAll(r.Categories), ", "))
	}
	fmt.Fprintf(&b, "  complexity score:    %d\n", r.ComplexityScore)
	return b.String()
}

// Objectives renders one round of generated objectives.
func Objectives(round int, objectives []sampler.Objective) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Round %d", round)) + "\n")
	if len(objectives) == 0 {
		b.WriteString(warnStyle.Render("  (no objectives generated)") + "\n")
		return b.String()
	}
	for i, o := range objectives {
		var flags []string
		if o.TimeConsuming {
			flags = append(flags, "time-consuming")
		}
		if o.Difficult {
			flags = append(flags, "difficult")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = "  " + flagStyle.Render("["+strings.Join(flags, ", ")+"]")
		}
		fmt.Fprintf(&b, "  %2d. %s%s\n", i+1, o.Text, suffix)
	}
	return b.String()
}

// Listing renders the discovered implementations with their confidence
// scores, numbered for menu selection.
func Listing(candidates []discovery.Candidate) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Found %d implementation(s)", len(candidates))) + "\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "  %2d. %s %s\n", i+1, c.Name,
			labelStyle.Render(fmt.Sprintf("(confidence %d: %s)", c.Score, strings.Join(c.Matches, ", "))))
	}
	return b.String()
}

// Menu renders the interactive prompt choices.
func Menu(n int) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Choose:") + "\n")
	fmt.Fprintf(&b, "   1-%d  test one implementation\n", n)
	fmt.Fprintf(&b, "   %d   test all\n", n+1)
	fmt.Fprintf(&b, "   %d   rescan directory\n", n+2)
	b.WriteString("   0    exit\n")
	return b.String()
}

// NoImplementations renders the empty-directory message.
func NoImplementations(dir string) string {
	return warnStyle.Render("No implementations found in " + dir)
}

// Failure renders a per-implementation failure; batch runs continue past
// these.
func Failure(path string, err error) string {
	return errorStyle.Render("FAILED ") + path + ": " + err.Error()
}

// Goodbye renders the clean-exit message.
func Goodbye() string {
	return titleStyle.Render("Goodbye!")
}

// truncateAll shortens category labels for display.
func truncateAll(categories []string) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		if len(c) > 10 {
			c = c[:10] + "..."
		}
		out[i] = c
	}
	return out
}
