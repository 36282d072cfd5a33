// Package discovery locates implementation files by heuristic pattern
// scoring and watches directories for changes to them. A file qualifies
// when enough independent signals match; the threshold is configurable so
// unusual layouts can lower it.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"keeptest/internal/logging"
)

// signal is one heuristic pattern with the label reported when it matches.
type signal struct {
	label   string
	pattern *regexp.Regexp
}

var signals = []signal{
	{"game type", regexp.MustCompile(`type\s+\w*Game\s+struct`)},
	{"objective templates", regexp.MustCompile(`GameObjectiveTemplate`)},
	{"options schema", regexp.MustCompile(`ArchipelagoOptions|\bOptions\s+\w*Options\b`)},
	{"framework import", regexp.MustCompile(`"(keep|keymasters_keep)/[^"]*"`)},
	{"template method", regexp.MustCompile(`func\s*\([^)]+\)\s*GameObjectiveTemplates\s*\(`)},
	{"option kinds", regexp.MustCompile(`options\.(Toggle|Choice|Range|OptionSet|OptionList|OptionDict|DefaultOnToggle|PercentageRange|NamedRange)`)},
}

// Candidate is one discovered implementation file with its confidence
// score and the signals that matched.
type Candidate struct {
	Path    string
	Name    string // basename without extension
	Score   int
	Matches []string
}

// Scanner discovers implementation files in a directory.
type Scanner struct {
	MinConfidence int
	ExcludeGlobs  []string
}

// NewScanner returns a scanner with the given confidence threshold.
// Thresholds below one are raised to one.
func NewScanner(minConfidence int, excludeGlobs []string) *Scanner {
	if minConfidence < 1 {
		minConfidence = 1
	}
	return &Scanner{MinConfidence: minConfidence, ExcludeGlobs: excludeGlobs}
}

// Scan scores every .go file directly inside dir and returns the ones at
// or above the confidence threshold, sorted by descending score then name.
// Test files and excluded globs are skipped. Unreadable files are logged
// and skipped, never fatal.
func (s *Scanner) Scan(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var found []Candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".go") {
			continue
		}
		if strings.HasSuffix(e.Name(), "_test.go") || s.excluded(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		c, ok := s.Score(path)
		if !ok {
			continue
		}
		found = append(found, c)
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Score != found[j].Score {
			return found[i].Score > found[j].Score
		}
		return found[i].Name < found[j].Name
	})

	logging.Discovery("scanned %s: %d candidates at confidence >= %d", dir, len(found), s.MinConfidence)
	return found, nil
}

// Score reads one file and scores it against the signal set. ok is false
// when the file is unreadable or below the threshold.
func (s *Scanner) Score(path string) (Candidate, bool) {
	src, err := os.ReadFile(path)
	if err != nil {
		logging.DiscoveryDebug("cannot read %s: %v", path, err)
		return Candidate{}, false
	}

	c := Candidate{
		Path: path,
		Name: strings.TrimSuffix(filepath.Base(path), ".go"),
	}
	for _, sig := range signals {
		if sig.pattern.Match(src) {
			c.Score++
			c.Matches = append(c.Matches, sig.label)
		}
	}

	if c.Score < s.MinConfidence {
		logging.DiscoveryDebug("%s scored %d, below threshold %d", path, c.Score, s.MinConfidence)
		return Candidate{}, false
	}
	return c, true
}

// Resolve maps a filename or partial name to one candidate: exact path
// match first, then exact basename, then unique substring match among the
// discovered candidates.
func (s *Scanner) Resolve(dir, arg string) (Candidate, error) {
	if fi, err := os.Stat(arg); err == nil && !fi.IsDir() {
		if c, ok := s.Score(arg); ok {
			return c, nil
		}
		return Candidate{}, fmt.Errorf("%s does not look like an implementation file", arg)
	}

	candidates, err := s.Scan(dir)
	if err != nil {
		return Candidate{}, err
	}

	want := strings.TrimSuffix(arg, ".go")
	for _, c := range candidates {
		if c.Name == want {
			return c, nil
		}
	}

	var partial []Candidate
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(want)) {
			partial = append(partial, c)
		}
	}
	switch len(partial) {
	case 1:
		return partial[0], nil
	case 0:
		return Candidate{}, fmt.Errorf("no implementation matching %q in %s", arg, dir)
	default:
		names := make([]string, len(partial))
		for i, c := range partial {
			names[i] = c.Name
		}
		return Candidate{}, fmt.Errorf("%q is ambiguous, matches: %s", arg, strings.Join(names, ", "))
	}
}

func (s *Scanner) excluded(name string) bool {
	for _, g := range s.ExcludeGlobs {
		if ok, err := filepath.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}
