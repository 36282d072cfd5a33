package main

import (
	"fmt"

	"keeptest/internal/analysis"
	"keeptest/internal/discovery"
	"keeptest/internal/loader"
	"keeptest/internal/report"
	"keeptest/internal/sampler"
	"keeptest/internal/synth"
)

// runTest exercises one implementation end to end: load it in a fresh
// session, analyze it, then run the configured number of sampling rounds.
// An implementation with zero templates still produces a full report; only
// load failures return an error.
func runTest(c discovery.Candidate) error {
	session, err := loader.NewSession(synth.New())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	impl, err := session.Load(c.Path)
	if err != nil {
		return err
	}

	templates := impl.ObjectiveTemplates()
	rep := analysis.Analyze(templates, impl.Scan, impl.Plan)

	fmt.Print(report.Header(impl.GameName, impl.ClassName, impl.Path))
	fmt.Print(report.Analysis(rep))

	s := sampler.New(nil)
	for round := 1; round <= cfg.Rounds; round++ {
		objectives := s.Generate(templates, cfg.SampleCount)
		fmt.Print(report.Objectives(round, objectives))
	}
	fmt.Println()

	return nil
}

// runAll tests every candidate in order, isolating per-implementation
// failures so one broken file never aborts the batch.
func runAll(candidates []discovery.Candidate) {
	failed := 0
	for _, c := range candidates {
		if err := runTest(c); err != nil {
			fmt.Println(report.Failure(c.Path, err))
			failed++
		}
	}
	fmt.Printf("Tested %d implementation(s), %d failed\n", len(candidates), failed)
}
