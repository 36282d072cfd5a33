package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"keeptest/internal/logging"
	"keeptest/internal/mockenv"
)

// ErrNoImplementation is returned when a file loads but no type passes the
// structural game-type match.
var ErrNoImplementation = errors.New("no implementation found")

// Session owns one load: a private interpreter pre-loaded with the stdlib
// and the fabricated environment, a unique id and a synthetic package name
// derived from the file. A Session is single use; discard it when the
// LoadedImplementation it produced is no longer needed.
type Session struct {
	ID      string
	planner Planner
	interp  *interp.Interpreter
	used    bool
}

// LoadedImplementation is the executed, introspectable result of loading
// one implementation file. It is owned by the session that produced it and
// never shared across files.
type LoadedImplementation struct {
	Path      string
	Package   string // synthetic package name (session registry key)
	ClassName string
	GameName  string
	Scan      *ScanResult
	Plan      *OptionPlan

	templates func() interface{}
}

// NewSession creates a fresh interpreter session. The planner synthesizes
// the default configuration during Load; a nil planner instantiates the
// candidate with a zero-value schema.
func NewSession(planner Planner) (*Session, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}
	if err := mockenv.Install(i); err != nil {
		return nil, fmt.Errorf("install fabricated environment: %w", err)
	}
	return &Session{
		ID:      uuid.NewString(),
		planner: planner,
		interp:  i,
	}, nil
}

// Load scans, synthesizes, evaluates and introspects one implementation
// file. Every failure is recoverable from the caller's perspective: the
// error describes why this one file produced no implementation, and batch
// testing of other files continues.
//
// No timeout or cancellation wraps the evaluation; an implementation that
// loops during load or template generation hangs the run. That is a known
// limitation, not a supported scenario.
func (s *Session) Load(path string) (*LoadedImplementation, error) {
	if s.used {
		return nil, fmt.Errorf("session %s already consumed by a load", s.ID)
	}
	s.used = true

	timer := logging.StartTimer(logging.CategoryLoader, "load "+filepath.Base(path))
	defer timer.Stop()

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	scan, err := Scan(path, src)
	if err != nil {
		logging.LoaderWarn("could not load %s: %v", path, err)
		return nil, err
	}
	if scan.Candidate == nil {
		logging.LoaderDebug("%s: no structurally qualifying game type", path)
		return nil, ErrNoImplementation
	}

	var plan *OptionPlan
	if s.planner != nil {
		plan = s.planner.Plan(scan)
	}

	for importPath, usage := range scan.UnknownImports {
		exports := mockenv.FabricateImport(importPath, usage.Types, usage.Funcs, usage.Values)
		if err := s.interp.Use(exports); err != nil {
			logging.LoaderWarn("%s: fabricating import %q failed: %v", path, importPath, err)
		}
	}

	program := assembleProgram(scan, plan)
	if _, err := s.eval(program); err != nil {
		logging.LoaderWarn("could not load %s: %v", path, err)
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}

	impl := &LoadedImplementation{
		Path:      path,
		Package:   syntheticPackageName(path, s.ID),
		ClassName: scan.Candidate.Name,
		Scan:      scan,
		Plan:      plan,
	}

	nameVal, err := s.eval("main." + glueNameFunc)
	if err != nil {
		return nil, fmt.Errorf("extract name entry point: %w", err)
	}
	nameFn, ok := nameVal.Interface().(func() string)
	if !ok {
		return nil, fmt.Errorf("%s has incorrect signature", glueNameFunc)
	}
	impl.GameName = callString(nameFn, scan.Candidate.Name)

	objVal, err := s.eval("main." + glueObjectiveFunc)
	if err != nil {
		return nil, fmt.Errorf("extract objectives entry point: %w", err)
	}
	objFn, ok := objVal.Interface().(func() interface{})
	if !ok {
		return nil, fmt.Errorf("%s has incorrect signature", glueObjectiveFunc)
	}
	impl.templates = objFn

	logging.Loader("loaded %s: class=%s game=%q package=%s",
		path, impl.ClassName, impl.GameName, impl.Package)

	return impl, nil
}

// eval runs interpreter code, converting panics out of interpreted code
// into errors.
func (s *Session) eval(src string) (v reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpreter panic: %v", r)
		}
	}()
	return s.interp.Eval(src)
}

// ObjectiveTemplates retrieves the implementation's objective templates.
// A panicking implementation or a non-sequence result yields an empty
// slice, never an error; per-implementation failures must not interrupt
// batch testing.
func (li *LoadedImplementation) ObjectiveTemplates() (out []mockenv.GameObjectiveTemplate) {
	defer func() {
		if r := recover(); r != nil {
			logging.LoaderWarn("%s: GameObjectiveTemplates panicked: %v", li.Path, r)
			out = nil
		}
	}()
	if li.templates == nil {
		return nil
	}
	raw := li.templates()
	if raw == nil {
		return nil
	}
	ts, ok := raw.([]mockenv.GameObjectiveTemplate)
	if !ok {
		logging.LoaderWarn("%s: GameObjectiveTemplates returned %T, expected template slice", li.Path, raw)
		return nil
	}
	return ts
}

func callString(fn func() string, fallback string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fallback
		}
	}()
	s = fn()
	if s == "" {
		s = fallback
	}
	return s
}

// syntheticPackageName derives the unique per-load registry name: the
// sanitized file basename plus a fragment of the session id, so loading the
// same filename twice in one process yields distinct slots.
func syntheticPackageName(path, sessionID string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".go")
	var b strings.Builder
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "impl_" + name
	}
	frag := strings.ReplaceAll(sessionID, "-", "")
	if len(frag) > 8 {
		frag = frag[:8]
	}
	return name + "_" + frag
}
