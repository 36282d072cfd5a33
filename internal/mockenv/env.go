package mockenv

import (
	"path"
	"reflect"

	"github.com/traefik/yaegi/interp"

	"keeptest/internal/logging"
)

// Virtual import path roots the fabricated packages are registered under.
// The two-level keymasters_keep hierarchy mirrors what the implementations'
// original relative imports resolved to; the short keep prefix is the form
// the corpus mostly uses.
var pathRoots = []string{"keep", "keymasters_keep"}

// Exports returns the fabricated environment as yaegi export maps. The same
// symbol set is registered under every path variant, so whichever form an
// implementation imports resolves to the one family of types. Construction
// uses only literals; there is no failure mode.
func Exports() interp.Exports {
	optionSyms := map[string]reflect.Value{
		"Toggle":          reflect.ValueOf((*Toggle)(nil)),
		"DefaultOnToggle": reflect.ValueOf((*DefaultOnToggle)(nil)),
		"Choice":          reflect.ValueOf((*Choice)(nil)),
		"Range":           reflect.ValueOf((*Range)(nil)),
		"PercentageRange": reflect.ValueOf((*PercentageRange)(nil)),
		"NamedRange":      reflect.ValueOf((*NamedRange)(nil)),
		"OptionSet":       reflect.ValueOf((*OptionSet)(nil)),
		"OptionList":      reflect.ValueOf((*OptionList)(nil)),
		"OptionDict":      reflect.ValueOf((*OptionDict)(nil)),
	}

	gameSyms := map[string]reflect.Value{
		"Game":                  reflect.ValueOf((*Game)(nil)),
		"GameObjectiveTemplate": reflect.ValueOf((*GameObjectiveTemplate)(nil)),
	}

	enumSyms := map[string]reflect.Value{
		"Platform": reflect.ValueOf((*Platform)(nil)),
	}
	for code := range Platforms {
		enumSyms[code] = reflect.ValueOf(Platform(code))
	}

	exports := interp.Exports{}
	for _, root := range pathRoots {
		exports[root+"/options/options"] = optionSyms
		exports[root+"/game/game"] = gameSyms
		exports[root+"/enums/enums"] = enumSyms
	}
	return exports
}

// Install applies the fabricated environment to an interpreter session.
func Install(i *interp.Interpreter) error {
	return i.Use(Exports())
}

// KnownImport reports whether an import path is satisfied by the fabricated
// environment.
func KnownImport(importPath string) bool {
	for _, root := range pathRoots {
		switch importPath {
		case root + "/options", root + "/game", root + "/enums":
			return true
		}
	}
	return false
}

// stubFunc is the shape every fabricated function takes: it swallows any
// arguments and returns an empty Placeholder.
func stubFunc(args ...interface{}) interface{} {
	return Placeholder{}
}

// FabricateImport builds an export entry for an unknown import path so the
// implementation's import statement resolves. Selectors observed in type
// position become Placeholder; selectors observed in call position become a
// variadic stub function; everything else becomes a Placeholder value. The
// result is best effort: a fabricated symbol used in a way the stub cannot
// satisfy still fails that one file's load, which is the intended
// per-implementation failure path.
func FabricateImport(importPath string, typeNames, funcNames, valueNames []string) interp.Exports {
	syms := map[string]reflect.Value{}
	for _, name := range typeNames {
		syms[name] = reflect.ValueOf((*Placeholder)(nil))
	}
	for _, name := range funcNames {
		if _, seen := syms[name]; !seen {
			syms[name] = reflect.ValueOf(stubFunc)
		}
	}
	for _, name := range valueNames {
		if _, seen := syms[name]; !seen {
			syms[name] = reflect.ValueOf(Placeholder{})
		}
	}

	pkgName := path.Base(importPath)
	logging.Get(logging.CategoryMockEnv).Debug("fabricated import %q (%d symbols)", importPath, len(syms))

	return interp.Exports{importPath + "/" + pkgName: syms}
}
