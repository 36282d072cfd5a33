// Package loader turns a single implementation source file into an executed,
// introspectable interpreter session. Each load owns a private session
// (interpreter, symbol table, synthetic package name); nothing process-wide
// is mutated, so sequential loads can never corrupt each other.
package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"keeptest/internal/logging"
	"keeptest/internal/mockenv"
)

// TypeForm describes how a local type is declared.
type TypeForm int

const (
	FormStruct  TypeForm = iota // type X struct{...}
	FormAlias                   // type X = options.Range
	FormDefined                 // type X options.Range, type X int, ...
)

// Field is one declared field of a struct type, with its verbatim type name
// (possibly an unresolved local reference) and struct tag.
type Field struct {
	Name      string
	TypeName  string // verbatim declared type, e.g. "options.Range" or "MatchCountRange"
	Qualifier string // package alias when the type is qualified, else ""
	Tag       reflect.StructTag
}

// TypeDecl is a type declared in the scanned file.
type TypeDecl struct {
	Name       string
	Form       TypeForm
	Underlying string   // alias/defined target, e.g. "options.Range" or "int"
	Embeds     []string // embedded field type names, verbatim
	Fields     []Field  // named fields (struct forms only)
}

// ImportUsage records how the selectors of an unknown import are used, so
// the environment can fabricate symbols of the right shape.
type ImportUsage struct {
	Alias  string
	Types  []string
	Funcs  []string
	Values []string
}

// Candidate is a structurally matched primary game type.
type Candidate struct {
	Name               string
	HasNameMethod      bool
	HasNameField       bool
	HasTemplatesMethod bool
	OptionsField       string // candidate field holding the configuration schema
	SchemaType         string // local type name of the schema struct
	FieldNames         []string
	MethodNames        []string
}

// ScanResult is the first-pass view of an implementation file: declarations
// collected verbatim, with forward references left unresolved for the
// synthesizer's second pass.
type ScanResult struct {
	Path        string
	PackageName string
	Source      []byte

	Imports      map[string]string // alias -> import path
	OptionsAlias string            // alias bound to the fabricated options package

	Types     map[string]*TypeDecl
	TypeOrder []string

	// Candidates lists every structurally qualifying type in declaration
	// order; Candidate is the first one. The tie-break is declaration order,
	// which is stable for a given file revision but not otherwise specified.
	Candidates []string
	Candidate  *Candidate

	Schema []Field // schema fields in declaration order, verbatim
	Stubs  []Stub  // placeholder types synthesized for unresolved schema types

	UnknownImports map[string]*ImportUsage // import path -> usage

	pkgIdentStart int
	pkgIdentEnd   int
}

var builtinTypes = map[string]bool{
	"bool": true, "string": true, "int": true, "int8": true, "int16": true,
	"int32": true, "int64": true, "uint": true, "uint8": true, "uint16": true,
	"uint32": true, "uint64": true, "float32": true, "float64": true,
	"byte": true, "rune": true, "any": true, "error": true, "interface{}": true,
}

// Scan parses src and collects the structural facts the rest of the
// pipeline needs. It never executes anything.
func Scan(path string, src []byte) (*ScanResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	scan := &ScanResult{
		Path:           path,
		PackageName:    file.Name.Name,
		Source:         src,
		Imports:        map[string]string{},
		Types:          map[string]*TypeDecl{},
		UnknownImports: map[string]*ImportUsage{},
		pkgIdentStart:  fset.Position(file.Name.Pos()).Offset,
		pkgIdentEnd:    fset.Position(file.Name.End()).Offset,
	}

	scan.collectImports(file)
	scan.collectTypes(file)
	methods := collectMethods(file)
	scan.pickCandidate(methods)
	scan.collectSchema()
	scan.synthesizeStubs()
	scan.collectUnknownImportUsage(file)

	logging.LoaderDebug("scanned %s: %d types, %d candidates, %d schema fields, %d stubs",
		path, len(scan.Types), len(scan.Candidates), len(scan.Schema), len(scan.Stubs))

	return scan, nil
}

// SourceAsMain returns the file source with its package clause rewritten to
// main, so generated glue can reach its declarations unqualified and entry
// points resolve as main.<symbol>.
func (s *ScanResult) SourceAsMain() string {
	return string(s.Source[:s.pkgIdentStart]) + "main" + string(s.Source[s.pkgIdentEnd:])
}

func (s *ScanResult) collectImports(file *ast.File) {
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		alias := ""
		if imp.Name != nil {
			alias = imp.Name.Name
		} else {
			parts := strings.Split(p, "/")
			alias = parts[len(parts)-1]
		}
		if alias == "_" || alias == "." {
			continue
		}
		s.Imports[alias] = p
		if strings.HasSuffix(p, "/options") && mockenv.KnownImport(p) {
			s.OptionsAlias = alias
		}
	}
}

func (s *ScanResult) collectTypes(file *ast.File) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			td := &TypeDecl{Name: ts.Name.Name}
			switch t := ts.Type.(type) {
			case *ast.StructType:
				if ts.Assign.IsValid() {
					td.Form = FormAlias
					td.Underlying = types.ExprString(ts.Type)
					break
				}
				td.Form = FormStruct
				for _, f := range t.Fields.List {
					typeName := types.ExprString(f.Type)
					if len(f.Names) == 0 {
						td.Embeds = append(td.Embeds, strings.TrimPrefix(typeName, "*"))
						continue
					}
					var tag reflect.StructTag
					if f.Tag != nil {
						if raw, err := strconv.Unquote(f.Tag.Value); err == nil {
							tag = reflect.StructTag(raw)
						}
					}
					for _, name := range f.Names {
						td.Fields = append(td.Fields, Field{
							Name:      name.Name,
							TypeName:  typeName,
							Qualifier: qualifierOf(f.Type),
							Tag:       tag,
						})
					}
				}
			default:
				if ts.Assign.IsValid() {
					td.Form = FormAlias
				} else {
					td.Form = FormDefined
				}
				td.Underlying = types.ExprString(ts.Type)
			}
			s.Types[td.Name] = td
			s.TypeOrder = append(s.TypeOrder, td.Name)
		}
	}
}

// collectMethods maps receiver type name -> method names.
func collectMethods(file *ast.File) map[string][]string {
	methods := map[string][]string{}
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		recv := types.ExprString(fn.Recv.List[0].Type)
		recv = strings.TrimPrefix(recv, "*")
		methods[recv] = append(methods[recv], fn.Name.Name)
	}
	return methods
}

// pickCandidate applies the structural duck-typing rule: a type qualifies
// when it has a name-like member AND (its own name follows the game naming
// convention OR it can produce objective templates). The first qualifying
// type in declaration order wins; the rest are recorded and logged.
func (s *ScanResult) pickCandidate(methods map[string][]string) {
	for _, name := range s.TypeOrder {
		td := s.Types[name]
		if td.Form != FormStruct {
			continue
		}
		hasNameMethod := containsString(methods[name], "Name")
		hasNameField := false
		for _, f := range td.Fields {
			if f.Name == "Name" && f.TypeName == "string" {
				hasNameField = true
			}
		}
		hasTemplates := containsString(methods[name], "GameObjectiveTemplates")
		if !(hasNameMethod || hasNameField) {
			continue
		}
		if !strings.HasSuffix(name, "Game") && !hasTemplates {
			continue
		}
		s.Candidates = append(s.Candidates, name)
		if s.Candidate == nil {
			fieldNames := make([]string, 0, len(td.Fields))
			for _, f := range td.Fields {
				fieldNames = append(fieldNames, f.Name)
			}
			s.Candidate = &Candidate{
				Name:               name,
				HasNameMethod:      hasNameMethod,
				HasNameField:       hasNameField,
				HasTemplatesMethod: hasTemplates,
				FieldNames:         fieldNames,
				MethodNames:        methods[name],
			}
		}
	}
	if len(s.Candidates) > 1 {
		logging.LoaderWarn("%s: %d qualifying game types %v, keeping first by declaration order",
			s.Path, len(s.Candidates), s.Candidates)
	}
}

// collectSchema locates the candidate's configuration schema struct and
// copies its fields verbatim (first pass of the two-pass resolution; names
// stay unresolved here).
func (s *ScanResult) collectSchema() {
	if s.Candidate == nil {
		return
	}
	td := s.Types[s.Candidate.Name]

	pick := func(f Field) bool {
		local, ok := s.Types[f.TypeName]
		return ok && local.Form == FormStruct
	}

	var schemaField *Field
	for i := range td.Fields {
		f := td.Fields[i]
		if (f.Name == "Options" || f.Name == "ArchipelagoOptions") && pick(f) {
			schemaField = &td.Fields[i]
			break
		}
	}
	if schemaField == nil {
		for i := range td.Fields {
			if pick(td.Fields[i]) {
				schemaField = &td.Fields[i]
				break
			}
		}
	}
	if schemaField == nil {
		return
	}

	s.Candidate.OptionsField = schemaField.Name
	s.Candidate.SchemaType = schemaField.TypeName
	s.Schema = append(s.Schema, s.Types[schemaField.TypeName].Fields...)
}

// synthesizeStubs creates placeholder types for schema field types that are
// neither declared in the file nor supplied by the fabricated environment.
func (s *ScanResult) synthesizeStubs() {
	seen := map[string]bool{}
	for _, f := range s.Schema {
		if f.Qualifier != "" || builtinTypes[f.TypeName] || seen[f.TypeName] {
			continue
		}
		if _, declared := s.Types[f.TypeName]; declared {
			continue
		}
		if mockenv.IsFrameworkType(f.TypeName) {
			continue
		}
		stub := classifyStub(f.TypeName)
		s.Stubs = append(s.Stubs, stub)
		// Register in the session symbol table so later references resolve
		// to the same synthesized type.
		s.Types[f.TypeName] = &TypeDecl{
			Name:   f.TypeName,
			Form:   FormStruct,
			Fields: []Field{{Name: "Value", TypeName: stub.valueType()}},
		}
		s.TypeOrder = append(s.TypeOrder, f.TypeName)
		seen[f.TypeName] = true
		logging.LoaderDebug("%s: synthesized placeholder type %s (%s flavor)",
			s.Path, f.TypeName, stub.Flavor)
	}
}

// IsStub reports whether a type name was synthesized rather than declared.
func (s *ScanResult) IsStub(name string) (Stub, bool) {
	for _, st := range s.Stubs {
		if st.Name == name {
			return st, true
		}
	}
	return Stub{}, false
}

// collectUnknownImportUsage classifies how each selector of every import
// the environment cannot satisfy is used: type position, call position, or
// plain value.
func (s *ScanResult) collectUnknownImportUsage(file *ast.File) {
	unknown := map[string]string{} // alias -> path
	for alias, p := range s.Imports {
		if mockenv.KnownImport(p) || isStdlibPath(p) {
			continue
		}
		unknown[alias] = p
		s.UnknownImports[p] = &ImportUsage{Alias: alias}
	}
	if len(unknown) == 0 {
		return
	}

	usage := func(alias string) *ImportUsage {
		return s.UnknownImports[unknown[alias]]
	}

	typeSels := map[string]map[string]bool{}
	callSels := map[string]map[string]bool{}
	record := func(m map[string]map[string]bool, alias, name string) {
		if m[alias] == nil {
			m[alias] = map[string]bool{}
		}
		m[alias][name] = true
	}

	var markType func(expr ast.Expr)
	markType = func(expr ast.Expr) {
		switch t := expr.(type) {
		case *ast.SelectorExpr:
			if id, ok := t.X.(*ast.Ident); ok {
				if _, isUnknown := unknown[id.Name]; isUnknown {
					record(typeSels, id.Name, t.Sel.Name)
				}
			}
		case *ast.StarExpr:
			markType(t.X)
		case *ast.ArrayType:
			markType(t.Elt)
		case *ast.MapType:
			markType(t.Key)
			markType(t.Value)
		case *ast.ChanType:
			markType(t.Value)
		case *ast.StructType:
			for _, f := range t.Fields.List {
				markType(f.Type)
			}
		case *ast.FuncType:
			if t.Params != nil {
				for _, f := range t.Params.List {
					markType(f.Type)
				}
			}
			if t.Results != nil {
				for _, f := range t.Results.List {
					markType(f.Type)
				}
			}
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.TypeSpec:
			markType(node.Type)
		case *ast.ValueSpec:
			if node.Type != nil {
				markType(node.Type)
			}
		case *ast.CompositeLit:
			if node.Type != nil {
				markType(node.Type)
			}
		case *ast.Field:
			markType(node.Type)
		case *ast.CallExpr:
			if sel, ok := node.Fun.(*ast.SelectorExpr); ok {
				if id, ok := sel.X.(*ast.Ident); ok {
					if _, isUnknown := unknown[id.Name]; isUnknown {
						record(callSels, id.Name, sel.Sel.Name)
					}
				}
			}
		}
		return true
	})

	// Everything referenced but not already classified is a plain value.
	ast.Inspect(file, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if _, isUnknown := unknown[id.Name]; !isUnknown {
			return true
		}
		u := usage(id.Name)
		name := sel.Sel.Name
		if typeSels[id.Name][name] || callSels[id.Name][name] {
			return true
		}
		if !containsString(u.Values, name) {
			u.Values = append(u.Values, name)
		}
		return true
	})

	for alias, names := range typeSels {
		u := usage(alias)
		for name := range names {
			u.Types = append(u.Types, name)
		}
	}
	for alias, names := range callSels {
		u := usage(alias)
		for name := range names {
			if !containsString(u.Types, name) {
				u.Funcs = append(u.Funcs, name)
			}
		}
	}
}

func qualifierOf(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if sel, ok := expr.(*ast.SelectorExpr); ok {
		if id, ok := sel.X.(*ast.Ident); ok {
			return id.Name
		}
	}
	return ""
}

// isStdlibPath treats dotless import paths as standard library; the
// interpreter's stdlib symbol set resolves those. Anything with a domain in
// its first segment needs fabrication.
func isStdlibPath(p string) bool {
	first := p
	if i := strings.Index(p, "/"); i >= 0 {
		first = p[:i]
	}
	return !strings.Contains(first, ".")
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
