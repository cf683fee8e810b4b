// SPDX-License-Identifier: MPL-2.0

package pysyntax

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
)

// ExportDeclaration is the designated top-level name whose literal contents
// declare a module's public surface.
const ExportDeclaration = "__all__"

type (
	// Name describes one name defined at the top level of a module, or a
	// member of a class-like container.
	Name struct {
		// Name is the local (unqualified) name.
		Name string
		// Container reports whether the definition is class-like and can
		// hold statically-known members of its own.
		Container bool
		// Members holds the statically-known members of a container,
		// keyed by local name. Nil for non-containers.
		Members map[string]*Name
	}

	// Info is the result of analyzing one module's source text.
	Info struct {
		// Defined maps every top-level defined name to its description.
		Defined map[string]*Name
		// Imported lists the fully qualified dotted names bound by import
		// statements, in order of first appearance.
		Imported []string
		// Bound maps each local name bound by an import statement to the
		// fully qualified source name it refers to.
		Bound map[string]string
		// Exports is the module's export set: the validated contents of the
		// export declaration, or the defined names when no declaration is
		// present.
		Exports []string
		// ExportsDeclared reports whether the export set came from an
		// explicit declaration rather than the defined-names default.
		ExportsDeclared bool
	}
)

// Analyze parses src and extracts defined, imported, and exported names.
// filename is used for error reporting only. The returned error is a
// MalformedDeclarationError for well-formedness violations, or a wrapped
// parse error for syntactically invalid source.
func Analyze(src []byte, filename string) (*Info, error) {
	tree, err := parser.ParseString(string(src), "exec")
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	mod, ok := tree.(*ast.Module)
	if !ok {
		return nil, fmt.Errorf("parsing %s: unexpected top-level node %T", filename, tree)
	}
	return analyzeModule(mod, filename)
}

// analysis carries the walk state for one module.
type analysis struct {
	file string
	info *Info

	// declSeen counts assignments to the export declaration across the
	// whole module, direct or nested inside unpacking.
	declSeen int
	// declContents holds the validated literal export list once seen.
	declContents []string
}

func analyzeModule(mod *ast.Module, filename string) (*Info, error) {
	a := &analysis{
		file: filename,
		info: &Info{
			Defined: make(map[string]*Name),
			Bound:   make(map[string]string),
		},
	}
	for _, stmt := range mod.Body {
		if err := a.statement(stmt); err != nil {
			return nil, err
		}
	}
	if err := a.finishExports(); err != nil {
		return nil, err
	}
	return a.info, nil
}

func (a *analysis) statement(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.FunctionDef:
		a.define(&Name{Name: string(s.Name)})
	case *ast.ClassDef:
		a.define(&Name{
			Name:      string(s.Name),
			Container: true,
			Members:   ContainerMembers(s.Body),
		})
	case *ast.Import:
		for _, alias := range s.Names {
			fqn := string(alias.Name)
			local := string(alias.AsName)
			if local == "" {
				// "import a.b" binds the top-level package locally.
				local, _, _ = strings.Cut(fqn, ".")
			}
			a.addImport(fqn, local)
		}
	case *ast.ImportFrom:
		return a.importFrom(s)
	case *ast.Assign:
		return a.assign(s)
	}
	return nil
}

func (a *analysis) define(n *Name) {
	a.info.Defined[n.Name] = n
}

func (a *analysis) addImport(fqn, local string) {
	if _, seen := a.info.Bound[local]; !seen {
		a.info.Bound[local] = fqn
	}
	for _, existing := range a.info.Imported {
		if existing == fqn {
			return
		}
	}
	a.info.Imported = append(a.info.Imported, fqn)
}

func (a *analysis) importFrom(s *ast.ImportFrom) error {
	module := strings.Repeat(".", s.Level) + string(s.Module)
	for _, alias := range s.Names {
		if alias.Name == "*" {
			return &MalformedDeclarationError{
				File:   a.file,
				Line:   s.Lineno,
				Reason: fmt.Sprintf("wildcard import from %q has an unknowable name set", module),
			}
		}
		fqn := module + "." + string(alias.Name)
		if s.Module == "" && s.Level == 0 {
			fqn = string(alias.Name)
		}
		local := string(alias.AsName)
		if local == "" {
			local = string(alias.Name)
		}
		a.addImport(fqn, local)
	}
	return nil
}

// assign records every simple-name target of a top-level assignment as a
// defined name, and routes any assignment touching the export declaration
// through the validation rules.
func (a *analysis) assign(s *ast.Assign) error {
	for _, target := range s.Targets {
		names := collectTargetNames(target, nil)
		declInTarget := 0
		for _, n := range names {
			a.define(&Name{Name: n})
			if n == ExportDeclaration {
				declInTarget++
			}
		}
		if declInTarget == 0 {
			continue
		}
		a.declSeen += declInTarget
		if a.declSeen > 1 {
			return &MalformedDeclarationError{
				File:   a.file,
				Line:   s.Lineno,
				Reason: "duplicate export declaration",
			}
		}
		value := s.Value
		if _, direct := target.(*ast.Name); !direct {
			aligned, err := alignDeclaration(target, s.Value, ExportDeclaration, a.file, s.Lineno)
			if err != nil {
				return err
			}
			value = aligned
		}
		contents, err := a.literalExportList(value, s.Lineno)
		if err != nil {
			return err
		}
		a.declContents = contents
	}
	return nil
}

// literalExportList validates the right-hand side of an export declaration:
// a literal list or tuple whose every element is a literal identifier string.
func (a *analysis) literalExportList(value ast.Expr, line int) ([]string, error) {
	elts, ok := literalSequence(value)
	if !ok {
		return nil, &MalformedDeclarationError{
			File:   a.file,
			Line:   line,
			Reason: "malformed export declaration: value is not a literal list or tuple",
		}
	}
	names := make([]string, 0, len(elts))
	for _, elt := range elts {
		str, ok := elt.(*ast.Str)
		if !ok {
			return nil, &MalformedDeclarationError{
				File:   a.file,
				Line:   line,
				Reason: "malformed export declaration: element is not a literal string",
			}
		}
		name := string(str.S)
		if !IsIdentifier(name) {
			return nil, &MalformedDeclarationError{
				File:   a.file,
				Line:   line,
				Reason: fmt.Sprintf("malformed export declaration: %q is not a valid identifier", name),
			}
		}
		names = append(names, name)
	}
	return names, nil
}

// finishExports applies the default rule and validates declared exports
// against the defined and import-bound name sets.
func (a *analysis) finishExports() error {
	if a.declSeen == 0 {
		exports := make([]string, 0, len(a.info.Defined))
		for name := range a.info.Defined {
			exports = append(exports, name)
		}
		sort.Strings(exports)
		a.info.Exports = exports
		return nil
	}
	for _, name := range a.declContents {
		if _, ok := a.info.Defined[name]; ok {
			continue
		}
		if _, ok := a.info.Bound[name]; ok {
			continue
		}
		return &MalformedDeclarationError{
			File:   a.file,
			Reason: fmt.Sprintf("export declaration names %q, which is neither defined nor imported", name),
		}
	}
	a.info.Exports = a.declContents
	a.info.ExportsDeclared = true
	return nil
}

// collectTargetNames gathers every simple-name target appearing anywhere in
// an assignment target structure, descending through sequence unpacking of
// arbitrary depth. Attribute-access and subscript targets are not
// definitions and are skipped.
func collectTargetNames(target ast.Expr, out []string) []string {
	switch t := target.(type) {
	case *ast.Name:
		out = append(out, string(t.Id))
	case *ast.Tuple:
		for _, elt := range t.Elts {
			out = collectTargetNames(elt, out)
		}
	case *ast.List:
		for _, elt := range t.Elts {
			out = collectTargetNames(elt, out)
		}
	case *ast.Starred:
		out = collectTargetNames(t.Value, out)
	}
	return out
}

// literalSequence returns the elements of a literal list or tuple expression.
func literalSequence(e ast.Expr) ([]ast.Expr, bool) {
	switch v := e.(type) {
	case *ast.List:
		return v.Elts, true
	case *ast.Tuple:
		return v.Elts, true
	}
	return nil, false
}

// ContainerMembers computes the statically-known members of a class-like
// body using the same rules as top-level defined names: function and class
// definitions plus simple-name assignment targets.
func ContainerMembers(body []ast.Stmt) map[string]*Name {
	members := make(map[string]*Name)
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.FunctionDef:
			members[string(s.Name)] = &Name{Name: string(s.Name)}
		case *ast.ClassDef:
			members[string(s.Name)] = &Name{
				Name:      string(s.Name),
				Container: true,
				Members:   ContainerMembers(s.Body),
			}
		case *ast.Assign:
			for _, target := range s.Targets {
				for _, n := range collectTargetNames(target, nil) {
					members[n] = &Name{Name: n}
				}
			}
		}
	}
	return members
}
