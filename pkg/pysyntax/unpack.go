// SPDX-License-Identifier: MPL-2.0

package pysyntax

import (
	"fmt"

	"github.com/go-python/gpython/ast"
)

// alignDeclaration positionally matches an unpacking assignment target
// against a literal right-hand-side value, following the path that leads to
// the declaration name. At every nesting level along that path the value
// must be a literal sequence of exactly the target's arity; the expression
// matched against the declaration name is returned for literal validation.
//
// The matcher is deliberately independent of the rest of the analyzer so
// its shape rules can be exercised in isolation.
func alignDeclaration(target, value ast.Expr, decl, file string, line int) (ast.Expr, error) {
	shapeErr := func(reason string) error {
		return &MalformedDeclarationError{
			File:   file,
			Line:   line,
			Reason: "malformed export declaration: " + reason,
		}
	}
	switch t := target.(type) {
	case *ast.Name:
		if string(t.Id) == decl {
			return value, nil
		}
		return nil, shapeErr(fmt.Sprintf("internal: target %q does not hold the declaration", t.Id))
	case *ast.Tuple:
		return alignSequence(t.Elts, value, decl, file, line, shapeErr)
	case *ast.List:
		return alignSequence(t.Elts, value, decl, file, line, shapeErr)
	case *ast.Starred:
		return nil, shapeErr("a starred target cannot hold the export declaration")
	}
	return nil, shapeErr(fmt.Sprintf("unsupported target form %T", target))
}

func alignSequence(targets []ast.Expr, value ast.Expr, decl, file string, line int, shapeErr func(string) error) (ast.Expr, error) {
	elts, ok := literalSequence(value)
	if !ok {
		return nil, shapeErr("unpacked value is not a literal sequence")
	}
	if len(elts) != len(targets) {
		return nil, shapeErr(fmt.Sprintf("unpacking arity mismatch: %d targets, %d values", len(targets), len(elts)))
	}
	for i, sub := range targets {
		if targetHoldsName(sub, decl) {
			return alignDeclaration(sub, elts[i], decl, file, line)
		}
	}
	return nil, shapeErr("export declaration not found in unpacking target")
}

// targetHoldsName reports whether the declaration name appears anywhere in
// a target subtree, descending through nested sequences and starred targets.
func targetHoldsName(target ast.Expr, name string) bool {
	switch t := target.(type) {
	case *ast.Name:
		return string(t.Id) == name
	case *ast.Tuple:
		for _, elt := range t.Elts {
			if targetHoldsName(elt, name) {
				return true
			}
		}
	case *ast.List:
		for _, elt := range t.Elts {
			if targetHoldsName(elt, name) {
				return true
			}
		}
	case *ast.Starred:
		return targetHoldsName(t.Value, name)
	}
	return false
}
