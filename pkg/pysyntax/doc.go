// SPDX-License-Identifier: MPL-2.0

// Package pysyntax statically analyzes Python source text. It extracts the
// names a module defines, the names it imports, and its explicit export
// declaration (__all__) without executing any of the module's code.
//
// The analyzer enforces strict well-formedness rules on the export
// declaration: it must be assigned at most once, its contents must be a
// literal list or tuple of identifier strings, and every exported name must
// be resolvable to a definition or an import binding. Violations surface as
// MalformedDeclarationError.
package pysyntax
