// SPDX-License-Identifier: MPL-2.0

package pysyntax

import (
	"errors"
	"fmt"
)

// ErrMalformedDeclaration is the sentinel error wrapped by
// MalformedDeclarationError for errors.Is() compatibility.
var ErrMalformedDeclaration = errors.New("malformed declaration")

// MalformedDeclarationError is returned when a module's export or import
// statements violate the well-formedness rules: a duplicate or non-literal
// __all__ assignment, a wildcard import, a shape mismatch in an unpacking
// assignment holding __all__, or an export naming an unknown name.
type MalformedDeclarationError struct {
	// File is the source location the declaration came from.
	File string
	// Line is the 1-based source line of the offending statement (0 if unknown).
	Line int
	// Reason is the human-readable description of the violation.
	Reason string
}

// Error implements the error interface.
func (e *MalformedDeclarationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

// Unwrap makes the error matchable via errors.Is(err, ErrMalformedDeclaration).
func (e *MalformedDeclarationError) Unwrap() error {
	return ErrMalformedDeclaration
}
