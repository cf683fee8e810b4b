// SPDX-License-Identifier: MPL-2.0

package pymod

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrCapability is the sentinel error wrapped by CapabilityError.
	ErrCapability = errors.New("capability not available")
	// ErrNotSupported is the sentinel error wrapped by NotSupportedError.
	ErrNotSupported = errors.New("not supported")
	// ErrForbidden is returned by Load on a unit whose registry entry is the
	// Forbidden sentinel. The loader is never invoked for such units.
	ErrForbidden = errors.New("loading is forbidden")
	// ErrNoLoader is returned by Load when the explorer was built without a
	// loader and can only inspect units statically.
	ErrNoLoader = errors.New("no loader configured")
	// ErrNoSource is returned when a unit has no source form to analyze,
	// either because only a compiled form exists or because the unit came
	// from the registry with no known location.
	ErrNoSource = errors.New("no source form available")
)

type (
	// NotFoundError is returned when a qualified name cannot be resolved
	// under the search path or registry.
	NotFoundError struct {
		// Name is the qualified dotted name that failed to resolve.
		Name string
	}

	// CapabilityError is returned by the stub resolver bound to path
	// entries whose storage kind is not recognized. It degrades the
	// specific operation rather than aborting a whole traversal.
	CapabilityError struct {
		// Location is the path entry's location string.
		Location string
		// Op is the inspection operation that was attempted.
		Op string
	}

	// NotSupportedError is returned when an inspection cannot be answered
	// without executing code, e.g. recursing into an unmaterialized,
	// non-container attribute.
	NotSupportedError struct {
		// Name is the qualified name of the unit or attribute.
		Name string
		// Reason describes why the operation is unanswerable.
		Reason string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %q not found", e.Name)
}

// Unwrap makes the error matchable via errors.Is(err, ErrNotFound).
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %s: capability not available for this storage kind", e.Location, e.Op)
}

// Unwrap makes the error matchable via errors.Is(err, ErrCapability).
func (e *CapabilityError) Unwrap() error { return ErrCapability }

// Error implements the error interface.
func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

// Unwrap makes the error matchable via errors.Is(err, ErrNotSupported).
func (e *NotSupportedError) Unwrap() error { return ErrNotSupported }
