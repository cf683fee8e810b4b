// SPDX-License-Identifier: MPL-2.0

package pymod

const (
	// SeverityWarning indicates a recoverable consistency warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal error diagnostic.
	SeverityError Severity = "error"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic represents a structured, non-fatal finding that is
	// returned to callers (rather than written to stderr) for consistent
	// rendering policy. The operation that produced it still completes.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g. "importer_cache_miss").
		Code string
		// Message is the human-readable description.
		Message string
		// Location is the path-entry location the diagnostic refers to
		// (optional).
		Location string
	}
)
