// SPDX-License-Identifier: MPL-2.0

package pysyntax

import "unicode"

// IsIdentifier reports whether v is a string forming a valid Python
// identifier: a letter or underscore followed by letters, digits, or
// underscores. Any non-string value is not an identifier.
func IsIdentifier(v any) bool {
	s, ok := v.(string)
	if !ok || s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
