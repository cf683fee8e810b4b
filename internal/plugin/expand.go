// SPDX-License-Identifier: MPL-2.0

package plugin

import "strings"

// ExpandNames expands a user-supplied plugin enable-list against the
// available plugin names. A "*" entry selects every available name except
// those disabled with a "-name" entry; without a wildcard, the list is
// returned as-is minus disabled names. Order of the available set is
// preserved for wildcard expansion.
func ExpandNames(available []string, names []string) []string {
	disabled := make(map[string]bool)
	wildcard := false
	for _, name := range names {
		switch {
		case name == "*":
			wildcard = true
		case strings.HasPrefix(name, "-"):
			disabled[name[1:]] = true
		}
	}

	var out []string
	if wildcard {
		for _, name := range available {
			if !disabled[name] {
				out = append(out, name)
			}
		}
		return out
	}
	for _, name := range names {
		if strings.HasPrefix(name, "-") || disabled[name] {
			continue
		}
		out = append(out, name)
	}
	return out
}
