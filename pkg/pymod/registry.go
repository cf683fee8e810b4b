// SPDX-License-Identifier: MPL-2.0

package pymod

import (
	"sort"
)

// forbidden is the type of the Forbidden sentinel.
type forbidden struct{}

// String identifies the sentinel in logs and error messages.
func (forbidden) String() string { return "<forbidden>" }

// Forbidden is the registry sentinel meaning "do not attempt to load this
// name". Resolution still yields an unloaded wrapper for it; Load fails
// with ErrForbidden and never invokes the loader.
var Forbidden forbidden

// IsForbidden reports whether a registry value is the Forbidden sentinel.
func IsForbidden(v any) bool {
	_, ok := v.(forbidden)
	return ok
}

type (
	// Registry is the narrow interface over the process-wide mapping from
	// qualified dotted name to materialized unit value (or Forbidden). It
	// is injected into the Explorer so hosts and tests can supply their
	// own shared store.
	Registry interface {
		// Lookup returns the registered value for a qualified name.
		Lookup(name string) (any, bool)
		// Store registers the materialized value for a qualified name.
		// The Explorer calls it exactly once per unit, on first successful
		// load.
		Store(name string, value any)
		// Names returns the qualified names currently registered.
		Names() []string
	}

	// MapRegistry is the reference Registry backed by a plain map. Access
	// is single-threaded by contract; no locking is provided.
	MapRegistry map[string]any

	// AttrSource is implemented by live values that expose attributes for
	// reflection after materialization.
	AttrSource interface {
		// Attr returns the named attribute value.
		Attr(name string) (any, bool)
		// AttrNames returns the attribute names, sorted.
		AttrNames() []string
	}

	// PathCarrier is implemented by live namespace values that carry a
	// mutable sub-search-path. A false return means the attribute has been
	// removed and the namespace has no enumerable children.
	PathCarrier interface {
		SearchPath() ([]string, bool)
	}

	// Live is a convenience materialized-unit value for hosts and tests.
	// It implements AttrSource and PathCarrier.
	Live struct {
		attrs   map[string]any
		path    []string
		hasPath bool
	}
)

// Lookup implements Registry.
func (r MapRegistry) Lookup(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// Store implements Registry.
func (r MapRegistry) Store(name string, value any) {
	r[name] = value
}

// Names implements Registry.
func (r MapRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewLive creates a live module value with the given attributes.
func NewLive(attrs map[string]any) *Live {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	return &Live{attrs: attrs}
}

// NewLivePackage creates a live namespace value with the given attributes
// and sub-search-path locations.
func NewLivePackage(attrs map[string]any, path ...string) *Live {
	l := NewLive(attrs)
	l.path = path
	l.hasPath = true
	return l
}

// Attr implements AttrSource.
func (l *Live) Attr(name string) (any, bool) {
	v, ok := l.attrs[name]
	return v, ok
}

// AttrNames implements AttrSource.
func (l *Live) AttrNames() []string {
	names := make([]string, 0, len(l.attrs))
	for name := range l.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetAttr sets or replaces an attribute value.
func (l *Live) SetAttr(name string, value any) {
	l.attrs[name] = value
}

// SearchPath implements PathCarrier.
func (l *Live) SearchPath() ([]string, bool) {
	if !l.hasPath {
		return nil, false
	}
	return l.path, true
}

// SetSearchPath replaces the sub-search-path. Application code may call
// this after materialization; traversals honor the current value.
func (l *Live) SetSearchPath(path []string) {
	l.path = path
	l.hasPath = true
}

// AppendSearchPath appends locations to the sub-search-path.
func (l *Live) AppendSearchPath(locations ...string) {
	l.path = append(l.path, locations...)
	l.hasPath = true
}

// RemoveSearchPath deletes the sub-search-path attribute entirely. The
// namespace then reports no enumerable children.
func (l *Live) RemoveSearchPath() {
	l.path = nil
	l.hasPath = false
}
