// SPDX-License-Identifier: MPL-2.0

package pymod

import (
	"fmt"
	"sort"
	"strings"

	"pyspect/pkg/pysyntax"
)

const (
	// StateUnloaded means the unit has never been materialized.
	StateUnloaded State = iota
	// StateLoaded means the unit holds its cached live value (terminal).
	StateLoaded
	// StateFailed means a load was attempted and failed (terminal); the
	// triggering error is returned by every later Load call.
	StateFailed
)

type (
	// State is a unit's materialization state. The transient "loading"
	// phase is never externally observable: Load is atomic to callers.
	State int

	// Unit is a lazy wrapper around one program unit: a leaf module or a
	// namespace package. Units are created on first reference by the
	// Explorer and cached for the rest of the session, keyed by qualified
	// name.
	Unit struct {
		x      *Explorer
		name   string
		parent *Unit

		// entry is the owning path-entry location. Empty for units known
		// only through the registry.
		entry string
		// child is the descriptor within the owning entry.
		child Child
		// forbidden marks a unit whose registry entry is the Forbidden
		// sentinel.
		forbidden bool

		state   State
		value   any
		loadErr error

		attrs map[string]*Attribute
	}
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "load-failed"
	default:
		return "invalid"
	}
}

// Name returns the unit's qualified dotted name.
func (u *Unit) Name() string { return u.name }

// LocalName returns the last component of the qualified name.
func (u *Unit) LocalName() string {
	if idx := strings.LastIndexByte(u.name, '.'); idx >= 0 {
		return u.name[idx+1:]
	}
	return u.name
}

// Parent returns the owning namespace, or nil for top-level units. The
// back-reference does not imply ownership.
func (u *Unit) Parent() *Unit { return u.parent }

// State returns the unit's materialization state.
func (u *Unit) State() State { return u.state }

// IsPackage reports whether the unit is a namespace container. For loaded
// units the live value decides (it carries the current sub-search-path);
// otherwise the static descriptor does.
func (u *Unit) IsPackage() bool {
	if u.state == StateLoaded {
		if pc, ok := u.value.(PathCarrier); ok {
			_, has := pc.SearchPath()
			return has
		}
		return false
	}
	return u.entry != "" && u.child.Kind == ChildPackage
}

// SourceLocation returns the unit's statically known source location.
func (u *Unit) SourceLocation() (string, bool) {
	if u.entry == "" || u.child.Source == "" {
		return "", false
	}
	return u.child.Source, true
}

// Entry returns the location of the path entry the unit was resolved from.
func (u *Unit) Entry() (string, bool) {
	return u.entry, u.entry != ""
}

// Value returns the cached live value of a loaded unit.
func (u *Unit) Value() (any, bool) {
	if u.state != StateLoaded {
		return nil, false
	}
	return u.value, true
}

// Load materializes the unit through the explorer's loader. It is
// idempotent: a loaded unit returns its cached value without re-executing,
// and a failed unit returns the original error. On first success the live
// value is installed into the unit registry.
func (u *Unit) Load() (any, error) {
	switch u.state {
	case StateLoaded:
		return u.value, nil
	case StateFailed:
		return nil, u.loadErr
	}
	if u.forbidden {
		return nil, fmt.Errorf("loading %s: %w", u.name, ErrForbidden)
	}
	if u.x == nil || u.x.loader == nil {
		return nil, fmt.Errorf("loading %s: %w", u.name, ErrNoLoader)
	}
	value, err := u.x.loader(u)
	if err != nil {
		u.state = StateFailed
		u.loadErr = fmt.Errorf("loading %s: %w", u.name, err)
		return nil, u.loadErr
	}
	u.state = StateLoaded
	u.value = value
	u.x.registry.Store(u.name, value)
	return value, nil
}

// Analysis returns the static analysis of the unit's source text. For
// packages this analyzes the __init__ source. Analyses are cached per
// source location for the session.
func (u *Unit) Analysis() (*pysyntax.Info, error) {
	if u.entry == "" {
		return nil, fmt.Errorf("%s: %w", u.name, ErrNoSource)
	}
	if u.child.Source == "" {
		return nil, fmt.Errorf("%s: only a compiled form exists: %w", u.name, ErrNoSource)
	}
	r := u.x.resolvers.For(u.entry)
	key := u.entry + "::" + u.child.Source
	child := u.child
	return u.x.analyses.Analyze(key, func() ([]byte, error) {
		return r.ReadSource(child)
	})
}

// Exports returns the unit's export set. An unmaterialized unit is
// analyzed statically; a materialized one is reflected: its live __all__
// if present, all attribute names otherwise.
func (u *Unit) Exports() ([]string, error) {
	if u.state == StateLoaded {
		src, ok := u.value.(AttrSource)
		if !ok {
			return nil, &NotSupportedError{
				Name:   u.name,
				Reason: "live value does not expose attributes",
			}
		}
		if v, ok := src.Attr(pysyntax.ExportDeclaration); ok {
			if names, ok := v.([]string); ok {
				out := make([]string, len(names))
				copy(out, names)
				return out, nil
			}
		}
		return src.AttrNames(), nil
	}
	info, err := u.Analysis()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(info.Exports))
	copy(out, info.Exports)
	return out, nil
}

// Attributes returns wrappers for the unit's member names: statically
// known definitions before materialization, live attributes after.
func (u *Unit) Attributes() ([]*Attribute, error) {
	names, err := u.attributeNames()
	if err != nil {
		return nil, err
	}
	out := make([]*Attribute, 0, len(names))
	for _, name := range names {
		a, err := u.Attribute(name)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Attribute returns the wrapper for one member name. Wrappers are owned by
// the unit and cached by local name.
func (u *Unit) Attribute(name string) (*Attribute, error) {
	if a, ok := u.attrs[name]; ok {
		return a, nil
	}
	a, err := u.newAttribute(name)
	if err != nil {
		return nil, err
	}
	if u.attrs == nil {
		u.attrs = make(map[string]*Attribute)
	}
	u.attrs[name] = a
	return a, nil
}

func (u *Unit) newAttribute(name string) (*Attribute, error) {
	if u.state == StateLoaded {
		src, ok := u.value.(AttrSource)
		if !ok {
			return nil, &NotSupportedError{
				Name:   u.name,
				Reason: "live value does not expose attributes",
			}
		}
		value, ok := src.Attr(name)
		if !ok {
			return nil, &NotFoundError{Name: u.name + "." + name}
		}
		return &Attribute{owner: u, name: name, state: StateLoaded, value: value}, nil
	}
	info, err := u.Analysis()
	if err != nil {
		return nil, err
	}
	static, ok := info.Defined[name]
	if !ok {
		return nil, &NotFoundError{Name: u.name + "." + name}
	}
	return &Attribute{owner: u, name: name, static: static}, nil
}

func (u *Unit) attributeNames() ([]string, error) {
	if u.state == StateLoaded {
		src, ok := u.value.(AttrSource)
		if !ok {
			return nil, &NotSupportedError{
				Name:   u.name,
				Reason: "live value does not expose attributes",
			}
		}
		return src.AttrNames(), nil
	}
	info, err := u.Analysis()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(info.Defined))
	for name := range info.Defined {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Child resolves a local name scoped to this namespace's children, like
// indexing a package by name. When the backing path entry is missing from
// the importer cache, a non-fatal consistency warning is emitted and the
// lookup proceeds via direct parent-container resolution.
func (u *Unit) Child(name string) (*Unit, []Diagnostic, error) {
	x := u.x
	qname := u.name + "." + name
	if cached, ok := x.units[qname]; ok {
		return cached, nil, nil
	}
	if v, ok := x.registry.Lookup(qname); ok {
		return x.unitFromRegistry(qname, u, v), nil, nil
	}
	var diags []Diagnostic
	for _, loc := range x.searchLocations(u) {
		r, ok := x.resolvers.Cached(loc)
		if !ok {
			d := Diagnostic{
				Severity: SeverityWarning,
				Code:     "importer_cache_miss",
				Message:  fmt.Sprintf("importer cache has no resolver for %s; using direct lookup", loc),
				Location: loc,
			}
			diags = append(diags, d)
			x.logger.Warn("importer cache missing path entry",
				"location", loc, "module", qname)
			r = x.resolvers.direct(loc)
		}
		c, err := r.Find(name)
		if err != nil {
			continue
		}
		return x.unitAt(u, qname, loc, c), diags, nil
	}
	return nil, diags, &NotFoundError{Name: qname}
}
