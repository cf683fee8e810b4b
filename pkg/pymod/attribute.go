// SPDX-License-Identifier: MPL-2.0

package pymod

import (
	"fmt"
	"sort"

	"pyspect/pkg/pysyntax"
)

// Attribute is a lazy handle to one name defined inside a unit (or nested
// inside a container-valued attribute). Before the owning unit is
// materialized it answers member queries from static analysis; after, from
// live reflection.
type Attribute struct {
	owner  *Unit
	parent *Attribute
	name   string

	// static describes the name as the analyzer saw it. Nil for wrappers
	// created from live reflection.
	static *pysyntax.Name

	state   State
	value   any
	loadErr error

	children map[string]*Attribute
}

// Name returns the attribute's local name.
func (a *Attribute) Name() string { return a.name }

// QualifiedName returns the owning unit's qualified name joined with the
// attribute path.
func (a *Attribute) QualifiedName() string {
	if a.parent != nil {
		return a.parent.QualifiedName() + "." + a.name
	}
	return a.owner.Name() + "." + a.name
}

// Owner returns the unit the attribute belongs to.
func (a *Attribute) Owner() *Unit { return a.owner }

// State returns the attribute's load state.
func (a *Attribute) State() State { return a.state }

// Container reports whether the attribute holds a value that can itself be
// recursed into: statically, a class-like definition; after load, a value
// exposing attributes.
func (a *Attribute) Container() bool {
	if a.state == StateLoaded {
		_, ok := a.value.(AttrSource)
		return ok
	}
	return a.static != nil && a.static.Container
}

// Load forces the owning unit's materialization, fetches the live value by
// name, and caches it. Repeated calls return the cached value.
func (a *Attribute) Load() (any, error) {
	switch a.state {
	case StateLoaded:
		return a.value, nil
	case StateFailed:
		return nil, a.loadErr
	}
	value, err := a.fetch()
	if err != nil {
		a.state = StateFailed
		a.loadErr = err
		return nil, err
	}
	a.state = StateLoaded
	a.value = value
	return value, nil
}

func (a *Attribute) fetch() (any, error) {
	var holder any
	if a.parent != nil {
		v, err := a.parent.Load()
		if err != nil {
			return nil, err
		}
		holder = v
	} else {
		v, err := a.owner.Load()
		if err != nil {
			return nil, err
		}
		holder = v
	}
	src, ok := holder.(AttrSource)
	if !ok {
		return nil, &NotSupportedError{
			Name:   a.QualifiedName(),
			Reason: "loaded holder does not expose attributes",
		}
	}
	value, ok := src.Attr(a.name)
	if !ok {
		return nil, fmt.Errorf("attribute %s absent after load: %w", a.QualifiedName(), ErrNotFound)
	}
	return value, nil
}

// Children returns wrappers for the attribute's nested member names. On an
// unmaterialized container this is the statically-known member set; on an
// unmaterialized non-container it fails with ErrNotSupported, since the
// value cannot be recursed into without executing it.
func (a *Attribute) Children() ([]*Attribute, error) {
	if a.state == StateLoaded {
		src, ok := a.value.(AttrSource)
		if !ok {
			return nil, &NotSupportedError{
				Name:   a.QualifiedName(),
				Reason: "loaded value does not expose attributes",
			}
		}
		out := make([]*Attribute, 0, len(src.AttrNames()))
		for _, name := range src.AttrNames() {
			value, _ := src.Attr(name)
			out = append(out, a.child(name, &Attribute{
				owner:  a.owner,
				parent: a,
				name:   name,
				state:  StateLoaded,
				value:  value,
			}))
		}
		return out, nil
	}
	if a.static == nil || !a.static.Container {
		return nil, &NotSupportedError{
			Name:   a.QualifiedName(),
			Reason: "cannot recurse into an unmaterialized non-container value",
		}
	}
	names := make([]string, 0, len(a.static.Members))
	for name := range a.static.Members {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Attribute, 0, len(names))
	for _, name := range names {
		out = append(out, a.child(name, &Attribute{
			owner:  a.owner,
			parent: a,
			name:   name,
			static: a.static.Members[name],
		}))
	}
	return out, nil
}

// child caches nested wrappers by name so repeated iteration returns the
// same handles.
func (a *Attribute) child(name string, fresh *Attribute) *Attribute {
	if existing, ok := a.children[name]; ok {
		return existing
	}
	if a.children == nil {
		a.children = make(map[string]*Attribute)
	}
	a.children[name] = fresh
	return fresh
}
