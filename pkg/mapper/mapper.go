// SPDX-License-Identifier: MPL-2.0

// Package mapper maps the names a materialized unit imports to values.
// Hosts hand a Mapper to their unit loader to control what an executed
// unit may see: fixed bindings, computed lookups, blacklists, and stacked
// overrides compose into one lookup chain.
package mapper

import (
	"errors"
	"fmt"
)

// ErrNoBinding is the sentinel error wrapped by NoBindingError.
var ErrNoBinding = errors.New("no binding for name")

// NoBindingError is returned when a mapper cannot resolve a name.
type NoBindingError struct {
	// Name is the import name that failed to resolve.
	Name string
	// Mapper describes the mapper that rejected it.
	Mapper string
}

// Error implements the error interface.
func (e *NoBindingError) Error() string {
	return fmt.Sprintf("no binding for %q in %s", e.Name, e.Mapper)
}

// Unwrap makes the error matchable via errors.Is(err, ErrNoBinding).
func (e *NoBindingError) Unwrap() error { return ErrNoBinding }

// Mapper resolves names used in import statements to values.
type Mapper interface {
	// Lookup returns the value bound to name, or a NoBindingError.
	Lookup(name string) (any, error)
	// Contains reports whether Lookup would succeed for name.
	Contains(name string) bool
	// WithOverrides derives a mapper in which the given bindings shadow
	// this one.
	WithOverrides(overrides map[string]any) Mapper
}

type (
	// DictMapper looks names up in a fixed binding table.
	DictMapper map[string]any

	// CallableMapper delegates lookup to a callable that returns a value
	// or an error.
	CallableMapper struct {
		lookup func(name string) (any, error)
	}

	// StackedMapper consults a list of mappers in turn, returning the
	// first successful binding.
	StackedMapper []Mapper

	// ExclusiveMapper wraps another mapper but refuses a fixed set of
	// names. It implements an import blacklist.
	ExclusiveMapper struct {
		base     Mapper
		excluded map[string]bool
	}
)

// Empty returns a mapper that rejects every lookup.
func Empty() Mapper {
	return NewCallableMapper(func(name string) (any, error) {
		return nil, &NoBindingError{Name: name, Mapper: "empty mapper"}
	})
}

// Lookup implements Mapper.
func (m DictMapper) Lookup(name string) (any, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return nil, &NoBindingError{Name: name, Mapper: "dict mapper"}
}

// Contains implements Mapper.
func (m DictMapper) Contains(name string) bool {
	_, ok := m[name]
	return ok
}

// WithOverrides implements Mapper.
func (m DictMapper) WithOverrides(overrides map[string]any) Mapper {
	return StackedMapper{DictMapper(overrides), m}
}

// NewCallableMapper wraps a lookup callable.
func NewCallableMapper(lookup func(name string) (any, error)) *CallableMapper {
	return &CallableMapper{lookup: lookup}
}

// Lookup implements Mapper. A failure from the callable is reported as a
// NoBindingError wrapping the original cause.
func (m *CallableMapper) Lookup(name string) (any, error) {
	v, err := m.lookup(name)
	if err != nil {
		if errors.Is(err, ErrNoBinding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", &NoBindingError{Name: name, Mapper: "callable mapper"}, err)
	}
	return v, nil
}

// Contains implements Mapper.
func (m *CallableMapper) Contains(name string) bool {
	_, err := m.Lookup(name)
	return err == nil
}

// WithOverrides implements Mapper.
func (m *CallableMapper) WithOverrides(overrides map[string]any) Mapper {
	return StackedMapper{DictMapper(overrides), m}
}

// Lookup implements Mapper.
func (m StackedMapper) Lookup(name string) (any, error) {
	for _, sub := range m {
		v, err := sub.Lookup(name)
		if err == nil {
			return v, nil
		}
	}
	return nil, &NoBindingError{Name: name, Mapper: "stacked mapper"}
}

// Contains implements Mapper.
func (m StackedMapper) Contains(name string) bool {
	for _, sub := range m {
		if sub.Contains(name) {
			return true
		}
	}
	return false
}

// WithOverrides implements Mapper.
func (m StackedMapper) WithOverrides(overrides map[string]any) Mapper {
	return StackedMapper{DictMapper(overrides), m}
}

// NewExclusiveMapper wraps base, refusing lookups for the excluded names.
func NewExclusiveMapper(base Mapper, excluded []string) *ExclusiveMapper {
	set := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		set[name] = true
	}
	return &ExclusiveMapper{base: base, excluded: set}
}

// Lookup implements Mapper.
func (m *ExclusiveMapper) Lookup(name string) (any, error) {
	if m.excluded[name] {
		return nil, &NoBindingError{Name: name, Mapper: "exclusive mapper (blacklisted)"}
	}
	return m.base.Lookup(name)
}

// Contains implements Mapper.
func (m *ExclusiveMapper) Contains(name string) bool {
	if m.excluded[name] {
		return false
	}
	return m.base.Contains(name)
}

// WithOverrides implements Mapper. Overrides layered on top of the
// blacklist win over it.
func (m *ExclusiveMapper) WithOverrides(overrides map[string]any) Mapper {
	return StackedMapper{DictMapper(overrides), m}
}
