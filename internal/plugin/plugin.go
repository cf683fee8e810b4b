// SPDX-License-Identifier: MPL-2.0

// Package plugin discovers plugins inside a namespace of Python modules
// without importing them. Every name a module exports is a plugin
// candidate; declared before/after dependencies order the result, and
// wildcard expansion applies user enable-lists.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"

	"pyspect/pkg/pymod"
)

var (
	// ErrInvariant is the sentinel error wrapped by InvariantError.
	ErrInvariant = errors.New("plugin invariant violated")
	// ErrVerify is the sentinel error wrapped by VerifyError.
	ErrVerify = errors.New("plugin verification failed")
)

type (
	// Descriptor describes one discovered plugin: an exported name inside
	// a module reachable from the plugin namespace.
	Descriptor struct {
		// Name is the plugin's name (the exported name).
		Name string
		// Module is the qualified name of the module exporting it.
		Module string
		// Unit is the lazy wrapper for that module.
		Unit *pymod.Unit
		// Before lists plugins that must come before this one.
		Before []string
		// After lists plugins that must come after this one.
		After []string
	}

	// InvariantError is returned when a plugin wants another plugin both
	// before and after itself.
	InvariantError struct {
		// Name is the offending plugin.
		Name string
		// Conflicts are the names appearing in both sets.
		Conflicts []string
	}

	// VerifyError is returned when a plugin is missing required attributes.
	VerifyError struct {
		// Name is the plugin name.
		Name string
		// Missing lists the required attributes that were not found.
		Missing []string
	}
)

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("plugin %q wants %v both before and after itself", e.Name, e.Conflicts)
}

// Unwrap makes the error matchable via errors.Is(err, ErrInvariant).
func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Error implements the error interface.
func (e *VerifyError) Error() string {
	return fmt.Sprintf("plugin %q is missing required attributes %v", e.Name, e.Missing)
}

// Unwrap makes the error matchable via errors.Is(err, ErrVerify).
func (e *VerifyError) Unwrap() error { return ErrVerify }

// Discover walks every module reachable under the plugin namespace and
// returns a descriptor per exported name. Modules whose analysis fails are
// skipped with a diagnostic; discovery of siblings continues. For modules
// already materialized, declared before/after dependencies are read from
// the live plugin values.
func Discover(x *pymod.Explorer, namespace string, logger *slog.Logger) ([]*Descriptor, []pymod.Diagnostic, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := x.Resolve(namespace)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving plugin namespace %s: %w", namespace, err)
	}

	var (
		out   []*Descriptor
		diags []pymod.Diagnostic
		seen  = make(map[string]bool)
	)
	for u := range x.Walk(root, true) {
		if u.Name() == root.Name() || u.IsPackage() {
			continue
		}
		exports, err := u.Exports()
		if err != nil {
			diags = append(diags, pymod.Diagnostic{
				Severity: pymod.SeverityWarning,
				Code:     "plugin_module_skipped",
				Message:  fmt.Sprintf("skipping %s: %v", u.Name(), err),
			})
			logger.Warn("skipping plugin module", "module", u.Name(), "error", err)
			continue
		}
		for _, name := range exports {
			if seen[name] {
				// First exporter wins, matching search-path precedence.
				continue
			}
			seen[name] = true
			d := &Descriptor{Name: name, Module: u.Name(), Unit: u}
			fillDependencies(d, u, name)
			out = append(out, d)
		}
	}
	return out, diags, nil
}

// fillDependencies reads before/after declarations from a materialized
// plugin value. Unmaterialized plugins keep empty dependency sets.
func fillDependencies(d *Descriptor, u *pymod.Unit, name string) {
	value, ok := u.Value()
	if !ok {
		return
	}
	src, ok := value.(pymod.AttrSource)
	if !ok {
		return
	}
	attr, ok := src.Attr(name)
	if !ok {
		return
	}
	plug, ok := attr.(pymod.AttrSource)
	if !ok {
		return
	}
	d.Before = stringList(plug, "before")
	d.After = stringList(plug, "after")
}

func stringList(src pymod.AttrSource, name string) []string {
	v, ok := src.Attr(name)
	if !ok {
		return nil
	}
	names, _ := v.([]string)
	return names
}

// Validate enforces the sorted-plugin invariant: no name may appear in
// both the before and the after set of one plugin.
func Validate(d *Descriptor) error {
	after := make(map[string]bool, len(d.After))
	for _, name := range d.After {
		after[name] = true
	}
	var conflicts []string
	for _, name := range d.Before {
		if after[name] {
			conflicts = append(conflicts, name)
		}
	}
	if len(conflicts) > 0 {
		return &InvariantError{Name: d.Name, Conflicts: conflicts}
	}
	return nil
}

// Verify checks that a plugin's statically-known (or live) attribute set
// contains every required attribute name.
func Verify(d *Descriptor, required []string) error {
	attr, err := d.Unit.Attribute(d.Name)
	if err != nil {
		return fmt.Errorf("verifying plugin %q: %w", d.Name, err)
	}
	children, err := attr.Children()
	if err != nil {
		return fmt.Errorf("verifying plugin %q: %w", d.Name, err)
	}
	present := make(map[string]bool, len(children))
	for _, c := range children {
		present[c.Name()] = true
	}
	var missing []string
	for _, name := range required {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &VerifyError{Name: d.Name, Missing: missing}
	}
	return nil
}
