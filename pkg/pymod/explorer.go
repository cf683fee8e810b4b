// SPDX-License-Identifier: MPL-2.0

package pymod

import (
	"iter"
	"log/slog"
	"sort"
	"strings"

	"pyspect/pkg/pysyntax"
)

type (
	// Loader materializes one unit: it executes the unit's source and
	// returns the live value. The Explorer calls it exactly once per unit
	// per successful load. Execution itself is outside this package.
	Loader func(u *Unit) (any, error)

	// Options configures an Explorer.
	Options struct {
		// SearchPath supplies the ordered location list. It is re-read on
		// every resolution and traversal so external appends and removals
		// are observed. Order determines priority; first match wins.
		SearchPath func() []string
		// Registry is the shared unit registry. Defaults to a fresh
		// MapRegistry.
		Registry Registry
		// Hooks produce resolvers for locations, tried in order. Defaults
		// to DefaultHooks.
		Hooks []Hook
		// ImporterCache is the externally supplied location-to-resolver
		// cache, consulted for consistency checks and populated lazily on
		// miss. Defaults to a fresh map.
		ImporterCache map[string]Resolver
		// Loader materializes units. A nil loader makes the explorer
		// inspect-only: Load fails with ErrNoLoader.
		Loader Loader
		// Logger receives non-fatal diagnostics. Defaults to slog.Default().
		Logger *slog.Logger
		// CacheSize bounds the analysis cache; non-positive selects the
		// default.
		CacheSize int
	}

	// Explorer resolves dotted names to lazy unit wrappers and produces
	// traversals over the reachable unit graph. One Explorer is one
	// session: wrappers are cached by qualified name for its lifetime.
	Explorer struct {
		path      func() []string
		registry  Registry
		resolvers *Resolvers
		loader    Loader
		logger    *slog.Logger
		analyses  *pysyntax.Cache
		units     map[string]*Unit
	}
)

// FixedPath adapts a fixed location list to the SearchPath option. Hosts
// that mutate their search path should pass a closure over their own slice
// instead.
func FixedPath(locations ...string) func() []string {
	return func() []string { return locations }
}

// New creates an Explorer.
func New(opts Options) *Explorer {
	path := opts.SearchPath
	if path == nil {
		path = FixedPath()
	}
	registry := opts.Registry
	if registry == nil {
		registry = make(MapRegistry)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Explorer{
		path:      path,
		registry:  registry,
		resolvers: NewResolvers(opts.Hooks, opts.ImporterCache),
		loader:    opts.Loader,
		logger:    logger,
		analyses:  pysyntax.NewCache(opts.CacheSize),
		units:     make(map[string]*Unit),
	}
}

// Registry returns the explorer's unit registry.
func (x *Explorer) Registry() Registry { return x.registry }

// Resolvers returns the explorer's resolver registry (importer cache).
func (x *Explorer) Resolvers() *Resolvers { return x.resolvers }

// Resolve resolves a dotted qualified name to a lazy unit wrapper. Each
// component is resolved in turn: the registry is honored first (a
// Forbidden entry still yields an unloaded wrapper), then the search path
// (top level) or the parent namespace's current sub-search-path (nested
// levels) is scanned in order; first match wins. An unknown name at any
// level fails with NotFoundError.
func (x *Explorer) Resolve(dotted string) (*Unit, error) {
	if dotted == "" {
		return nil, &NotFoundError{Name: dotted}
	}
	var parent *Unit
	qname := ""
	for _, comp := range strings.Split(dotted, ".") {
		if comp == "" {
			return nil, &NotFoundError{Name: dotted}
		}
		if qname == "" {
			qname = comp
		} else {
			qname += "." + comp
		}
		u, err := x.resolveIn(parent, comp, qname)
		if err != nil {
			return nil, err
		}
		parent = u
	}
	return parent, nil
}

func (x *Explorer) resolveIn(parent *Unit, local, qname string) (*Unit, error) {
	if u, ok := x.units[qname]; ok {
		return u, nil
	}
	if v, ok := x.registry.Lookup(qname); ok {
		return x.unitFromRegistry(qname, parent, v), nil
	}
	for _, loc := range x.searchLocations(parent) {
		r := x.resolvers.For(loc)
		c, err := r.Find(local)
		if err != nil {
			// Not present under this entry, or the entry's storage kind
			// offers no lookup capability. Either way, keep scanning.
			continue
		}
		return x.unitAt(parent, qname, loc, c), nil
	}
	return nil, &NotFoundError{Name: qname}
}

// searchLocations returns the locations to scan for children of parent
// (nil parent means the root search path). A materialized namespace's
// current sub-search-path wins over the statically-known default; if the
// attribute has been removed, the namespace has no enumerable children.
func (x *Explorer) searchLocations(parent *Unit) []string {
	if parent == nil {
		return x.path()
	}
	if parent.state == StateLoaded {
		if pc, ok := parent.value.(PathCarrier); ok {
			if p, ok := pc.SearchPath(); ok {
				return p
			}
		}
		return nil
	}
	if parent.entry != "" && parent.child.Kind == ChildPackage {
		return []string{parent.child.Dir}
	}
	return nil
}

// unitFromRegistry wraps a registry entry: a materialized value yields a
// loaded wrapper, the Forbidden sentinel an unloaded one.
func (x *Explorer) unitFromRegistry(qname string, parent *Unit, v any) *Unit {
	u := &Unit{x: x, name: qname, parent: parent}
	if IsForbidden(v) {
		u.forbidden = true
	} else {
		u.state = StateLoaded
		u.value = v
	}
	x.units[qname] = u
	return u
}

// unitAt wraps a child found under a path entry, honoring the session
// cache and the registry.
func (x *Explorer) unitAt(parent *Unit, qname, location string, c Child) *Unit {
	if u, ok := x.units[qname]; ok {
		return u
	}
	if v, ok := x.registry.Lookup(qname); ok {
		return x.unitFromRegistry(qname, parent, v)
	}
	u := &Unit{x: x, name: qname, parent: parent, entry: location, child: c}
	x.units[qname] = u
	return u
}

// Walk returns a lazy, restartable traversal over the unit wrappers
// reachable from root (or from the whole search path when root is nil).
// Each call produces an independent sequence reflecting the current state
// of the search path and registry. Registry entries under the root are
// merged with path-entry scans without duplication; entries that do not
// exist or are not container-like are skipped, not reported. No sibling
// ordering is guaranteed.
func (x *Explorer) Walk(root *Unit, nested bool) iter.Seq[*Unit] {
	return func(yield func(*Unit) bool) {
		seen := make(map[string]bool)
		var emit func(u *Unit) bool
		emit = func(u *Unit) bool {
			if seen[u.name] {
				return true
			}
			seen[u.name] = true
			if !yield(u) {
				return false
			}
			if nested && u.IsPackage() {
				for _, c := range x.childUnits(u) {
					if !emit(c) {
						return false
					}
				}
			}
			return true
		}

		prefix := ""
		if root != nil {
			prefix = root.name + "."
		}
		for _, name := range x.registry.Names() {
			if prefix != "" && !strings.HasPrefix(name, prefix) {
				continue
			}
			rest := strings.TrimPrefix(name, prefix)
			if !nested && strings.Contains(rest, ".") {
				continue
			}
			u, ok := x.units[name]
			if !ok {
				v, _ := x.registry.Lookup(name)
				u = x.unitFromRegistry(name, root, v)
			}
			if !emit(u) {
				return
			}
		}

		if root == nil {
			for _, loc := range x.path() {
				r := x.resolvers.For(loc)
				children, err := r.List()
				if err != nil {
					continue
				}
				for _, c := range children {
					if !emit(x.unitAt(nil, c.Name, loc, c)) {
						return
					}
				}
			}
			return
		}
		for _, c := range x.childUnits(root) {
			if !emit(c) {
				return
			}
		}
	}
}

// childUnits enumerates the direct children of a namespace, merging
// registry entries with path-entry scans.
func (x *Explorer) childUnits(u *Unit) []*Unit {
	var out []*Unit
	seen := make(map[string]bool)

	prefix := u.name + "."
	for _, name := range x.registry.Names() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.Contains(strings.TrimPrefix(name, prefix), ".") {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		child, ok := x.units[name]
		if !ok {
			v, _ := x.registry.Lookup(name)
			child = x.unitFromRegistry(name, u, v)
		}
		out = append(out, child)
	}

	for _, loc := range x.searchLocations(u) {
		r := x.resolvers.For(loc)
		children, err := r.List()
		if err != nil {
			continue
		}
		for _, c := range children {
			qname := prefix + c.Name
			if seen[qname] {
				continue
			}
			seen[qname] = true
			out = append(out, x.unitAt(u, qname, loc, c))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
