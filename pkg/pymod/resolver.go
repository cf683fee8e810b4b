// SPDX-License-Identifier: MPL-2.0

package pymod

type (
	// StorageKind is the closed enumeration of path-entry storage kinds.
	StorageKind int

	// ChildKind classifies a path entry's child as a leaf module or a
	// namespace container.
	ChildKind int

	// Child describes one child of a path entry.
	Child struct {
		// Name is the child's local (unqualified) name.
		Name string
		// Kind classifies the child.
		Kind ChildKind
		// Source locates the child's source text: the module file, or the
		// package's __init__ file. For archive entries this is the member
		// path inside the archive. Empty when only a compiled form exists.
		Source string
		// Dir is the child's own container location (packages only). It is
		// usable as a search-path location in its own right.
		Dir string
		// Compiled reports that only the pre-compiled form is present.
		Compiled bool
	}

	// Resolver enumerates and resolves the units stored under one
	// search-path location. Implementations exist per storage kind;
	// unrecognized kinds are served by a stub whose every inspection
	// operation fails with CapabilityError.
	Resolver interface {
		// Kind identifies the underlying storage.
		Kind() StorageKind
		// Location names the underlying storage location.
		Location() string
		// Find resolves a local name to a child descriptor.
		Find(name string) (Child, error)
		// List enumerates children. Each call re-reads the backing store,
		// so a fresh traversal observes current state.
		List() ([]Child, error)
		// ReadSource returns the source text of one of this entry's
		// children.
		ReadSource(c Child) ([]byte, error)
	}

	// Hook inspects a location string and either produces a Resolver bound
	// to it or declines.
	Hook func(location string) (Resolver, bool)

	// Resolvers binds locations to resolvers through an ordered hook list,
	// caching bindings by location string (the importer cache). Two
	// lookups of the same location string always yield the same Resolver.
	Resolvers struct {
		hooks []Hook
		cache map[string]Resolver
	}
)

const (
	// StorageDirectory is a filesystem directory.
	StorageDirectory StorageKind = iota
	// StorageArchive is a zip archive (or a directory inside one).
	StorageArchive
	// StorageUnknown is a location no hook recognized.
	StorageUnknown
)

const (
	// ChildModule is a leaf unit with a single source location.
	ChildModule ChildKind = iota
	// ChildPackage is a namespace container with a sub-search-path.
	ChildPackage
)

// String returns a human-readable storage kind name.
func (k StorageKind) String() string {
	switch k {
	case StorageDirectory:
		return "directory"
	case StorageArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// DefaultHooks is the standard hook list: directories, then zip archives.
var DefaultHooks = []Hook{DirHook, ZipHook}

// NewResolvers creates a resolver registry. A nil hook list uses
// DefaultHooks; a nil cache allocates a fresh one. Passing a shared cache
// lets the host observe and pre-seed bindings.
func NewResolvers(hooks []Hook, cache map[string]Resolver) *Resolvers {
	if hooks == nil {
		hooks = DefaultHooks
	}
	if cache == nil {
		cache = make(map[string]Resolver)
	}
	return &Resolvers{hooks: hooks, cache: cache}
}

// For returns the Resolver bound to location, consulting the cache first
// and populating it on miss. Locations no hook recognizes are bound to the
// stub resolver so later operations degrade instead of crashing.
func (r *Resolvers) For(location string) Resolver {
	if res, ok := r.cache[location]; ok {
		return res
	}
	res := r.direct(location)
	r.cache[location] = res
	return res
}

// Cached returns the Resolver already bound to location, if any. Used by
// the explorer's importer-cache consistency check.
func (r *Resolvers) Cached(location string) (Resolver, bool) {
	res, ok := r.cache[location]
	return res, ok
}

// direct runs the hook list without touching the cache.
func (r *Resolvers) direct(location string) Resolver {
	for _, hook := range r.hooks {
		if res, ok := hook(location); ok {
			return res
		}
	}
	return &stubResolver{location: location}
}

// stubResolver serves locations whose storage kind no hook recognized.
type stubResolver struct {
	location string
}

// Kind implements Resolver.
func (s *stubResolver) Kind() StorageKind { return StorageUnknown }

// Location implements Resolver.
func (s *stubResolver) Location() string { return s.location }

// Find implements Resolver.
func (s *stubResolver) Find(name string) (Child, error) {
	return Child{}, &CapabilityError{Location: s.location, Op: "find " + name}
}

// List implements Resolver.
func (s *stubResolver) List() ([]Child, error) {
	return nil, &CapabilityError{Location: s.location, Op: "list"}
}

// ReadSource implements Resolver.
func (s *stubResolver) ReadSource(c Child) ([]byte, error) {
	return nil, &CapabilityError{Location: s.location, Op: "read " + c.Name}
}
