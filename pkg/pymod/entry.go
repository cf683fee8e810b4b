// SPDX-License-Identifier: MPL-2.0

package pymod

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// sourceSuffix is the Python source form.
	sourceSuffix = ".py"
	// compiledSuffix is the pre-compiled form. When both forms exist for
	// one base name, resolution must select the source form regardless of
	// listing order.
	compiledSuffix = ".pyc"
	// initBase is the file that marks a directory as a package and holds
	// its module-level source.
	initBase = "__init__"
)

// childBuilder accumulates children from an uninterpreted storage listing,
// enforcing the source-over-compiled preference independently of the order
// entries arrive in.
type childBuilder struct {
	children map[string]*Child
}

func newChildBuilder() *childBuilder {
	return &childBuilder{children: make(map[string]*Child)}
}

// addModule records a module form. A source form always displaces a
// previously seen compiled form, and is never displaced by one.
func (b *childBuilder) addModule(name, source string, compiled bool) {
	existing, ok := b.children[name]
	if !ok {
		b.children[name] = &Child{Name: name, Kind: ChildModule, Compiled: compiled}
		if compiled {
			b.children[name].Source = ""
		} else {
			b.children[name].Source = source
		}
		return
	}
	if existing.Kind == ChildPackage {
		// A package shadows a same-named module file.
		return
	}
	if existing.Compiled && !compiled {
		existing.Source = source
		existing.Compiled = false
	}
}

// addPackage records a namespace container. Packages shadow same-named
// module files.
func (b *childBuilder) addPackage(name, dir, initSource string, initCompiled bool) {
	b.children[name] = &Child{
		Name:     name,
		Kind:     ChildPackage,
		Source:   initSource,
		Dir:      dir,
		Compiled: initCompiled,
	}
}

// list returns the accumulated children sorted by name.
func (b *childBuilder) list() []Child {
	out := make([]Child, 0, len(b.children))
	for _, c := range b.children {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// moduleBase splits a file name into its module base name and whether it is
// the compiled form. ok is false for files that are not module forms.
func moduleBase(file string) (base string, compiled, ok bool) {
	switch {
	case strings.HasSuffix(file, sourceSuffix):
		return strings.TrimSuffix(file, sourceSuffix), false, true
	case strings.HasSuffix(file, compiledSuffix):
		return strings.TrimSuffix(file, compiledSuffix), true, true
	}
	return "", false, false
}

// DirHook binds filesystem directories to the directory resolver. It
// declines locations that do not exist or are not directories.
func DirHook(location string) (Resolver, bool) {
	info, err := os.Stat(location)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	return &dirResolver{dir: location}, true
}

// dirResolver enumerates units stored in a filesystem directory.
type dirResolver struct {
	dir string
}

// Kind implements Resolver.
func (r *dirResolver) Kind() StorageKind { return StorageDirectory }

// Location implements Resolver.
func (r *dirResolver) Location() string { return r.dir }

// Find implements Resolver. The source form is probed before the compiled
// form, and a package directory before either.
func (r *dirResolver) Find(name string) (Child, error) {
	if c, ok := r.packageAt(name); ok {
		return c, nil
	}
	if src := filepath.Join(r.dir, name+sourceSuffix); isFile(src) {
		return Child{Name: name, Kind: ChildModule, Source: src}, nil
	}
	if compiled := filepath.Join(r.dir, name+compiledSuffix); isFile(compiled) {
		return Child{Name: name, Kind: ChildModule, Compiled: true}, nil
	}
	return Child{}, &NotFoundError{Name: name}
}

// List implements Resolver.
func (r *dirResolver) List() ([]Child, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.dir, err)
	}
	b := newChildBuilder()
	for _, entry := range entries {
		if entry.IsDir() {
			if c, ok := r.packageAt(entry.Name()); ok {
				b.addPackage(c.Name, c.Dir, c.Source, c.Compiled)
			}
			continue
		}
		if base, compiled, ok := moduleBase(entry.Name()); ok && base != initBase {
			b.addModule(base, filepath.Join(r.dir, entry.Name()), compiled)
		}
	}
	return b.list(), nil
}

// ReadSource implements Resolver.
func (r *dirResolver) ReadSource(c Child) ([]byte, error) {
	if c.Source == "" {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrNoSource)
	}
	return os.ReadFile(c.Source)
}

// packageAt reports whether name is a package directory: a subdirectory
// holding an __init__ source or compiled form.
func (r *dirResolver) packageAt(name string) (Child, bool) {
	dir := filepath.Join(r.dir, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return Child{}, false
	}
	if src := filepath.Join(dir, initBase+sourceSuffix); isFile(src) {
		return Child{Name: name, Kind: ChildPackage, Source: src, Dir: dir}, true
	}
	if compiled := filepath.Join(dir, initBase+compiledSuffix); isFile(compiled) {
		return Child{Name: name, Kind: ChildPackage, Dir: dir, Compiled: true}, true
	}
	return Child{}, false
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// ZipHook binds zip archives to the archive resolver. The location may name
// the archive itself or a directory inside it (archive.zip/pkg/sub); the
// hook walks up the location until it finds an existing .zip file.
func ZipHook(location string) (Resolver, bool) {
	archive := location
	prefix := ""
	for {
		info, err := os.Stat(archive)
		if err == nil {
			if info.IsDir() || !strings.EqualFold(filepath.Ext(archive), ".zip") {
				return nil, false
			}
			return &zipResolver{archive: archive, prefix: prefix}, true
		}
		parent := filepath.Dir(archive)
		if parent == archive {
			return nil, false
		}
		prefix = path.Join(filepath.ToSlash(filepath.Base(archive)), prefix)
		archive = parent
	}
}

// zipResolver enumerates units stored in a zip archive. It implements the
// same contract as the directory resolver; callers never special-case it.
type zipResolver struct {
	archive string
	// prefix is the interior directory, slash-separated, without a
	// trailing slash. Empty at the archive root.
	prefix string
}

// Kind implements Resolver.
func (r *zipResolver) Kind() StorageKind { return StorageArchive }

// Location implements Resolver.
func (r *zipResolver) Location() string {
	if r.prefix == "" {
		return r.archive
	}
	return filepath.Join(r.archive, filepath.FromSlash(r.prefix))
}

// memberPrefix returns the archive-member prefix including trailing slash.
func (r *zipResolver) memberPrefix() string {
	if r.prefix == "" {
		return ""
	}
	return r.prefix + "/"
}

// List implements Resolver.
func (r *zipResolver) List() ([]Child, error) {
	zr, err := zip.OpenReader(r.archive)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", r.archive, err)
	}
	defer zr.Close()

	b := newChildBuilder()
	prefix := r.memberPrefix()
	type initForms struct {
		source   string
		compiled bool
		seen     bool
	}
	subdirs := make(map[string]*initForms)
	for _, f := range zr.File {
		name := f.Name
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if rest == "" {
			continue
		}
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			sub := rest[:idx]
			forms, ok := subdirs[sub]
			if !ok {
				forms = &initForms{}
				subdirs[sub] = forms
			}
			switch rest[idx+1:] {
			case initBase + sourceSuffix:
				forms.source = name
				forms.seen = true
			case initBase + compiledSuffix:
				if forms.source == "" {
					forms.compiled = true
				}
				forms.seen = true
			}
			continue
		}
		if base, compiled, ok := moduleBase(rest); ok && base != initBase {
			b.addModule(base, name, compiled)
		}
	}
	for sub, forms := range subdirs {
		if !forms.seen {
			// Directories without an __init__ form are not packages.
			continue
		}
		dir := filepath.Join(r.archive, filepath.FromSlash(path.Join(r.prefix, sub)))
		b.addPackage(sub, dir, forms.source, forms.source == "" && forms.compiled)
	}
	return b.list(), nil
}

// Find implements Resolver.
func (r *zipResolver) Find(name string) (Child, error) {
	children, err := r.List()
	if err != nil {
		return Child{}, err
	}
	for _, c := range children {
		if c.Name == name {
			return c, nil
		}
	}
	return Child{}, &NotFoundError{Name: name}
}

// ReadSource implements Resolver. c.Source is the member path inside the
// archive.
func (r *zipResolver) ReadSource(c Child) ([]byte, error) {
	if c.Source == "" {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrNoSource)
	}
	zr, err := zip.OpenReader(r.archive)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", r.archive, err)
	}
	defer zr.Close()
	f, err := zr.Open(c.Source)
	if err != nil {
		return nil, fmt.Errorf("opening archive member %s: %w", c.Source, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
