// SPDX-License-Identifier: MPL-2.0

package pymod

import (
	"errors"
	"path/filepath"
	"testing"

	"pyspect/internal/testutil"
)

func TestChildBuilderSourcePreference(t *testing.T) {
	t.Parallel()

	t.Run("compiled then source", func(t *testing.T) {
		t.Parallel()
		b := newChildBuilder()
		b.addModule("mod", "", true)
		b.addModule("mod", "mod.py", false)
		children := b.list()
		if len(children) != 1 {
			t.Fatalf("len(children) = %d, want 1", len(children))
		}
		if children[0].Compiled || children[0].Source != "mod.py" {
			t.Errorf("child = %+v, want source form", children[0])
		}
	})

	t.Run("source then compiled", func(t *testing.T) {
		t.Parallel()
		b := newChildBuilder()
		b.addModule("mod", "mod.py", false)
		b.addModule("mod", "", true)
		children := b.list()
		if len(children) != 1 {
			t.Fatalf("len(children) = %d, want 1", len(children))
		}
		if children[0].Compiled || children[0].Source != "mod.py" {
			t.Errorf("child = %+v, want source form", children[0])
		}
	})

	t.Run("package shadows module", func(t *testing.T) {
		t.Parallel()
		b := newChildBuilder()
		b.addPackage("mod", "mod", "mod/__init__.py", false)
		b.addModule("mod", "mod.py", false)
		children := b.list()
		if len(children) != 1 {
			t.Fatalf("len(children) = %d, want 1", len(children))
		}
		if children[0].Kind != ChildPackage {
			t.Errorf("child kind = %v, want package", children[0].Kind)
		}
	})
}

func TestDirResolver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteTree(t, dir, map[string]string{
		"solo.py":          "x = 1\n",
		"both.py":          "y = 2\n",
		"both.pyc":         "\x00\x01",
		"onlycompiled.pyc": "\x00\x01",
		"pkg/__init__.py":  "",
		"pkg/inner.py":     "z = 3\n",
		"notes.txt":        "not a module",
		"plain/readme.md":  "a directory without an init form",
	})

	r, ok := DirHook(dir)
	if !ok {
		t.Fatalf("DirHook declined a directory")
	}
	if r.Kind() != StorageDirectory {
		t.Errorf("Kind = %v, want directory", r.Kind())
	}

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		children, err := r.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		byName := make(map[string]Child, len(children))
		for _, c := range children {
			byName[c.Name] = c
		}
		if len(children) != 4 {
			t.Fatalf("List returned %d children, want 4: %v", len(children), children)
		}
		if c := byName["both"]; c.Compiled || c.Source == "" {
			t.Errorf("both = %+v, want source form", c)
		}
		if c := byName["onlycompiled"]; !c.Compiled || c.Source != "" {
			t.Errorf("onlycompiled = %+v, want compiled-only form", c)
		}
		if c := byName["pkg"]; c.Kind != ChildPackage || c.Dir != filepath.Join(dir, "pkg") {
			t.Errorf("pkg = %+v, want package child", c)
		}
		if _, ok := byName["plain"]; ok {
			t.Errorf("directory without an init form was listed as a package")
		}
	})

	t.Run("find prefers source", func(t *testing.T) {
		t.Parallel()
		c, err := r.Find("both")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if c.Compiled || c.Source != filepath.Join(dir, "both.py") {
			t.Errorf("Find(both) = %+v, want source form", c)
		}
	})

	t.Run("find missing", func(t *testing.T) {
		t.Parallel()
		_, err := r.Find("absent")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Find(absent) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("read source", func(t *testing.T) {
		t.Parallel()
		c, err := r.Find("solo")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		src, err := r.ReadSource(c)
		if err != nil {
			t.Fatalf("ReadSource failed: %v", err)
		}
		if string(src) != "x = 1\n" {
			t.Errorf("source = %q", src)
		}
	})

	t.Run("read compiled-only", func(t *testing.T) {
		t.Parallel()
		c, err := r.Find("onlycompiled")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if _, err := r.ReadSource(c); !errors.Is(err, ErrNoSource) {
			t.Errorf("ReadSource error = %v, want ErrNoSource", err)
		}
	})
}

func TestZipResolver(t *testing.T) {
	t.Parallel()

	archive := filepath.Join(t.TempDir(), "lib.zip")
	// Compiled members deliberately precede their source forms so the
	// preference cannot depend on listing order.
	testutil.MustWriteZip(t, archive, []string{
		"both.pyc",
		"both.py",
		"solo.py",
		"pkg/__init__.py",
		"pkg/inner.py",
		"loose/readme.md",
	}, map[string]string{
		"both.pyc":        "\x00\x01",
		"both.py":         "y = 2\n",
		"solo.py":         "x = 1\n",
		"pkg/__init__.py": "",
		"pkg/inner.py":    "z = 3\n",
		"loose/readme.md": "no init form here",
	})

	r, ok := ZipHook(archive)
	if !ok {
		t.Fatalf("ZipHook declined a zip archive")
	}
	if r.Kind() != StorageArchive {
		t.Errorf("Kind = %v, want archive", r.Kind())
	}

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		children, err := r.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		byName := make(map[string]Child, len(children))
		for _, c := range children {
			byName[c.Name] = c
		}
		if len(children) != 3 {
			t.Fatalf("List returned %d children, want 3: %v", len(children), children)
		}
		if c := byName["both"]; c.Compiled || c.Source != "both.py" {
			t.Errorf("both = %+v, want source form despite listing order", c)
		}
		if c := byName["pkg"]; c.Kind != ChildPackage {
			t.Errorf("pkg = %+v, want package child", c)
		}
		if _, ok := byName["loose"]; ok {
			t.Errorf("archive directory without an init form was listed as a package")
		}
	})

	t.Run("read source", func(t *testing.T) {
		t.Parallel()
		c, err := r.Find("solo")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		src, err := r.ReadSource(c)
		if err != nil {
			t.Fatalf("ReadSource failed: %v", err)
		}
		if string(src) != "x = 1\n" {
			t.Errorf("source = %q", src)
		}
	})

	t.Run("interior location", func(t *testing.T) {
		t.Parallel()
		interior, ok := ZipHook(filepath.Join(archive, "pkg"))
		if !ok {
			t.Fatalf("ZipHook declined an interior archive location")
		}
		children, err := interior.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(children) != 1 || children[0].Name != "inner" {
			t.Fatalf("interior children = %v, want [inner]", children)
		}
		src, err := interior.ReadSource(children[0])
		if err != nil {
			t.Fatalf("ReadSource failed: %v", err)
		}
		if string(src) != "z = 3\n" {
			t.Errorf("source = %q", src)
		}
	})

	t.Run("declines directories and other files", func(t *testing.T) {
		t.Parallel()
		if _, ok := ZipHook(t.TempDir()); ok {
			t.Errorf("ZipHook accepted a plain directory")
		}
	})
}
