// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that build module
// trees and zip archives on disk, reducing boilerplate and ensuring
// consistent error handling.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// MustWriteTree writes files (relative path to contents) under root,
// creating intermediate directories. The test fails immediately on any
// filesystem error.
//
// Usage:
//
//	dir := t.TempDir()
//	testutil.MustWriteTree(t, dir, map[string]string{
//	    "pkg/__init__.py": "",
//	    "pkg/util.py":     "x = 1\n",
//	})
func MustWriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

// MustWriteZip writes a zip archive at path whose members are given as
// slash-separated names mapped to contents. Member order follows the
// names slice so tests can control listing order inside the archive.
// The test fails immediately on any error.
func MustWriteZip(t testing.TB, path string, names []string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s to %s: %v", name, path, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("failed to write %s in %s: %v", name, path, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close %s: %v", path, err)
	}
}
