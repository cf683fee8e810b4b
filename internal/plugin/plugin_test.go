// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"pyspect/internal/testutil"
	"pyspect/pkg/pymod"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func descriptorNames(plugins []*Descriptor) []string {
	names := make([]string, 0, len(plugins))
	for _, d := range plugins {
		names = append(names, d.Name)
	}
	return names
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteTree(t, dir, map[string]string{
		"ext/__init__.py":     "",
		"ext/alpha.py":        "def ap():\n    pass\n\ndef shared():\n    pass\n\n__all__ = ['ap', 'shared']\n",
		"ext/beta.py":         "def bp():\n    pass\n\ndef shared():\n    pass\n\n__all__ = ['bp', 'shared']\n",
		"ext/sub/__init__.py": "",
		"ext/sub/gamma.py":    "def gp():\n    pass\n",
	})

	x := pymod.New(pymod.Options{SearchPath: pymod.FixedPath(dir), Logger: quietLogger()})
	plugins, diags, err := Discover(x, "ext", quietLogger())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	// Walk order is alphabetical per namespace, so alpha's "shared" wins
	// over beta's; beta's duplicate is discarded.
	want := []string{"ap", "shared", "bp", "gp"}
	if got := descriptorNames(plugins); !reflect.DeepEqual(got, want) {
		t.Errorf("plugins = %v, want %v", got, want)
	}
	byName := make(map[string]*Descriptor)
	for _, d := range plugins {
		byName[d.Name] = d
	}
	if byName["shared"].Module != "ext.alpha" {
		t.Errorf("shared came from %s, want ext.alpha", byName["shared"].Module)
	}
	if byName["gp"].Module != "ext.sub.gamma" {
		t.Errorf("gp came from %s, want ext.sub.gamma", byName["gp"].Module)
	}
}

func TestDiscoverSkipsBrokenModules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteTree(t, dir, map[string]string{
		"ext/__init__.py": "",
		"ext/bad.py":      "__all__ = ['missing']\n",
		"ext/good.py":     "def gp():\n    pass\n",
	})

	x := pymod.New(pymod.Options{SearchPath: pymod.FixedPath(dir), Logger: quietLogger()})
	plugins, diags, err := Discover(x, "ext", quietLogger())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if got := descriptorNames(plugins); !reflect.DeepEqual(got, []string{"gp"}) {
		t.Errorf("plugins = %v, want [gp]", got)
	}
	if len(diags) != 1 || diags[0].Code != "plugin_module_skipped" {
		t.Fatalf("diagnostics = %+v, want one plugin_module_skipped warning", diags)
	}
}

func TestDiscoverReadsLiveDependencies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteTree(t, dir, map[string]string{"ext/__init__.py": ""})

	registry := pymod.MapRegistry{
		"ext.live": pymod.NewLive(map[string]any{
			"__all__": []string{"lp"},
			"lp": pymod.NewLive(map[string]any{
				"before": []string{"other"},
				"after":  []string{"tail"},
			}),
		}),
	}
	x := pymod.New(pymod.Options{
		SearchPath: pymod.FixedPath(dir),
		Registry:   registry,
		Logger:     quietLogger(),
	})

	plugins, _, err := Discover(x, "ext", quietLogger())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(plugins) != 1 || plugins[0].Name != "lp" {
		t.Fatalf("plugins = %v, want [lp]", descriptorNames(plugins))
	}
	if !reflect.DeepEqual(plugins[0].Before, []string{"other"}) {
		t.Errorf("Before = %v, want [other]", plugins[0].Before)
	}
	if !reflect.DeepEqual(plugins[0].After, []string{"tail"}) {
		t.Errorf("After = %v, want [tail]", plugins[0].After)
	}
}

func TestDiscoverUnknownNamespace(t *testing.T) {
	t.Parallel()

	x := pymod.New(pymod.Options{Logger: quietLogger()})
	if _, _, err := Discover(x, "nowhere", quietLogger()); !errors.Is(err, pymod.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	ok := &Descriptor{Name: "p", Before: []string{"a"}, After: []string{"b"}}
	if err := Validate(ok); err != nil {
		t.Errorf("Validate failed on a consistent descriptor: %v", err)
	}

	bad := &Descriptor{Name: "p", Before: []string{"a", "b"}, After: []string{"b"}}
	err := Validate(bad)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("error = %v, want ErrInvariant", err)
	}
	var inv *InvariantError
	if !errors.As(err, &inv) || !reflect.DeepEqual(inv.Conflicts, []string{"b"}) {
		t.Errorf("conflicts = %+v, want [b]", inv)
	}
}

func TestSort(t *testing.T) {
	t.Parallel()

	t.Run("before and after", func(t *testing.T) {
		t.Parallel()
		plugins := []*Descriptor{
			{Name: "app", Before: []string{"db"}},
			{Name: "db", Before: []string{"log"}},
			{Name: "log", After: []string{"db"}},
		}
		arranged, err := Sort(plugins)
		if err != nil {
			t.Fatalf("Sort failed: %v", err)
		}
		want := []string{"log", "db", "app"}
		if got := descriptorNames(arranged); !reflect.DeepEqual(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("unknown dependencies discarded", func(t *testing.T) {
		t.Parallel()
		plugins := []*Descriptor{
			{Name: "a", Before: []string{"never-loaded"}},
			{Name: "b", After: []string{"also-absent"}},
		}
		arranged, err := Sort(plugins)
		if err != nil {
			t.Fatalf("Sort failed: %v", err)
		}
		if got := descriptorNames(arranged); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("order = %v, want discovery order", got)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		t.Parallel()
		plugins := []*Descriptor{
			{Name: "a", Before: []string{"b"}},
			{Name: "b", Before: []string{"a"}},
		}
		if _, err := Sort(plugins); err == nil {
			t.Errorf("Sort succeeded on a dependency cycle")
		}
	})

	t.Run("invariant violation", func(t *testing.T) {
		t.Parallel()
		plugins := []*Descriptor{
			{Name: "p", Before: []string{"q"}, After: []string{"q"}},
			{Name: "q"},
		}
		if _, err := Sort(plugins); !errors.Is(err, ErrInvariant) {
			t.Errorf("error = %v, want ErrInvariant", err)
		}
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteTree(t, dir, map[string]string{
		"ext/__init__.py": "",
		"ext/impl.py": `
class provider:
    name = "impl"
    def handle(self):
        pass
`,
	})

	x := pymod.New(pymod.Options{SearchPath: pymod.FixedPath(dir), Logger: quietLogger()})
	u, err := x.Resolve("ext.impl")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	d := &Descriptor{Name: "provider", Module: "ext.impl", Unit: u}

	if err := Verify(d, []string{"name", "handle"}); err != nil {
		t.Errorf("Verify failed on a complete plugin: %v", err)
	}

	err = Verify(d, []string{"name", "teardown"})
	if !errors.Is(err, ErrVerify) {
		t.Fatalf("error = %v, want ErrVerify", err)
	}
	var ve *VerifyError
	if !errors.As(err, &ve) || !reflect.DeepEqual(ve.Missing, []string{"teardown"}) {
		t.Errorf("missing = %+v, want [teardown]", ve)
	}
}

func TestExpandNames(t *testing.T) {
	t.Parallel()

	available := []string{"alpha", "beta", "gamma"}
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"wildcard", []string{"*"}, []string{"alpha", "beta", "gamma"}},
		{"wildcard with disable", []string{"*", "-beta"}, []string{"alpha", "gamma"}},
		{"explicit list", []string{"gamma", "alpha"}, []string{"gamma", "alpha"}},
		{"explicit with disable", []string{"alpha", "beta", "-beta"}, []string{"alpha"}},
		{"empty", nil, nil},
		{"disable everything", []string{"*", "-alpha", "-beta", "-gamma"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExpandNames(available, tt.names)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandNames(%v) = %v, want %v", tt.names, got, tt.want)
			}
		})
	}
}
