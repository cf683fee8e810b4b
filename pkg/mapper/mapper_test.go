// SPDX-License-Identifier: MPL-2.0

package mapper

import (
	"errors"
	"testing"
)

func TestDictMapper(t *testing.T) {
	t.Parallel()

	m := DictMapper{"os": "os-module", "sys": "sys-module"}

	v, err := m.Lookup("os")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if v != "os-module" {
		t.Errorf("Lookup(os) = %v", v)
	}
	if !m.Contains("sys") || m.Contains("json") {
		t.Errorf("Contains answers are wrong")
	}

	_, err = m.Lookup("json")
	if !errors.Is(err, ErrNoBinding) {
		t.Errorf("Lookup(json) error = %v, want ErrNoBinding", err)
	}
	var nb *NoBindingError
	if !errors.As(err, &nb) || nb.Name != "json" {
		t.Errorf("error %v does not carry the failed name", err)
	}
}

func TestCallableMapper(t *testing.T) {
	t.Parallel()

	m := NewCallableMapper(func(name string) (any, error) {
		switch name {
		case "ok":
			return 1, nil
		case "broken":
			return nil, errors.New("backend offline")
		}
		return nil, &NoBindingError{Name: name, Mapper: "test callable"}
	})

	if v, err := m.Lookup("ok"); err != nil || v != 1 {
		t.Errorf("Lookup(ok) = %v, %v", v, err)
	}
	if _, err := m.Lookup("missing"); !errors.Is(err, ErrNoBinding) {
		t.Errorf("Lookup(missing) error = %v, want ErrNoBinding", err)
	}

	// A backend failure is reported as a missing binding wrapping the cause.
	_, err := m.Lookup("broken")
	if !errors.Is(err, ErrNoBinding) {
		t.Errorf("Lookup(broken) error = %v, want ErrNoBinding", err)
	}
	if err == nil || err.Error() == "backend offline" {
		t.Errorf("cause should be wrapped, not returned bare: %v", err)
	}
}

func TestStackedMapper(t *testing.T) {
	t.Parallel()

	m := StackedMapper{
		DictMapper{"shared": "top"},
		DictMapper{"shared": "bottom", "only-bottom": 2},
	}

	if v, _ := m.Lookup("shared"); v != "top" {
		t.Errorf("Lookup(shared) = %v, want the first mapper's binding", v)
	}
	if v, _ := m.Lookup("only-bottom"); v != 2 {
		t.Errorf("Lookup(only-bottom) = %v, want 2", v)
	}
	if _, err := m.Lookup("nowhere"); !errors.Is(err, ErrNoBinding) {
		t.Errorf("Lookup(nowhere) error = %v, want ErrNoBinding", err)
	}
}

func TestExclusiveMapper(t *testing.T) {
	t.Parallel()

	base := DictMapper{"os": 1, "socket": 2}
	m := NewExclusiveMapper(base, []string{"socket"})

	if _, err := m.Lookup("os"); err != nil {
		t.Fatalf("Lookup(os) failed: %v", err)
	}
	if _, err := m.Lookup("socket"); !errors.Is(err, ErrNoBinding) {
		t.Errorf("blacklisted Lookup error = %v, want ErrNoBinding", err)
	}
	if m.Contains("socket") {
		t.Errorf("Contains(socket) = true for a blacklisted name")
	}

	// Overrides layered on top of the blacklist win over it.
	over := m.WithOverrides(map[string]any{"socket": "fake"})
	v, err := over.Lookup("socket")
	if err != nil {
		t.Fatalf("override Lookup failed: %v", err)
	}
	if v != "fake" {
		t.Errorf("override Lookup = %v, want fake", v)
	}
}

func TestEmptyMapper(t *testing.T) {
	t.Parallel()

	m := Empty()
	if m.Contains("anything") {
		t.Errorf("empty mapper claims to contain a name")
	}
	if _, err := m.Lookup("anything"); !errors.Is(err, ErrNoBinding) {
		t.Errorf("Lookup error = %v, want ErrNoBinding", err)
	}
}
