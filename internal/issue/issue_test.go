// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"testing"

	"pyspect/internal/config"
	"pyspect/internal/dag"
	"pyspect/pkg/pymod"
	"pyspect/pkg/pysyntax"
)

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	ids := []Id{ModuleNotFoundId, MalformedDeclarationId, ConfigLoadFailedId, PluginCycleId}
	for _, id := range ids {
		i, ok := ById(id)
		if !ok {
			t.Errorf("ById(%d) found nothing", id)
			continue
		}
		if i.Id() != id {
			t.Errorf("ById(%d).Id() = %d", id, i.Id())
		}
		if i.MarkdownMsg() == "" {
			t.Errorf("issue %d has no message", id)
		}
	}

	if _, ok := ById(Id(9999)); ok {
		t.Errorf("ById found an unregistered id")
	}

	all := All()
	if len(all) != len(ids) {
		t.Errorf("All() returned %d issues, want %d", len(all), len(ids))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Id() >= all[i].Id() {
			t.Errorf("All() is not ordered by id")
		}
	}
}

func TestFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Id
	}{
		{"not found", &pymod.NotFoundError{Name: "ghost"}, ModuleNotFoundId},
		{"wrapped not found", fmt.Errorf("resolving: %w", &pymod.NotFoundError{Name: "ghost"}), ModuleNotFoundId},
		{"malformed declaration", &pysyntax.MalformedDeclarationError{File: "m.py", Reason: "duplicate"}, MalformedDeclarationId},
		{"invalid config", fmt.Errorf("%w: bad toml", config.ErrInvalidConfig), ConfigLoadFailedId},
		{"plugin cycle", &dag.CycleError{Members: []string{"a", "b"}}, PluginCycleId},
		{"wrapped plugin cycle", fmt.Errorf("sorting plugins: %w", &dag.CycleError{Members: []string{"a"}}), PluginCycleId},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			i, ok := FromError(tt.err)
			if !ok {
				t.Fatalf("FromError(%v) found nothing", tt.err)
			}
			if i.Id() != tt.want {
				t.Errorf("FromError(%v) = issue %d, want %d", tt.err, i.Id(), tt.want)
			}
		})
	}

	if _, ok := FromError(errors.New("unrelated")); ok {
		t.Errorf("FromError matched an unrelated error")
	}
}

func TestRenderUsesGlamour(t *testing.T) {
	t.Parallel()

	i, _ := ById(ModuleNotFoundId)
	out, err := i.Render("notty")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out == "" {
		t.Errorf("Render produced no output")
	}
}
