// SPDX-License-Identifier: MPL-2.0

// Package issue maps pyspect's error taxonomy to renderable, documented
// explanations for CLI display.
package issue

import (
	"errors"
	"sort"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"

	"pyspect/internal/config"
	"pyspect/internal/dag"
	"pyspect/pkg/pymod"
	"pyspect/pkg/pysyntax"
)

type (
	// Id identifies one issue type.
	Id int

	// MarkdownMsg is markdown text rendered for the terminal.
	MarkdownMsg string

	// Issue is one documented failure mode.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

const (
	// ModuleNotFoundId covers lookup failures on the search path.
	ModuleNotFoundId Id = iota + 1
	// MalformedDeclarationId covers export/import well-formedness failures.
	MalformedDeclarationId
	// ConfigLoadFailedId covers unreadable or invalid config files.
	ConfigLoadFailedId
	// PluginCycleId covers dependency cycles among plugins.
	PluginCycleId
)

// Id returns the issue identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the unrendered markdown text.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the issue for the terminal using the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found

The requested module could not be resolved against the search path or the
unit registry.

## Things you can try
- Check the spelling of the dotted name
- Inspect the effective search path:
~~~
$ pyspect config show
~~~
- Add the containing directory or zip archive with ` + "`--path`" + `
`,
	}

	malformedDeclarationIssue = &Issue{
		id: MalformedDeclarationId,
		mdMsg: `
# Malformed declaration

The module's export declaration (` + "`__all__`" + `) or an import statement
violates the well-formedness rules:

- ` + "`__all__`" + ` may be assigned at most once
- its value must be a literal list or tuple of identifier strings
- every exported name must be defined or imported in the module
- wildcard imports (` + "`from x import *`" + `) make the name set unknowable

Fix the declaration in the reported file and retry.
`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

The config file exists but could not be parsed. pyspect continues with
built-in defaults.

## Things you can try
- Validate the TOML syntax of your config file
- Show the expected location:
~~~
$ pyspect config show
~~~
`,
	}

	pluginCycleIssue = &Issue{
		id: PluginCycleId,
		mdMsg: `
# Plugin dependency cycle

The before/after declarations of the discovered plugins cannot be arranged
into an order. Break the cycle by removing one of the conflicting
dependencies.
`,
	}

	catalog = map[Id]*Issue{
		ModuleNotFoundId:       moduleNotFoundIssue,
		MalformedDeclarationId: malformedDeclarationIssue,
		ConfigLoadFailedId:     configLoadFailedIssue,
		PluginCycleId:          pluginCycleIssue,
	}
)

// ById returns the issue registered under id.
func ById(id Id) (*Issue, bool) {
	i, ok := catalog[id]
	return i, ok
}

// All returns every registered issue, ordered by id.
func All() []*Issue {
	issues := maps.Values(catalog)
	sort.Slice(issues, func(i, j int) bool { return issues[i].id < issues[j].id })
	return issues
}

// FromError maps an error from the core packages to its issue, if one is
// registered for its type.
func FromError(err error) (*Issue, bool) {
	var cycle *dag.CycleError
	switch {
	case errors.Is(err, pymod.ErrNotFound):
		return moduleNotFoundIssue, true
	case errors.Is(err, pysyntax.ErrMalformedDeclaration):
		return malformedDeclarationIssue, true
	case errors.Is(err, config.ErrInvalidConfig):
		return configLoadFailedIssue, true
	case errors.As(err, &cycle):
		return pluginCycleIssue, true
	}
	return nil, false
}
