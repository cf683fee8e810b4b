// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"pyspect/internal/plugin"

	"github.com/spf13/cobra"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins <namespace>",
	Short: "Discover and order plugins under a namespace",
	Long: `Walk the modules under a dotted plugin namespace, collect every
exported name as a plugin, and arrange the result so declared
before/after dependencies are satisfied. The enable-list from the
configuration (supporting "*" and "-name" entries) filters the output.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlugins,
}

func runPlugins(c *cobra.Command, args []string) error {
	x := newExplorer()
	logger := newLogger()

	discovered, diags, err := plugin.Discover(x, args[0], logger)
	if err != nil {
		explain(err)
		return err
	}
	for _, d := range diags {
		fmt.Fprintln(c.ErrOrStderr(), WarningStyle.Render("Warning: ")+d.Message)
	}

	arranged, err := plugin.Sort(discovered)
	if err != nil {
		explain(err)
		return err
	}

	available := make([]string, 0, len(arranged))
	byName := make(map[string]*plugin.Descriptor, len(arranged))
	for _, d := range arranged {
		available = append(available, d.Name)
		byName[d.Name] = d
	}

	for _, name := range plugin.ExpandNames(available, cfg.Plugins) {
		d, ok := byName[name]
		if !ok {
			fmt.Fprintln(c.ErrOrStderr(), WarningStyle.Render("Warning: ")+fmt.Sprintf("enabled plugin %q was not discovered", name))
			continue
		}
		line := UnitStyle.Render(d.Name) + SubtitleStyle.Render("  "+d.Module)
		fmt.Fprintln(c.OutOrStdout(), line)
	}
	return nil
}
