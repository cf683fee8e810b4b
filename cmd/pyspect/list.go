// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"pyspect/pkg/pymod"

	"github.com/spf13/cobra"
)

var (
	// listNested enables recursion into packages.
	listNested bool

	listCmd = &cobra.Command{
		Use:   "list [namespace]",
		Short: "List modules reachable from the search path",
		Long: `List the modules and packages reachable from the effective search
path, or from a dotted namespace when one is given. Nothing is imported;
listing reads the storage directly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().BoolVarP(&listNested, "nested", "n", false, "recurse into packages")
}

func runList(c *cobra.Command, args []string) error {
	x := newExplorer()

	var root *pymod.Unit
	if len(args) == 1 {
		u, err := x.Resolve(args[0])
		if err != nil {
			explain(err)
			return err
		}
		root = u
	}

	for u := range x.Walk(root, listNested) {
		line := UnitStyle.Render(u.Name())
		if u.IsPackage() {
			line += SubtitleStyle.Render(" (package)")
		}
		if loc, ok := u.SourceLocation(); ok && verbose {
			line += SubtitleStyle.Render("  " + loc)
		}
		fmt.Fprintln(c.OutOrStdout(), line)
	}
	return nil
}
