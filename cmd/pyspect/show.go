// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"

	"pyspect/pkg/pysyntax"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
)

var showCmd = &cobra.Command{
	Use:   "show <module>",
	Short: "Show the names a module defines, imports and exports",
	Long: `Resolve a dotted module name and show its statically-known surface:
defined names (with class members), imported names, and the export set.
The module is analyzed from source, never imported.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(c *cobra.Command, args []string) error {
	x := newExplorer()
	u, err := x.Resolve(args[0])
	if err != nil {
		explain(err)
		return err
	}

	out := c.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render(u.Name()))
	if loc, ok := u.SourceLocation(); ok {
		fmt.Fprintln(out, SubtitleStyle.Render("source: ")+UnitStyle.Render(loc))
	}

	info, err := u.Analysis()
	if err != nil {
		explain(err)
		return err
	}

	fmt.Fprintln(out, TitleStyle.Render("defined"))
	defined := maps.Keys(info.Defined)
	sort.Strings(defined)
	for _, name := range defined {
		fmt.Fprintln(out, "  "+name)
		if verbose {
			printMembers(c, info.Defined[name], "    ")
		}
	}

	fmt.Fprintln(out, TitleStyle.Render("imported"))
	for _, fqn := range info.Imported {
		fmt.Fprintln(out, "  "+fqn)
	}

	header := "exported"
	if !info.ExportsDeclared {
		header += SubtitleStyle.Render(" (no declaration; defaulting to defined names)")
	}
	fmt.Fprintln(out, TitleStyle.Render(header))
	for _, name := range info.Exports {
		fmt.Fprintln(out, "  "+name)
	}
	return nil
}

// printMembers prints a container's statically-known members, recursively.
func printMembers(c *cobra.Command, n *pysyntax.Name, indent string) {
	if n == nil || !n.Container {
		return
	}
	members := maps.Keys(n.Members)
	sort.Strings(members)
	for _, m := range members {
		fmt.Fprintln(c.OutOrStdout(), indent+SubtitleStyle.Render(m))
		printMembers(c, n.Members[m], indent+"  ")
	}
}
