// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pyspect.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"pyspect/internal/config"
	"pyspect/internal/issue"
	"pyspect/pkg/pymod"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// searchPath collects --path entries, prepended to the configured path
	searchPath []string

	// cfg is the loaded configuration, populated by initRootConfig.
	cfg = config.Default()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "pyspect",
		Short: "Inspect Python module graphs without importing them",
		Long: TitleStyle.Render("pyspect") + SubtitleStyle.Render(" - Inspect Python module graphs without importing them") + `

pyspect resolves dotted module names against a search path of
directories and zip archives, walks package hierarchies lazily, and
reads defined, imported and exported names straight from the source.
Nothing is ever executed.

` + SubtitleStyle.Render("Examples:") + `
  pyspect list --path ./src               List top-level modules
  pyspect list --path ./src mypkg         List modules under mypkg
  pyspect show --path ./src mypkg.util    Show names and exports
  pyspect plugins --path ./src myapp.ext  Discover and order plugins
  pyspect config show                     Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pyspect/config.toml)")
	rootCmd.PersistentFlags().StringSliceVarP(&searchPath, "path", "p", nil, "search path entry (repeatable; prepended to the configured path)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// initRootConfig reads in the config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err))
		return
	}
	cfg = loaded
	if !verbose {
		verbose = cfg.Verbose
	}
}

// formatErrorForDisplay formats an error for user display. Errors with a
// registered issue get the rendered explanation appended in verbose mode.
func formatErrorForDisplay(err error) string {
	if !verbose {
		return err.Error()
	}
	i, ok := issue.FromError(err)
	if !ok {
		return err.Error()
	}
	rendered, rerr := i.Render("dark")
	if rerr != nil {
		return err.Error()
	}
	return err.Error() + "\n" + rendered
}

// effectivePath merges --path entries with the configured search path.
// Flag entries come first so they win resolution.
func effectivePath() []string {
	return append(append([]string{}, searchPath...), cfg.SearchPath...)
}

// newLogger builds the slog logger handed to the explorer. Verbose mode
// lowers the level to debug.
func newLogger() *slog.Logger {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	return slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Prefix: "pyspect",
		Level:  level,
	}))
}

// newExplorer builds an inspect-only explorer over the effective search
// path. The CLI never materializes units, so no loader is installed.
func newExplorer() *pymod.Explorer {
	return pymod.New(pymod.Options{
		SearchPath: pymod.FixedPath(effectivePath()...),
		Logger:     newLogger(),
	})
}

// explain prints the rendered issue explanation for err, when one is
// registered and verbose mode is on.
func explain(err error) {
	if !verbose {
		return
	}
	i, ok := issue.FromError(err)
	if !ok {
		return
	}
	if rendered, rerr := i.Render("dark"); rerr == nil {
		fmt.Fprintln(os.Stderr, rendered)
	}
}
