// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"pyspect/internal/config"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect pyspect configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as TOML",
		RunE:  runConfigShow,
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Show the config file location",
		RunE:  runConfigPath,
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(c *cobra.Command, _ []string) error {
	// cfg was populated by initRootConfig; render it back as the file
	// format so the output can seed a config file.
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Fprint(c.OutOrStdout(), string(encoded))
	return nil
}

func runConfigPath(c *cobra.Command, _ []string) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("locating config directory: %w", err)
	}
	file := config.ConfigFileName + "." + config.ConfigFileExt
	fmt.Fprintln(c.OutOrStdout(), filepath.Join(dir, file))
	return nil
}
