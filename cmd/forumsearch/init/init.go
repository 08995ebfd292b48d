// Package initcmder provides the init command for initializing a local
// .forumsearch directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/forumsearch/pkg/config"
	"github.com/papercomputeco/forumsearch/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .forumsearch/ directory in the current working directory.

Creates a local .forumsearch/ directory that takes precedence over the default
~/.forumsearch/ directory for configuration.

Use --preset to also write a config.toml for a storage backend:
  postgres   pgvector database (default backend)
  sqlite     local sqlite-vec database file
  qdrant     Qdrant collections

Examples:
  forumsearch init
  forumsearch init --preset sqlite`

const initShortDesc string = "Initialize a local .forumsearch/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "",
		fmt.Sprintf("Write a config.toml for a storage preset (%s)", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func runInit(w io.Writer, preset string) error {
	// Resolve the preset first so a typo leaves nothing behind.
	var cfg *config.Config
	if preset != "" {
		var err error
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return err
		}
	}

	dir, created, err := dotdir.NewManager().InitLocal()
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(w, "Initialized .forumsearch directory: %s\n", dir)
	} else {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
	}

	if cfg == nil {
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s preset: %s\n", preset, cfger.GetTarget())
	return nil
}
