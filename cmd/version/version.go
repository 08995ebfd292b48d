// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/forumsearch/pkg/utils"
)

type VersionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the forumsearch version",
		Long:  "Print the forumsearch version, commit and build details.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version")

	return cmd
}

func (c *VersionCommander) run(w io.Writer) error {
	if c.short {
		_, err := fmt.Fprintln(w, utils.Version)
		return err
	}

	_, err := fmt.Fprintf(w, "forumsearch %s\ncommit: %s\nbuilt: %s\ngo: %s %s/%s\n",
		utils.Version, utils.Sha, utils.Buildtime,
		runtime.Version(), runtime.GOOS, runtime.GOARCH,
	)
	return err
}
