// Package forumsearchcmder is the root forumsearch command.
package forumsearchcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/forumsearch/cmd/forumsearch/config"
	initcmder "github.com/papercomputeco/forumsearch/cmd/forumsearch/init"
	searchcmder "github.com/papercomputeco/forumsearch/cmd/forumsearch/search"
	servecmder "github.com/papercomputeco/forumsearch/cmd/forumsearch/serve"
	versioncmder "github.com/papercomputeco/forumsearch/cmd/version"
)

const forumsearchLongDesc string = `forumsearch is semantic search over forum posts and comments for
tool-calling agents.

Run the MCP server using:
  forumsearch serve

Query a running server using:
  forumsearch search posts "<query>"
  forumsearch search comments "<query>"`

const forumsearchShortDesc string = "forumsearch - semantic forum search over MCP"

func NewForumSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "forumsearch",
		Short:         forumsearchShortDesc,
		Long:          forumsearchLongDesc,
		SilenceUsage:  true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .forumsearch/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
