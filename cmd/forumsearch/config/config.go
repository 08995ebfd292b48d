// Package configcmder provides the config command for managing persistent
// forumsearch configuration stored in the .forumsearch/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent forumsearch configuration.

Configuration is stored as config.toml in the .forumsearch/ directory and
provides default values for command flags. Environment variables override the
file, and CLI flags always take precedence over both.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.target, storage.api_key,
  storage.posts_table, storage.posts_embedding_column,
  storage.comments_table, storage.comments_embedding_column,
  storage.posts_collection, storage.comments_collection,
  embedding.provider, embedding.target, embedding.model,
  embedding.dimensions, embedding.api_key,
  search.limit, search.threshold,
  server.listen, server.api_token,
  client.api_target, client.api_token,
  events.provider, events.brokers, events.topic,
  forum.name

Use subcommands to get, set, or list configuration values:
  forumsearch config set <key> <value>    Set a configuration value
  forumsearch config get <key>            Get a configuration value
  forumsearch config list                 List all configuration values

Examples:
  forumsearch config set storage.target postgresql://localhost:5432/forum
  forumsearch config set embedding.model text-embedding-3-small
  forumsearch config get search.threshold
  forumsearch config list`

const configShortDesc string = "Manage persistent forumsearch configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
