package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/forumsearch/pkg/dotdir"
)

const envPrefix = "FORUMSEARCH"

// legacyEnv lists environment variables accepted for a key in addition to the
// FORUMSEARCH_ prefixed name. The prefixed name wins when both are set.
var legacyEnv = map[string][]string{
	"storage.target":    {"AI_SAFETY_FEED_DB_URL"},
	"embedding.api_key": {"OPENAI_KEY", "OPENAI_API_KEY"},
	"server.api_token":  {"API_BEARER_TOKEN"},
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the FORUMSEARCH_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (FORUMSEARCH_STORAGE_TARGET, AI_SAFETY_FEED_DB_URL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: FORUMSEARCH_SERVER_LISTEN, FORUMSEARCH_STORAGE_TARGET, etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(append([]string{key, prefixed}, names...)...)
	}

	return v, nil
}

// FromViper assembles a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Provider:                v.GetString("storage.provider"),
			Target:                  v.GetString("storage.target"),
			APIKey:                  v.GetString("storage.api_key"),
			PostsTable:              v.GetString("storage.posts_table"),
			PostsEmbeddingColumn:    v.GetString("storage.posts_embedding_column"),
			CommentsTable:           v.GetString("storage.comments_table"),
			CommentsEmbeddingColumn: v.GetString("storage.comments_embedding_column"),
			PostsCollection:         v.GetString("storage.posts_collection"),
			CommentsCollection:      v.GetString("storage.comments_collection"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
			APIKey:     v.GetString("embedding.api_key"),
		},
		Search: SearchConfig{
			Limit:     v.GetInt("search.limit"),
			Threshold: v.GetFloat64("search.threshold"),
		},
		Server: ServerConfig{
			Listen:   v.GetString("server.listen"),
			APIToken: v.GetString("server.api_token"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
			APIToken:  v.GetString("client.api_token"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  stringList(v, "events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
		Forum: ForumConfig{
			Name: v.GetString("forum.name"),
		},
	}
}

// stringList reads a list that may come from a TOML array or a comma
// separated environment variable.
func stringList(v *viper.Viper, key string) []string {
	switch raw := v.Get(key).(type) {
	case string:
		return splitList(raw)
	case nil:
		return nil
	default:
		var out []string
		for _, s := range v.GetStringSlice(key) {
			out = append(out, splitList(s)...)
		}
		return out
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.target", d.Storage.Target)
	v.SetDefault("storage.api_key", d.Storage.APIKey)
	v.SetDefault("storage.posts_table", d.Storage.PostsTable)
	v.SetDefault("storage.posts_embedding_column", d.Storage.PostsEmbeddingColumn)
	v.SetDefault("storage.comments_table", d.Storage.CommentsTable)
	v.SetDefault("storage.comments_embedding_column", d.Storage.CommentsEmbeddingColumn)
	v.SetDefault("storage.posts_collection", d.Storage.PostsCollection)
	v.SetDefault("storage.comments_collection", d.Storage.CommentsCollection)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)

	// Search
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.threshold", d.Search.Threshold)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.api_token", d.Server.APIToken)

	// Client
	v.SetDefault("client.api_target", d.Client.APITarget)
	v.SetDefault("client.api_token", d.Client.APIToken)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", "")
	v.SetDefault("events.topic", d.Events.Topic)

	// Forum
	v.SetDefault("forum.name", d.Forum.Name)
}
