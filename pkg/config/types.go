package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent forumsearch configuration stored as
// config.toml in the .forumsearch/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
	Server    ServerConfig    `toml:"server"`
	Client    ClientConfig    `toml:"client"`
	Events    EventsConfig    `toml:"events"`
	Forum     ForumConfig     `toml:"forum"`
}

// StorageConfig selects the similarity backend and where to find it.
type StorageConfig struct {
	// Provider is one of "postgres", "sqlite", "qdrant" or "inmemory".
	Provider string `toml:"provider,omitempty"`

	// Target is a postgres connection string, a sqlite database path or a
	// qdrant host:port.
	Target string `toml:"target,omitempty"`
	APIKey string `toml:"api_key,omitempty"`

	PostsTable              string `toml:"posts_table,omitempty"`
	PostsEmbeddingColumn    string `toml:"posts_embedding_column,omitempty"`
	CommentsTable           string `toml:"comments_table,omitempty"`
	CommentsEmbeddingColumn string `toml:"comments_embedding_column,omitempty"`

	PostsCollection    string `toml:"posts_collection,omitempty"`
	CommentsCollection string `toml:"comments_collection,omitempty"`
}

// EmbeddingConfig holds embedding provider settings. The model must match
// the one used to compute the stored embeddings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
}

// SearchConfig holds the defaults used by the CLI search command.
type SearchConfig struct {
	Limit     int     `toml:"limit"`
	Threshold float64 `toml:"threshold"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`

	// APIToken, when set, is required as a bearer token on the REST search
	// endpoints.
	APIToken string `toml:"api_token,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// server (e.g. forumsearch search). Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
	APIToken  string `toml:"api_token,omitempty"`
}

// EventsConfig holds search event publishing settings.
type EventsConfig struct {
	// Provider is "none" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// ForumConfig describes the searched forum.
type ForumConfig struct {
	Name string `toml:"name,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider":                  stringKey(func(c *Config) *string { return &c.Storage.Provider }),
	"storage.target":                    stringKey(func(c *Config) *string { return &c.Storage.Target }),
	"storage.api_key":                   stringKey(func(c *Config) *string { return &c.Storage.APIKey }),
	"storage.posts_table":               stringKey(func(c *Config) *string { return &c.Storage.PostsTable }),
	"storage.posts_embedding_column":    stringKey(func(c *Config) *string { return &c.Storage.PostsEmbeddingColumn }),
	"storage.comments_table":            stringKey(func(c *Config) *string { return &c.Storage.CommentsTable }),
	"storage.comments_embedding_column": stringKey(func(c *Config) *string { return &c.Storage.CommentsEmbeddingColumn }),
	"storage.posts_collection":          stringKey(func(c *Config) *string { return &c.Storage.PostsCollection }),
	"storage.comments_collection":       stringKey(func(c *Config) *string { return &c.Storage.CommentsCollection }),

	"embedding.provider": stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":   stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":    stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.api_key":  stringKey(func(c *Config) *string { return &c.Embedding.APIKey }),
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},

	"search.limit": {
		get: func(c *Config) string { return strconv.Itoa(c.Search.Limit) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for search.limit: %q", v)
			}
			c.Search.Limit = n
			return nil
		},
	},
	"search.threshold": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Search.Threshold, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 || f > 1 {
				return fmt.Errorf("invalid value for search.threshold: %q (must be within [0,1])", v)
			}
			c.Search.Threshold = f
			return nil
		},
	},

	"server.listen":    stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.api_token": stringKey(func(c *Config) *string { return &c.Server.APIToken }),

	"client.api_target": stringKey(func(c *Config) *string { return &c.Client.APITarget }),
	"client.api_token":  stringKey(func(c *Config) *string { return &c.Client.APIToken }),

	"events.provider": stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.topic":    stringKey(func(c *Config) *string { return &c.Events.Topic }),
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitList(v)
			return nil
		},
	},

	"forum.name": stringKey(func(c *Config) *string { return &c.Forum.Name }),
}

// splitList parses a comma separated list, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
