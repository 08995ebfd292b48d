package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/forumsearch/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .forumsearch/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Always set targetPath when the directory exists so SaveConfig
	// can create or overwrite the file.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the sorted list of all supported configuration key names.
func ValidConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}

	// Return in a stable, logical order matching the TOML section layout.
	ordered := []string{
		"storage.provider",
		"storage.target",
		"storage.api_key",
		"storage.posts_table",
		"storage.posts_embedding_column",
		"storage.comments_table",
		"storage.comments_embedding_column",
		"storage.posts_collection",
		"storage.comments_collection",
		"embedding.provider",
		"embedding.target",
		"embedding.model",
		"embedding.dimensions",
		"embedding.api_key",
		"search.limit",
		"search.threshold",
		"server.listen",
		"server.api_token",
		"client.api_target",
		"client.api_token",
		"events.provider",
		"events.brokers",
		"events.topic",
		"forum.name",
	}

	// Sanity: only return keys that actually exist in the map.
	result := make([]string, 0, len(ordered))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	seen := make(map[string]bool, len(result))
	for _, k := range result {
		seen[k] = true
	}
	for _, k := range keys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target .forumsearch/ directory.
// If the file does not exist, returns DefaultConfig() so callers always receive
// a fully-populated Config with sane defaults. Fields explicitly set in the file
// override the defaults.
// If overrideDir is non-empty, it is used instead of the default .forumsearch/ location.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, meta, err := decodeConfigTOML(data)
	if err != nil {
		return nil, err
	}

	// Merge in defaults: fill in any zero-value fields from the loaded config
	applyDefaults(cfg, meta)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from DefaultConfig().
// Search limit and threshold are only filled when absent from the file, since
// zero is a valid setting for both.
func applyDefaults(cfg *Config, meta toml.MetaData) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	fill(&cfg.Storage.Provider, defaults.Storage.Provider)
	fill(&cfg.Storage.PostsTable, defaults.Storage.PostsTable)
	fill(&cfg.Storage.PostsEmbeddingColumn, defaults.Storage.PostsEmbeddingColumn)
	fill(&cfg.Storage.CommentsTable, defaults.Storage.CommentsTable)
	fill(&cfg.Storage.CommentsEmbeddingColumn, defaults.Storage.CommentsEmbeddingColumn)
	fill(&cfg.Storage.PostsCollection, defaults.Storage.PostsCollection)
	fill(&cfg.Storage.CommentsCollection, defaults.Storage.CommentsCollection)

	fill(&cfg.Embedding.Provider, defaults.Embedding.Provider)
	fill(&cfg.Embedding.Target, defaults.Embedding.Target)
	fill(&cfg.Embedding.Model, defaults.Embedding.Model)

	if !meta.IsDefined("search", "limit") {
		cfg.Search.Limit = defaults.Search.Limit
	}
	if !meta.IsDefined("search", "threshold") {
		cfg.Search.Threshold = defaults.Search.Threshold
	}

	fill(&cfg.Server.Listen, defaults.Server.Listen)
	fill(&cfg.Client.APITarget, defaults.Client.APITarget)

	fill(&cfg.Events.Provider, defaults.Events.Provider)
	fill(&cfg.Events.Topic, defaults.Events.Topic)

	fill(&cfg.Forum.Name, defaults.Forum.Name)
}

func fill(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// SaveConfig persists the configuration to config.toml in the target .forumsearch/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a Config with sane defaults for the named storage preset.
// Supported presets: "postgres", "sqlite", "qdrant".
// Returns an error if the preset name is not recognized.
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "postgres":
		cfg.Storage.Target = "postgresql://localhost:5432/forum?sslmode=disable"
		return cfg, nil

	case "sqlite":
		cfg.Storage.Provider = "sqlite"
		cfg.Storage.Target = "forumsearch.db"
		return cfg, nil

	case "qdrant":
		cfg.Storage.Provider = "qdrant"
		cfg.Storage.Target = "localhost:6334"
		return cfg, nil

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"postgres", "sqlite", "qdrant"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentConfigVersion.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg, _, err := decodeConfigTOML(data)
	return cfg, err
}

func decodeConfigTOML(data []byte) (*Config, toml.MetaData, error) {
	cfg := &Config{}
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, meta, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, meta, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, meta, nil
}
