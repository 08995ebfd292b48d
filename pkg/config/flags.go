package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --threshold
// on both "forumsearch search posts" and "forumsearch search comments").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen          = "listen"
	FlagStorageProvider = "storage-provider"
	FlagStorageTarget   = "storage-target"
	FlagEmbeddingProv   = "embedding-provider"
	FlagEmbeddingTgt    = "embedding-target"
	FlagEmbeddingModel  = "embedding-model"
	FlagEmbeddingDims   = "embedding-dimensions"
	FlagEventsProvider  = "events-provider"
	FlagEventsBrokers   = "events-brokers"
	FlagEventsTopic     = "events-topic"
	FlagForumName       = "forum-name"
	FlagAPITarget       = "api-target"
	FlagLimit           = "limit"
	FlagThreshold       = "threshold"
)

// Flags is the registry shared by every command.
var Flags = FlagSet{
	FlagListen:          {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address for the server to listen on"},
	FlagStorageProvider: {Name: "storage-provider", ViperKey: "storage.provider", Description: "Similarity storage backend (postgres, sqlite, qdrant, inmemory)"},
	FlagStorageTarget:   {Name: "storage-target", Shorthand: "s", ViperKey: "storage.target", Description: "Storage connection string, database path or qdrant address"},
	FlagEmbeddingProv:   {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Embedding provider (openai, ollama)"},
	FlagEmbeddingTgt:    {Name: "embedding-target", ViperKey: "embedding.target", Description: "Embedding provider base URL"},
	FlagEmbeddingModel:  {Name: "embedding-model", ViperKey: "embedding.model", Description: "Embedding model; must match the model used for stored embeddings"},
	FlagEmbeddingDims:   {Name: "embedding-dimensions", ViperKey: "embedding.dimensions", Description: "Requested embedding dimensions (0 for the model default)"},
	FlagEventsProvider:  {Name: "events-provider", ViperKey: "events.provider", Description: "Search event publisher (none, kafka)"},
	FlagEventsBrokers:   {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka brokers"},
	FlagEventsTopic:     {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for search events"},
	FlagForumName:       {Name: "forum-name", ViperKey: "forum.name", Description: "Forum name shown in results"},
	FlagAPITarget:       {Name: "api-target", ViperKey: "client.api_target", Description: "forumsearch server URL"},
	FlagLimit:           {Name: "limit", Shorthand: "n", ViperKey: "search.limit", Description: "Maximum number of results"},
	FlagThreshold:       {Name: "threshold", Shorthand: "t", ViperKey: "search.threshold", Description: "Minimum similarity score in [0,1]"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultViper().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloat64Flag registers a float64 flag on cmd from the given FlagSet.
func AddFloat64Flag(cmd *cobra.Command, fs FlagSet, registryKey string, target *float64) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultViper().GetFloat64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultViper() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	return defaultViper().GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	return defaultViper().GetUint(viperKey)
}
