package config

const (
	defaultStorageProvider = "postgres"

	defaultPostsTable              = "fellowship_mvp"
	defaultPostsEmbeddingColumn    = "title_embedding_gemini"
	defaultCommentsTable           = "fellowship_mvp_comments"
	defaultCommentsEmbeddingColumn = "content_embedding"
	defaultPostsCollection         = "posts"
	defaultCommentsCollection      = "comments"

	defaultEmbeddingProvider = "openai"
	defaultEmbeddingTarget   = "https://api.openai.com"
	defaultEmbeddingModel    = "text-embedding-3-small"

	defaultSearchLimit     = 10
	defaultSearchThreshold = 0.7

	defaultServerListen    = ":8787"
	defaultClientAPITarget = "http://localhost:8787"

	defaultEventsProvider = "none"
	defaultEventsTopic    = "forumsearch.searches"

	defaultForumName = "EA Forum"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider:                defaultStorageProvider,
			PostsTable:              defaultPostsTable,
			PostsEmbeddingColumn:    defaultPostsEmbeddingColumn,
			CommentsTable:           defaultCommentsTable,
			CommentsEmbeddingColumn: defaultCommentsEmbeddingColumn,
			PostsCollection:         defaultPostsCollection,
			CommentsCollection:      defaultCommentsCollection,
		},
		Embedding: EmbeddingConfig{
			Provider: defaultEmbeddingProvider,
			Target:   defaultEmbeddingTarget,
			Model:    defaultEmbeddingModel,
		},
		Search: SearchConfig{
			Limit:     defaultSearchLimit,
			Threshold: defaultSearchThreshold,
		},
		Server: ServerConfig{
			Listen: defaultServerListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		Forum: ForumConfig{
			Name: defaultForumName,
		},
	}
}
