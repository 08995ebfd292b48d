// Package servecmder provides the serve command that runs the forumsearch
// MCP and REST server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/forumsearch/api"
	apimcp "github.com/papercomputeco/forumsearch/api/mcp"
	"github.com/papercomputeco/forumsearch/pkg/config"
	embeddingutils "github.com/papercomputeco/forumsearch/pkg/embeddings/utils"
	eventstreamutils "github.com/papercomputeco/forumsearch/pkg/eventstream/utils"
	"github.com/papercomputeco/forumsearch/pkg/format"
	"github.com/papercomputeco/forumsearch/pkg/logger"
	"github.com/papercomputeco/forumsearch/pkg/search"
	"github.com/papercomputeco/forumsearch/pkg/storage"
	storageutils "github.com/papercomputeco/forumsearch/pkg/storage/utils"
)

const shutdownTimeout = 10 * time.Second

type ServeCommander struct {
	flags config.FlagSet

	listen          string
	storageProvider string
	storageTarget   string
	embeddingProv   string
	embeddingTarget string
	embeddingModel  string
	embeddingDims   uint
	eventsProvider  string
	eventsBrokers   string
	eventsTopic     string
	forumName       string

	debug    bool
	jsonLogs bool
	viper    *viper.Viper
	logger   *slog.Logger
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagStorageProvider,
	config.FlagStorageTarget,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagEventsProvider,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
	config.FlagForumName,
}

const serveLongDesc string = `Run the forumsearch server.

Exposes the search_posts and search_comments MCP tools on:
  /mcp          streamable HTTP transport
  /sse          HTTP+SSE transport

and the REST endpoints:
  POST /search/posts
  POST /search/comments
  GET  /ping, /health

The storage connection and embedding client are established on the first
search, so the server starts even when a backend is unavailable; searches then
report the failure as text.

The storage connection string and embedding credential are read from config,
FORUMSEARCH_STORAGE_TARGET / FORUMSEARCH_EMBEDDING_API_KEY, or the
AI_SAFETY_FEED_DB_URL / OPENAI_KEY environment variables.

Examples:
  forumsearch serve
  forumsearch serve --listen :9000 --storage-provider sqlite --storage-target ./forum.db
  forumsearch serve --embedding-provider ollama --embedding-model nomic-embed-text`

const serveShortDesc string = "Run the forumsearch server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{
		flags: config.Flags,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, serveFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, cmder.flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagStorageTarget, &cmder.storageTarget)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, cmder.flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEventsTopic, &cmder.eventsTopic)
	config.AddStringFlag(cmd, cmder.flags, config.FlagForumName, &cmder.forumName)
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Write logs as JSON")

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.jsonLogs),
		logger.WithPretty(!c.jsonLogs),
	)

	cfg := config.FromViper(c.viper)

	srv, err := NewService(cfg, c.logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.API.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		c.logger.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.API.Shutdown(shutdownCtx)
}

// Service is a fully wired forumsearch server and the backends it owns.
type Service struct {
	API    *api.Server
	Engine *search.Engine

	closers []func() error
}

// NewService wires the lazy embedder and storage driver, the event publisher,
// the search engine and the HTTP server from cfg. No backend is contacted
// until the first search.
func NewService(cfg *config.Config, log *slog.Logger) (*Service, error) {
	embedder := embeddingutils.NewLazyEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKey:       cfg.Embedding.APIKey,
		Dimensions:   cfg.Embedding.Dimensions,
	}, log)

	driver := storageutils.NewLazyDriver(&storageutils.NewDriverOpts{
		ProviderType: cfg.Storage.Provider,
		Target:       cfg.Storage.Target,
		APIKey:       cfg.Storage.APIKey,
		Tables: storage.Tables{
			Posts:                   cfg.Storage.PostsTable,
			PostsEmbeddingColumn:    cfg.Storage.PostsEmbeddingColumn,
			Comments:                cfg.Storage.CommentsTable,
			CommentsEmbeddingColumn: cfg.Storage.CommentsEmbeddingColumn,
		},
		PostsCollection:    cfg.Storage.PostsCollection,
		CommentsCollection: cfg.Storage.CommentsCollection,
		Logger:             log,
	})

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	s := &Service{
		closers: []func() error{embedder.Close, driver.Close, publisher.Close},
	}

	s.Engine, err = search.New(search.Config{
		Embedder:  embedder,
		Driver:    driver,
		Publisher: publisher,
		Logger:    log,
		Forum:     cfg.Forum.Name,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating search engine: %w", err)
	}

	formatter := format.New(cfg.Forum.Name)

	mcpServer, err := apimcp.NewServer(apimcp.Config{
		Engine:    s.Engine,
		Formatter: formatter,
		Logger:    log,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	s.API, err = api.NewServer(api.Config{
		ListenAddr: cfg.Server.Listen,
		APIToken:   cfg.Server.APIToken,
		Formatter:  formatter,
	}, s.Engine, mcpServer, log)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating API server: %w", err)
	}

	log.Info("forumsearch configured",
		"listen", cfg.Server.Listen,
		"storage_provider", cfg.Storage.Provider,
		"embedding_provider", cfg.Embedding.Provider,
		"embedding_model", cfg.Embedding.Model,
		"events_provider", cfg.Events.Provider,
		"forum", cfg.Forum.Name,
	)

	return s, nil
}

// Close releases the embedder, storage driver and publisher.
func (s *Service) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
