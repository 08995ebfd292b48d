package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	apimcp "github.com/papercomputeco/forumsearch/api/mcp"
	"github.com/papercomputeco/forumsearch/pkg/search"
)

const readHeaderTimeout = 10 * time.Second

// Server is the HTTP server for forum search. MCP traffic is served by the
// MCP SDK handlers; every other path goes to the fiber app.
type Server struct {
	config Config
	engine *search.Engine
	mcp    *apimcp.Server
	logger *slog.Logger

	app        *fiber.App
	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer creates a new API server.
func NewServer(config Config, engine *search.Engine, mcpServer *apimcp.Server, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if mcpServer == nil {
		return nil, errors.New("mcp server is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: engine,
		mcp:    mcpServer,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/health", s.handleHealth)

	app.Post("/search/posts", s.requireToken, s.handleSearchPosts)
	app.Post("/search/comments", s.requireToken, s.handleSearchComments)

	app.Use(s.handleNotFound)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpServer.Handler())
	mux.Handle("/sse", mcpServer.SSEHandler())
	mux.Handle("/sse/", mcpServer.SSEHandler())
	mux.Handle("/", adaptor.FiberApp(app))
	s.mux = mux

	s.httpServer = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run starts the API server on the configured address. It returns nil once
// Shutdown has been called.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
