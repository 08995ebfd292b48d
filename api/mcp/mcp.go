// Package mcp provides an MCP (Model Context Protocol) server exposing forum
// similarity search as tools.
package mcp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/forumsearch/pkg/format"
	"github.com/papercomputeco/forumsearch/pkg/search"
	"github.com/papercomputeco/forumsearch/pkg/utils"
)

const serverName = "forumsearch"

type Config struct {
	// Engine runs the similarity searches behind both tools
	Engine *search.Engine

	// Formatter renders results and errors as tool text
	Formatter format.Formatter

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config     Config
	mcpServer  *mcp.Server
	handler    *mcp.StreamableHTTPHandler
	sseHandler *mcp.SSEHandler
}

// NewServer creates a new MCP server with the search_posts and
// search_comments tools.
func NewServer(c Config) (*Server, error) {
	if c.Engine == nil {
		return nil, errors.New("search engine is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	postsSchema, err := searchInputSchema(postsQueryDescription)
	if err != nil {
		return nil, fmt.Errorf("building %s input schema: %w", searchPostsToolName, err)
	}
	commentsSchema, err := searchInputSchema(commentsQueryDescription)
	if err != nil {
		return nil, fmt.Errorf("building %s input schema: %w", searchCommentsToolName, err)
	}

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        searchPostsToolName,
		Description: searchPostsDescription,
		InputSchema: postsSchema,
	}, s.handleSearchPosts)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        searchCommentsToolName,
		Description: searchCommentsDescription,
		InputSchema: commentsSchema,
	}, s.handleSearchComments)

	s.mcpServer = mcpServer

	getServer := func(_ *http.Request) *mcp.Server {
		return mcpServer
	}

	// Streamable HTTP handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(getServer, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	// SSE handler for clients that still speak the HTTP+SSE transport
	s.sseHandler = mcp.NewSSEHandler(getServer, nil)

	return s, nil
}

// Handler returns the streamable HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SSEHandler returns the HTTP+SSE handler for the MCP server.
func (s *Server) SSEHandler() http.Handler {
	return s.sseHandler
}

// MCPServer returns the underlying SDK server, e.g. for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
