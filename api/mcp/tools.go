package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/search"
)

var (
	searchPostsToolName    = "search_posts"
	searchPostsDescription = "Search EA Forum posts by title similarity"

	searchCommentsToolName    = "search_comments"
	searchCommentsDescription = "Search EA Forum comments by content similarity"

	postsQueryDescription    = "Search query for EA Forum posts"
	commentsQueryDescription = "Search query for EA Forum comments"
)

// SearchInput represents the input arguments for both search tools.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"search query text"`
	Limit     *int     `json:"limit,omitempty" jsonschema:"Maximum number of results to return"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"Similarity threshold (0-1)"`
}

// searchInputSchema infers the SearchInput schema and tightens it with the
// bounds and defaults the handlers apply.
func searchInputSchema(queryDescription string) (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[SearchInput](nil)
	if err != nil {
		return nil, err
	}

	query := schema.Properties["query"]
	query.Description = queryDescription
	query.MinLength = ptr(1)

	limit := schema.Properties["limit"]
	limit.Minimum = ptr(0.0)
	limit.Default = json.RawMessage("10")

	threshold := schema.Properties["threshold"]
	threshold.Minimum = ptr(0.0)
	threshold.Maximum = ptr(1.0)
	threshold.Default = json.RawMessage("0.7")

	return schema, nil
}

func (s *Server) handleSearchPosts(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	req := search.NewRequest(input.Query, input.Limit, input.Threshold)
	s.logTool(searchPostsToolName, req)

	posts, err := s.config.Engine.SearchPosts(ctx, req)
	if err != nil {
		return s.toolError(forum.KindPost, err), nil, nil
	}

	return textResult(s.config.Formatter.Posts(req.Query, req.Threshold, posts)), nil, nil
}

func (s *Server) handleSearchComments(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	req := search.NewRequest(input.Query, input.Limit, input.Threshold)
	s.logTool(searchCommentsToolName, req)

	comments, err := s.config.Engine.SearchComments(ctx, req)
	if err != nil {
		return s.toolError(forum.KindComment, err), nil, nil
	}

	return textResult(s.config.Formatter.Comments(req.Query, req.Threshold, comments)), nil, nil
}

func (s *Server) logTool(tool string, req search.Request) {
	s.config.Logger.Debug("MCP tool call",
		"tool", tool,
		"query", req.Query,
		"limit", req.Limit,
		"threshold", req.Threshold,
	)
}

// toolError reports a failed search as ordinary text content so the calling
// agent can keep the conversation going. IsError stays unset.
func (s *Server) toolError(kind forum.Kind, err error) *mcp.CallToolResult {
	s.config.Logger.Error("MCP search failed", "kind", kind, "error", err)
	return textResult(s.config.Formatter.Error(kind, err))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
