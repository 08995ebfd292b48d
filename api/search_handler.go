package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/search"
)

// SearchBody is the JSON request body of the REST search endpoints.
type SearchBody struct {
	Query     string   `json:"query"`
	Limit     *int     `json:"limit,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// SearchResponse is returned by the REST search endpoints. Text carries the
// same rendering the MCP tools return.
type SearchResponse[T any] struct {
	Query     string  `json:"query"`
	Threshold float64 `json:"threshold"`
	Count     int     `json:"count"`
	Results   []T     `json:"results"`
	Text      string  `json:"text"`
}

// handleSearchPosts handles POST /search/posts.
func (s *Server) handleSearchPosts(c *fiber.Ctx) error {
	req, ok := parseSearchBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "request body must be a JSON object with a query",
		})
	}

	posts, err := s.engine.SearchPosts(c.UserContext(), req)
	if err != nil {
		return s.searchError(c, forum.KindPost, err)
	}

	return c.JSON(SearchResponse[forum.Post]{
		Query:     req.Query,
		Threshold: req.Threshold,
		Count:     len(posts),
		Results:   posts,
		Text:      s.config.Formatter.Posts(req.Query, req.Threshold, posts),
	})
}

// handleSearchComments handles POST /search/comments.
func (s *Server) handleSearchComments(c *fiber.Ctx) error {
	req, ok := parseSearchBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "request body must be a JSON object with a query",
		})
	}

	comments, err := s.engine.SearchComments(c.UserContext(), req)
	if err != nil {
		return s.searchError(c, forum.KindComment, err)
	}

	return c.JSON(SearchResponse[forum.Comment]{
		Query:     req.Query,
		Threshold: req.Threshold,
		Count:     len(comments),
		Results:   comments,
		Text:      s.config.Formatter.Comments(req.Query, req.Threshold, comments),
	})
}

// parseSearchBody decodes the request body and applies the search defaults.
func parseSearchBody(c *fiber.Ctx) (search.Request, bool) {
	var body SearchBody
	if err := c.BodyParser(&body); err != nil {
		return search.Request{}, false
	}
	return search.NewRequest(body.Query, body.Limit, body.Threshold), true
}

func (s *Server) searchError(c *fiber.Ctx, kind forum.Kind, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("search request failed", "kind", kind, "error", err)
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
