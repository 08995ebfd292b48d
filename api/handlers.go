package api

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/forumsearch/pkg/forum"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple liveness response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleHealth returns the health check response.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

func (s *Server) handleNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).SendString("Not found")
}

// requireToken enforces the configured bearer token. It is a no-op when no
// token is configured.
func (s *Server) requireToken(c *fiber.Ctx) error {
	if s.config.APIToken == "" {
		return c.Next()
	}

	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.config.APIToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "Invalid authentication credentials",
		})
	}

	return c.Next()
}

// statusFor maps a search error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, forum.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, forum.ErrConfiguration):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
