// Package api provides the HTTP server for forum search: the MCP endpoints
// plus a small REST surface for health checks and direct searches.
package api

import "github.com/papercomputeco/forumsearch/pkg/format"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8787")
	ListenAddr string

	// APIToken, when set, is required as a bearer token on the REST search
	// endpoints. The MCP endpoints are not gated.
	APIToken string

	// Formatter renders the "text" field of REST search responses
	Formatter format.Formatter
}
