// Package openai implements pkg/embeddings' Embedder client for OpenAI's
// embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/forumsearch/pkg/embeddings"
	"github.com/papercomputeco/forumsearch/pkg/forum"
)

const (
	// DefaultEmbeddingModel matches the model used to embed the stored forum
	// corpus.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultBaseURL is the public OpenAI API.
	DefaultBaseURL = "https://api.openai.com"

	defaultTimeout = 30 * time.Second
)

// Embedder wraps OpenAI's embeddings API.
type Embedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions uint
	httpClient *http.Client
}

// EmbedderConfig holds configuration for the OpenAI embedder.
type EmbedderConfig struct {
	// APIKey is the bearer credential. Required.
	APIKey string

	// BaseURL defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model defaults to DefaultEmbeddingModel if empty.
	Model string

	// Dimensions asks the API to shorten vectors to this size. Zero keeps
	// the model's native size.
	Dimensions uint

	// HTTPClient overrides the default client with a 30s timeout.
	HTTPClient *http.Client
}

type embedRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions uint   `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewEmbedder creates a new embedder using OpenAI's embeddings API.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is not set", forum.ErrConfiguration)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Embedder{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: cfg.Dimensions,
		httpClient: client,
	}, nil
}

// Embed converts text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embedRequest{
		Model:      e.model,
		Input:      text,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", forum.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", forum.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", forum.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%w: openai returned status %d: %s", forum.ErrUpstream, resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%w: openai returned status %d: %s", forum.ErrUpstream, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", forum.ErrUpstream, err)
	}

	if len(embedResp.Data) == 0 || len(embedResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", forum.ErrUpstream)
	}

	return embedResp.Data[0].Embedding, nil
}

// Model returns the configured embedding model name.
func (e *Embedder) Model() string {
	return e.model
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
