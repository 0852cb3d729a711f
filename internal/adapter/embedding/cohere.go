// Package embedding provides the external embedding provider adapter.
package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"ragchat/internal/adapter/httpx"
)

const (
	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)

// CohereEmbedder generates embeddings via the Cohere embed API.
// Batches are paced with a rate limiter to respect provider limits.
type CohereEmbedder struct {
	apiKey    string
	model     string
	baseURL   string
	batchSize int
	client    *http.Client
	limiter   *rate.Limiter
	retry     httpx.Policy
}

// Config holds configuration for the Cohere embedder.
type Config struct {
	APIKeyEnv         string
	Model             string
	BaseURL           string
	BatchSize         int
	RequestsPerSecond float64
	Timeout           time.Duration
	Retry             httpx.Policy
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Message    string      `json:"message,omitempty"`
}

// NewCohereEmbedder creates an embedder from the given config.
func NewCohereEmbedder(cfg Config) (*CohereEmbedder, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cohere.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "embed-english-v3.0"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 96
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 0.5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &CohereEmbedder{
		apiKey:    apiKey,
		model:     cfg.Model,
		baseURL:   cfg.BaseURL,
		batchSize: cfg.BatchSize,
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retry:     cfg.Retry,
	}, nil
}

// EmbedDocuments embeds document texts, batched at the configured
// batch size with limiter pacing between batches.
func (e *CohereEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		embeddings, err := e.embedBatch(ctx, texts[i:end], inputTypeDocument)
		if err != nil {
			return nil, err
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

// EmbedQuery embeds a single search query.
func (e *CohereEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	embeddings, err := e.embedBatch(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}
	return embeddings[0], nil
}

func (e *CohereEmbedder) embedBatch(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	reqBody := embedRequest{
		Texts:     texts,
		Model:     e.model,
		InputType: inputType,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+e.apiKey)

	_, body, err := e.retry.Do(ctx, e.client, http.MethodPost, e.baseURL+"/embed", header, jsonData)
	if err != nil {
		return nil, err
	}

	var embResp embedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(embResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(embResp.Embeddings))
	}

	return embResp.Embeddings, nil
}

// ModelName returns the embedding model name.
func (e *CohereEmbedder) ModelName() string {
	return e.model
}
