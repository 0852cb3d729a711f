// Package llm provides the generative chat provider adapter.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"ragchat/internal/adapter/httpx"
	"ragchat/internal/domain"
)

// defaultPreamble describes the assistant persona and citation
// behavior expected of the provider.
const defaultPreamble = "You are a helpful documentation assistant. " +
	"Answer the user's question using only the provided documents. " +
	"Cite the documents that support each part of your answer. " +
	"If the documents do not contain the answer, say so."

// CohereChat generates grounded answers via the Cohere chat API.
type CohereChat struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	preamble    string
	client      *http.Client
	retry       httpx.Policy
}

// Config holds configuration for the Cohere chat model.
type Config struct {
	APIKeyEnv   string
	Model       string
	BaseURL     string
	Temperature float64
	Preamble    string
	Timeout     time.Duration
	Retry       httpx.Policy
}

type chatDocument struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type chatRequest struct {
	Model       string         `json:"model"`
	Message     string         `json:"message"`
	Preamble    string         `json:"preamble,omitempty"`
	Temperature float64        `json:"temperature"`
	Documents   []chatDocument `json:"documents,omitempty"`
}

type chatCitation struct {
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Text        string   `json:"text"`
	DocumentIDs []string `json:"document_ids"`
}

type chatResponse struct {
	Text      string         `json:"text"`
	Citations []chatCitation `json:"citations,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// NewCohereChat creates a chat model from the given config.
func NewCohereChat(cfg Config) (*CohereChat, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cohere.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "command-r"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.Preamble == "" {
		cfg.Preamble = defaultPreamble
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &CohereChat{
		apiKey:      apiKey,
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: cfg.Temperature,
		preamble:    cfg.Preamble,
		client:      &http.Client{Timeout: cfg.Timeout},
		retry:       cfg.Retry,
	}, nil
}

// GenerateGrounded answers the prompt grounded in the given documents.
// Missing provider citations are normalized to an empty slice here, at
// the boundary, so callers never handle a nil field.
func (c *CohereChat) GenerateGrounded(ctx context.Context, prompt string, docs []domain.Document) (domain.Answer, error) {
	chatDocs := make([]chatDocument, len(docs))
	for i, doc := range docs {
		chatDocs[i] = chatDocument{
			ID:      doc.ID,
			Title:   doc.Title,
			Snippet: doc.Text,
		}
	}

	resp, err := c.chat(ctx, chatRequest{
		Model:       c.model,
		Message:     prompt,
		Preamble:    c.preamble,
		Temperature: c.temperature,
		Documents:   chatDocs,
	})
	if err != nil {
		return domain.Answer{}, err
	}

	citations := make([]domain.Citation, 0, len(resp.Citations))
	for _, cit := range resp.Citations {
		sourceIDs := cit.DocumentIDs
		if sourceIDs == nil {
			sourceIDs = []string{}
		}
		citations = append(citations, domain.Citation{
			Start:     cit.Start,
			End:       cit.End,
			Text:      cit.Text,
			SourceIDs: sourceIDs,
		})
	}

	return domain.Answer{
		Text:      resp.Text,
		Citations: citations,
	}, nil
}

// Generate produces a single ungrounded completion.
func (c *CohereChat) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.chat(ctx, chatRequest{
		Model:       c.model,
		Message:     prompt,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *CohereChat) chat(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+c.apiKey)

	_, body, err := c.retry.Do(ctx, c.client, http.MethodPost, c.baseURL+"/chat", header, jsonData)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// ModelName returns the chat model name.
func (c *CohereChat) ModelName() string {
	return c.model
}
