package embedding

import "context"

// MockEmbedder produces deterministic embeddings for tests.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) embed(text string) []float32 {
	vector := make([]float32, e.dimension)
	for j, r := range text {
		if j >= e.dimension {
			break
		}
		vector[j] = float32(r) / 1000.0
	}
	// Degenerate zero vectors break cosine similarity.
	if len(text) == 0 && e.dimension > 0 {
		vector[0] = 1
	}
	return vector
}

func (e *MockEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.embed(text)
	}
	return embeddings, nil
}

func (e *MockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
