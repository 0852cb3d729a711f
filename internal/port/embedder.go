package port

import "context"

// Embedder generates vector embeddings for text via an external
// provider. Document and query embeddings use different provider
// input types, so the two paths are separate operations.
type Embedder interface {
	// EmbedDocuments generates embeddings for document texts.
	// Returns one vector per input text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string
}
