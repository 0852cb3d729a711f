package usecase

import (
	"context"
	"fmt"

	"ragchat/internal/adapter/cache"
	"ragchat/internal/domain"
	"ragchat/internal/port"
)

// IngestUseCase builds the embedded corpus from source documents,
// reusing the flat-file cache when the sources have not changed.
type IngestUseCase struct {
	source   port.DocumentSource
	cache    port.EmbeddingCache
	embedder port.Embedder
	progress func(processed, total int)
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	source port.DocumentSource,
	embCache port.EmbeddingCache,
	embedder port.Embedder,
) *IngestUseCase {
	return &IngestUseCase{
		source:   source,
		cache:    embCache,
		embedder: embedder,
	}
}

// SetProgress installs a callback invoked after each embedded document.
func (u *IngestUseCase) SetProgress(fn func(processed, total int)) {
	u.progress = fn
}

// IngestResult describes how the corpus was obtained.
type IngestResult struct {
	Corpus    *domain.Corpus
	FromCache bool
}

// Ingest loads the source documents and produces the embedded corpus.
// The cache is used when present and its fingerprint matches the
// loaded sources; otherwise every document is re-embedded and the
// cache rewritten. An embedding failure is fatal to the pass.
func (u *IngestUseCase) Ingest(ctx context.Context) (*IngestResult, error) {
	docs, err := u.source.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found")
	}

	fingerprint := cache.Fingerprint(u.embedder.ModelName(), docs)

	if cached, cachedFP, ok := u.cache.Load(); ok && cachedFP == fingerprint {
		return &IngestResult{
			Corpus: &domain.Corpus{
				Documents: cached,
				Model:     u.embedder.ModelName(),
			},
			FromCache: true,
		}, nil
	}

	embedded, err := u.embedAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	if err := u.cache.Save(embedded, fingerprint); err != nil {
		return nil, fmt.Errorf("failed to save embedding cache: %w", err)
	}

	return &IngestResult{
		Corpus: &domain.Corpus{
			Documents: embedded,
			Model:     u.embedder.ModelName(),
		},
	}, nil
}

func (u *IngestUseCase) embedAll(ctx context.Context, docs []domain.Document) ([]domain.EmbeddedDocument, error) {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	vectors, err := u.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedding count mismatch: %d documents, %d vectors", len(docs), len(vectors))
	}

	embedded := make([]domain.EmbeddedDocument, len(docs))
	for i, doc := range docs {
		embedded[i] = domain.EmbeddedDocument{
			Document:  doc,
			Embedding: vectors[i],
		}
		if u.progress != nil {
			u.progress(i+1, len(docs))
		}
	}

	return embedded, nil
}
