package port

import "ragchat/internal/domain"

// DocumentSource provides the raw documents the corpus is built from.
type DocumentSource interface {
	// Load reads every available document. Unreadable files are
	// skipped, not fatal; the returned slice may be shorter than the
	// source set.
	Load() ([]domain.Document, error)
}

// EmbeddingCache persists the embedded corpus between runs.
type EmbeddingCache interface {
	// Load reads the cached corpus. A missing or unparsable cache is
	// reported as ok=false, not as an error.
	Load() (docs []domain.EmbeddedDocument, fingerprint string, ok bool)

	// Save overwrites the cache with the full corpus.
	Save(docs []domain.EmbeddedDocument, fingerprint string) error
}
