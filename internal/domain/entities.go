package domain

// Document is a single source text loaded at startup. Immutable once
// loaded; the ID is derived from the source filename stem.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"snippet"`
}

// EmbeddedDocument pairs a document with its embedding vector. All
// embeddings in a corpus share the same dimensionality.
type EmbeddedDocument struct {
	Document
	Embedding []float32 `json:"embedding"`
}

// Corpus is the ordered set of embedded documents built once by the
// ingest pass and read-only during request handling.
type Corpus struct {
	Documents []EmbeddedDocument
	Model     string
}

// Size returns the number of documents in the corpus.
func (c *Corpus) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Documents)
}

// ScoredDocument is a retrieval result with its similarity score.
type ScoredDocument struct {
	Document Document
	Score    float64
}

// Citation points a span of generated text back to source documents.
// SourceIDs is never nil; an answer without provider citations carries
// an empty slice.
type Citation struct {
	Start     int      `json:"start"`
	End       int      `json:"end"`
	Text      string   `json:"text"`
	SourceIDs []string `json:"sourceIds"`
}

// Answer is the normalized reply from the chat provider.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}
