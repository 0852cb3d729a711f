// Package retriever ranks corpus documents against a query vector by
// cosine similarity.
package retriever

import (
	"math"
	"sort"

	"ragchat/internal/domain"
)

// Cosine calculates the cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero-magnitude input.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK scores every corpus document against the query vector and
// returns the k best, sorted by descending score. Ties keep the
// original corpus order. k is clamped to the corpus size.
func TopK(query []float32, corpus []domain.EmbeddedDocument, k int) []domain.ScoredDocument {
	if k <= 0 || len(corpus) == 0 {
		return nil
	}

	scored := make([]domain.ScoredDocument, len(corpus))
	for i, doc := range corpus {
		scored[i] = domain.ScoredDocument{
			Document: doc.Document,
			Score:    Cosine(query, doc.Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
