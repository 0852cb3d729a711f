// Package cache persists embeddings between runs: a flat JSON file for
// the document corpus and a BoltDB file for query embeddings.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ragchat/internal/domain"
)

// corpusFile is the on-disk shape of the corpus cache. The whole file
// is rewritten after every embedding pass; there are no incremental
// updates.
type corpusFile struct {
	Fingerprint string                    `json:"fingerprint"`
	Documents   []domain.EmbeddedDocument `json:"documents"`
}

// CorpusCache stores the embedded corpus in a single JSON file.
type CorpusCache struct {
	path string
}

// NewCorpusCache creates a corpus cache at the given file path.
func NewCorpusCache(path string) *CorpusCache {
	return &CorpusCache{path: path}
}

// Load reads the cached corpus. A missing or unparsable file is a
// cache miss (ok=false), signaling the caller to recompute.
func (c *CorpusCache) Load() ([]domain.EmbeddedDocument, string, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, "", false
	}

	var file corpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("[WARN] ignoring unparsable embedding cache %s: %v", c.path, err)
		return nil, "", false
	}

	return file.Documents, file.Fingerprint, true
}

// Save overwrites the cache with the full corpus. The file is written
// to a temp path and renamed so readers never observe a partial write.
func (c *CorpusCache) Save(docs []domain.EmbeddedDocument, fingerprint string) error {
	file := corpusFile{
		Fingerprint: fingerprint,
		Documents:   docs,
	}

	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write embedding cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}

// Fingerprint derives a content hash over the model name and every
// document's id and text, in corpus order. A corpus whose source
// documents changed produces a different fingerprint, invalidating the
// cache without manual deletion.
func Fingerprint(model string, docs []domain.Document) string {
	h := sha256.New()
	h.Write([]byte(model))
	for _, doc := range docs {
		h.Write([]byte(doc.ID))
		sum := sha256.Sum256([]byte(doc.Text))
		h.Write(sum[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
