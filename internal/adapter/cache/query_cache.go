package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"ragchat/internal/port"
)

var bucketQueries = []byte("query_embeddings")

// QueryCache persists query embeddings in BoltDB so repeated prompts
// skip the embedding call across process restarts.
type QueryCache struct {
	db *bbolt.DB
}

type storedEmbedding struct {
	Vector []float32 `json:"v"`
	Ctime  int64     `json:"t"`
}

// NewQueryCache opens (or creates) the query cache database.
func NewQueryCache(path string) (*QueryCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open query cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketQueries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create query bucket: %w", err)
	}

	return &QueryCache{db: db}, nil
}

// Get returns the cached embedding for the query, if present.
func (c *QueryCache) Get(model, text string) ([]float32, bool) {
	var vector []float32

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketQueries)
		if b == nil {
			return nil
		}
		data := b.Get(cacheKey(model, text))
		if data == nil {
			return nil
		}
		var stored storedEmbedding
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil // Skip corrupted entries
		}
		vector = stored.Vector
		return nil
	})
	if err != nil || vector == nil {
		return nil, false
	}
	return vector, true
}

// Put stores the embedding for the query.
func (c *QueryCache) Put(model, text string, vector []float32) error {
	stored := storedEmbedding{
		Vector: vector,
		Ctime:  time.Now().Unix(),
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketQueries)
		if b == nil {
			return fmt.Errorf("query bucket not found")
		}
		return b.Put(cacheKey(model, text), data)
	})
}

// Close closes the underlying database.
func (c *QueryCache) Close() error {
	return c.db.Close()
}

func cacheKey(model, text string) []byte {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return []byte(hex.EncodeToString(hash[:16]))
}

// CachedEmbedder wraps an embedder with the persistent query cache.
// Only query embeddings are cached; document embeddings already live
// in the corpus cache.
type CachedEmbedder struct {
	embedder port.Embedder
	cache    *QueryCache
}

// NewCachedEmbedder creates a caching wrapper around the embedder.
func NewCachedEmbedder(embedder port.Embedder, cache *QueryCache) *CachedEmbedder {
	return &CachedEmbedder{
		embedder: embedder,
		cache:    cache,
	}
}

// EmbedDocuments passes through to the wrapped embedder.
func (e *CachedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embedder.EmbedDocuments(ctx, texts)
}

// EmbedQuery returns a cached embedding when available and stores the
// result of a miss. Cache write failures are not fatal to the request.
func (e *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if vector, hit := e.cache.Get(e.embedder.ModelName(), text); hit {
		return vector, nil
	}

	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	// Cache write failure is non-fatal to the request.
	_ = e.cache.Put(e.embedder.ModelName(), text, vector)
	return vector, nil
}

// ModelName returns the wrapped embedder's model name.
func (e *CachedEmbedder) ModelName() string {
	return e.embedder.ModelName()
}
