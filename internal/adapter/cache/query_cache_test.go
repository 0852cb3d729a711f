package cache

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestQueryCache(t *testing.T) *QueryCache {
	t.Helper()
	qc, err := NewQueryCache(filepath.Join(t.TempDir(), "queries.db"))
	if err != nil {
		t.Fatalf("failed to open query cache: %v", err)
	}
	t.Cleanup(func() { qc.Close() })
	return qc
}

func TestQueryCachePutGet(t *testing.T) {
	qc := newTestQueryCache(t)

	vector := []float32{0.1, 0.2, 0.3}
	if err := qc.Put("model-1", "how do returns work", vector); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, hit := qc.Get("model-1", "how do returns work")
	if !hit {
		t.Fatal("expected hit")
	}
	if !reflect.DeepEqual(got, vector) {
		t.Errorf("expected %v, got %v", vector, got)
	}
}

func TestQueryCacheMiss(t *testing.T) {
	qc := newTestQueryCache(t)

	if _, hit := qc.Get("model-1", "never stored"); hit {
		t.Error("expected miss")
	}

	// Same text under a different model is a different key.
	if err := qc.Put("model-1", "query", []float32{1}); err != nil {
		t.Fatal(err)
	}
	if _, hit := qc.Get("model-2", "query"); hit {
		t.Error("expected miss for different model")
	}
}

type countingEmbedder struct {
	queryCalls int
	docCalls   int
}

func (e *countingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.docCalls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2}
	}
	return out, nil
}

func (e *countingEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	e.queryCalls++
	return []float32{3, 4}, nil
}

func (e *countingEmbedder) ModelName() string { return "counting" }

func TestCachedEmbedderSkipsRepeatQueries(t *testing.T) {
	qc := newTestQueryCache(t)
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, qc)

	first, err := cached.EmbedQuery(context.Background(), "repeat me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cached.EmbedQuery(context.Background(), "repeat me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.queryCalls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.queryCalls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical vectors, got %v and %v", first, second)
	}
}

func TestCachedEmbedderDocumentsPassThrough(t *testing.T) {
	qc := newTestQueryCache(t)
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, qc)

	if _, err := cached.EmbedDocuments(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.EmbedDocuments(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.docCalls != 2 {
		t.Errorf("expected document embedding to pass through, got %d calls", inner.docCalls)
	}
}
