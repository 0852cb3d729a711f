package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ragchat/internal/domain"
)

func sampleCorpus() []domain.EmbeddedDocument {
	return []domain.EmbeddedDocument{
		{
			Document:  domain.Document{ID: "returns", Title: "Returns", Text: "Returns within 30 days."},
			Embedding: []float32{0.1, 0.2, 0.3},
		},
		{
			Document:  domain.Document{ID: "shipping", Title: "Shipping", Text: "Ships in 2 days."},
			Embedding: []float32{0.4, 0.5, 0.6},
		},
	}
}

func TestCorpusCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	c := NewCorpusCache(path)

	docs := sampleCorpus()
	if err := c.Save(docs, "fp-1"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, fp, ok := c.Load()
	if !ok {
		t.Fatal("expected cache hit after save")
	}
	if fp != "fp-1" {
		t.Errorf("expected fingerprint fp-1, got %s", fp)
	}
	if !reflect.DeepEqual(loaded, docs) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, docs)
	}
}

func TestCorpusCacheMissingFile(t *testing.T) {
	c := NewCorpusCache(filepath.Join(t.TempDir(), "absent.json"))

	if _, _, ok := c.Load(); ok {
		t.Error("expected miss for missing file")
	}
}

func TestCorpusCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCorpusCache(path)
	if _, _, ok := c.Load(); ok {
		t.Error("expected miss for unparsable file")
	}
}

func TestCorpusCacheOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	c := NewCorpusCache(path)

	if err := c.Save(sampleCorpus(), "fp-1"); err != nil {
		t.Fatal(err)
	}

	smaller := sampleCorpus()[:1]
	if err := c.Save(smaller, "fp-2"); err != nil {
		t.Fatal(err)
	}

	loaded, fp, ok := c.Load()
	if !ok {
		t.Fatal("expected hit")
	}
	if fp != "fp-2" || len(loaded) != 1 {
		t.Errorf("expected wholesale overwrite, got fp=%s len=%d", fp, len(loaded))
	}
}

func TestFingerprint(t *testing.T) {
	docs := []domain.Document{
		{ID: "a", Text: "alpha"},
		{ID: "b", Text: "beta"},
	}

	base := Fingerprint("model-1", docs)

	if Fingerprint("model-1", docs) != base {
		t.Error("expected fingerprint to be deterministic")
	}
	if Fingerprint("model-2", docs) == base {
		t.Error("expected model change to change fingerprint")
	}

	changed := []domain.Document{
		{ID: "a", Text: "alpha edited"},
		{ID: "b", Text: "beta"},
	}
	if Fingerprint("model-1", changed) == base {
		t.Error("expected content change to change fingerprint")
	}
}
