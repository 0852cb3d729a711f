// Package docstore loads the fixed document set the corpus is built
// from. Documents are plain files; the id is derived from the filename
// stem and the title from the stem with underscores replaced by spaces
// and each word title-cased.
package docstore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ragchat/internal/domain"
)

// Store discovers and loads documents from a directory.
type Store struct {
	root     string
	includes []string
	excludes []string
}

// New creates a document store rooted at dir.
func New(dir string, includes, excludes []string) *Store {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Store{
		root:     dir,
		includes: includes,
		excludes: excludes,
	}
}

// Load discovers matching files under the root and loads each one.
// A file that cannot be read is logged and skipped; the overall load
// never fails on individual documents.
func (s *Store) Load() ([]domain.Document, error) {
	paths, err := s.discover()
	if err != nil {
		return nil, fmt.Errorf("failed to scan document dir: %w", err)
	}
	return LoadPaths(paths), nil
}

// LoadPaths loads the given files, skipping unreadable ones.
func LoadPaths(paths []string) []domain.Document {
	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[WARN] skipping document %s: %v", path, err)
			continue
		}
		docs = append(docs, domain.Document{
			ID:    docID(path),
			Title: docTitle(path),
			Text:  string(data),
		})
	}
	return docs
}

// discover walks the root and returns matching file paths in sorted
// order so the corpus order is stable across runs.
func (s *Store) discover() ([]string, error) {
	var paths []string

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if relPath != "." && s.matches(s.excludes, relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if s.matches(s.includes, relPath) && !s.matches(s.excludes, relPath) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func (s *Store) matches(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}

// docID derives a stable identifier from the filename stem.
func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// docTitle derives a display title: underscores become spaces and each
// word is title-cased.
func docTitle(path string) string {
	words := strings.Split(strings.ReplaceAll(docID(path), "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
