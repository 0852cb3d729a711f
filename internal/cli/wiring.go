package cli

import (
	"path/filepath"
	"time"

	"ragchat/config"
	"ragchat/internal/adapter/cache"
	"ragchat/internal/adapter/docstore"
	"ragchat/internal/adapter/embedding"
	"ragchat/internal/adapter/httpx"
	"ragchat/internal/adapter/llm"
	"ragchat/internal/port"
	"ragchat/internal/usecase"
)

func retryPolicy(cfg *config.Config) httpx.Policy {
	return httpx.DefaultPolicy(
		cfg.Retry.MaxAttempts,
		time.Duration(cfg.Retry.BaseDelayMS)*time.Millisecond,
	)
}

func buildEmbedder(cfg *config.Config) (port.Embedder, func() error, error) {
	embedder, err := embedding.NewCohereEmbedder(embedding.Config{
		APIKeyEnv:         cfg.Embedding.APIKeyEnv,
		Model:             cfg.Embedding.Model,
		BaseURL:           cfg.Embedding.BaseURL,
		BatchSize:         cfg.Embedding.BatchSize,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Timeout:           time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		Retry:             retryPolicy(cfg),
	})
	if err != nil {
		return nil, nil, err
	}

	if cfg.Cache.QueryDB == "" {
		return embedder, func() error { return nil }, nil
	}

	queryCache, err := cache.NewQueryCache(resolvePath(cfg.Cache.QueryDB))
	if err != nil {
		return nil, nil, err
	}
	return cache.NewCachedEmbedder(embedder, queryCache), queryCache.Close, nil
}

func buildChatModel(cfg *config.Config) (port.ChatModel, error) {
	return llm.NewCohereChat(llm.Config{
		APIKeyEnv:   cfg.Embedding.APIKeyEnv,
		Model:       cfg.Chat.Model,
		Temperature: cfg.Chat.Temperature,
		Preamble:    cfg.Chat.Preamble,
		Timeout:     time.Duration(cfg.Chat.TimeoutSecs) * time.Second,
		Retry:       retryPolicy(cfg),
	})
}

func buildIngest(cfg *config.Config, embedder port.Embedder) *usecase.IngestUseCase {
	store := docstore.New(resolvePath(cfg.Docs.Dir), cfg.Docs.Includes, cfg.Docs.Excludes)
	corpusCache := cache.NewCorpusCache(resolvePath(cfg.Cache.Path))
	return usecase.NewIngestUseCase(store, corpusCache, embedder)
}

func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetRootDir(), path)
}
