package usecase

import (
	"context"
	"fmt"

	"ragchat/internal/adapter/retriever"
	"ragchat/internal/domain"
	"ragchat/internal/port"
)

// ChatUseCase answers a prompt by embedding it, retrieving the most
// similar corpus documents, and generating a grounded reply.
type ChatUseCase struct {
	embedder port.Embedder
	chat     port.ChatModel
	topK     int
}

// NewChatUseCase creates a new chat use case.
func NewChatUseCase(embedder port.Embedder, chat port.ChatModel, topK int) *ChatUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &ChatUseCase{
		embedder: embedder,
		chat:     chat,
		topK:     topK,
	}
}

// Answer runs the full pipeline against a corpus snapshot.
func (u *ChatUseCase) Answer(ctx context.Context, prompt string, corpus *domain.Corpus) (domain.Answer, error) {
	queryVec, err := u.embedder.EmbedQuery(ctx, prompt)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("failed to embed query: %w", err)
	}

	scored := retriever.TopK(queryVec, corpus.Documents, u.topK)
	docs := make([]domain.Document, len(scored))
	for i, s := range scored {
		docs[i] = s.Document
	}

	answer, err := u.chat.GenerateGrounded(ctx, prompt, docs)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generation failed: %w", err)
	}

	if answer.Citations == nil {
		answer.Citations = []domain.Citation{}
	}
	return answer, nil
}

// Retrieve exposes retrieval without generation, for diagnostics.
func (u *ChatUseCase) Retrieve(ctx context.Context, prompt string, corpus *domain.Corpus, k int) ([]domain.ScoredDocument, error) {
	if k <= 0 {
		k = u.topK
	}

	queryVec, err := u.embedder.EmbedQuery(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return retriever.TopK(queryVec, corpus.Documents, k), nil
}
