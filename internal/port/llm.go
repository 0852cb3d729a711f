package port

import (
	"context"

	"ragchat/internal/domain"
)

// ChatModel represents a generative chat provider.
type ChatModel interface {
	// GenerateGrounded answers the prompt grounded in the given
	// documents and returns the normalized text plus citations.
	GenerateGrounded(ctx context.Context, prompt string, docs []domain.Document) (domain.Answer, error)

	// Generate produces a single ungrounded completion.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
