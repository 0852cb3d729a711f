package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ragchat/internal/usecase"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Inspect retrieval for a prompt",
	Long: `Embed the prompt and print the most similar cached documents with
their cosine similarity scores, without calling the chat model.

Examples:
  ragchat query -q "how do refunds work"
  ragchat query -q "shipping times" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "prompt to retrieve for (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

type scoredResult struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	embedder, closeEmbedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer closeEmbedder()

	ingestUC := buildIngest(cfg, embedder)
	result, err := ingestUC.Ingest(context.Background())
	if err != nil {
		return fmt.Errorf("failed to build corpus: %w", err)
	}

	chatUC := usecase.NewChatUseCase(embedder, nil, cfg.Retrieve.TopK)
	scored, err := chatUC.Retrieve(context.Background(), queryText, result.Corpus, queryTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	results := make([]scoredResult, len(scored))
	for i, s := range scored {
		results[i] = scoredResult{
			ID:    s.Document.ID,
			Title: s.Document.Title,
			Score: s.Score,
		}
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Top %d documents for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("[%d] %s (%s) score=%.4f\n", i+1, r.Title, r.ID, r.Score)
	}

	return nil
}
