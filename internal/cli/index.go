package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragchat/config"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the document set and write the cache",
	Long: `Load the configured document directory, embed every document, and
write the flat-file embedding cache. When the cache already matches the
current documents nothing is recomputed.

Examples:
  ragchat index
  ragchat index -d /path/to/project`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := config.EnsureCacheDir(cfg); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	embedder, closeEmbedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer closeEmbedder()

	ingestUC := buildIngest(cfg, embedder)

	var bar *progressbar.ProgressBar
	ingestUC.SetProgress(func(processed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Embedding documents"),
				progressbar.OptionShowCount(),
			)
		}
		bar.Set(processed)
	})

	result, err := ingestUC.Ingest(context.Background())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	if result.FromCache {
		fmt.Printf("Cache up to date: %d documents\n", result.Corpus.Size())
	} else {
		fmt.Printf("Embedded %d documents with %s\n", result.Corpus.Size(), embedder.ModelName())
	}

	return nil
}
