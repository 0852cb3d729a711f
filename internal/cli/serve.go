package cli

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ragchat/internal/server"
	"ragchat/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	Long: `Start the HTTP chat server. The corpus is embedded (or loaded from
the cache) in the background; requests arriving before initialization
completes are rejected with 503.

Examples:
  ragchat serve
  ragchat serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	embedder, closeEmbedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer closeEmbedder()

	chatModel, err := buildChatModel(cfg)
	if err != nil {
		return fmt.Errorf("failed to create chat model: %w", err)
	}

	chatUC := usecase.NewChatUseCase(embedder, chatModel, cfg.Retrieve.TopK)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := server.New(chatUC, chatModel, addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ingestUC := buildIngest(cfg, embedder)
		result, err := ingestUC.Ingest(ctx)
		if err != nil {
			log.Printf("[WARN] corpus initialization failed: %v", err)
			return
		}
		srv.SetCorpus(result.Corpus)
		if result.FromCache {
			log.Printf("[INFO] corpus loaded from cache (%d documents)", result.Corpus.Size())
		} else {
			log.Printf("[INFO] corpus embedded (%d documents)", result.Corpus.Size())
		}
	}()

	return srv.Start(ctx)
}
