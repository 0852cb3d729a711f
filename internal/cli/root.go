package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragchat/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Retrieval-augmented chat server over a local document set",
	Long: `ragchat embeds a directory of documents, retrieves the most similar
ones for each prompt by cosine similarity, and answers through a hosted
chat model with citations.

Example usage:
  ragchat index                  # Embed documents and write the cache
  ragchat query -q "refunds"     # Inspect retrieval for a prompt
  ragchat serve                  # Start the chat server`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ragchat.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
