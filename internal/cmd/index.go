package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/newsloom/newsloom/internal/llm/gemini"
	"github.com/newsloom/newsloom/internal/observability"
	"github.com/newsloom/newsloom/internal/pipeline"
)

var indexCmd = &cobra.Command{
	Use:   "index <topic...>",
	Short: "Fetch and index news articles for a topic",
	Long: `Fetch recent news articles for a topic, split them into chunks,
embed the chunks, and store them in the local news database. This is the
searcher stage's indexing step, runnable on its own to pre-populate the
database before a full run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	logger := observability.CLILogger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, cfg, err := openStore(ctx)
	if err != nil {
		ExitWithCode(logger, foundry.ExitConfigInvalid, "Failed to initialize store", err)
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	if cfg.GoogleAPIKey == "" {
		ExitWithCode(logger, foundry.ExitConfigInvalid,
			"GOOGLE_API_KEY environment variable is not set", nil)
	}

	topic := strings.TrimSpace(strings.Join(args, " "))
	if topic == "" {
		topic = pipeline.DefaultTopic
	}

	gem := gemini.NewClient(cfg.LLM.BaseURL, cfg.GoogleAPIKey)
	index := buildIndex(cfg, db, gem)
	indexer := buildIndexerTool(cfg, db, index)

	fmt.Println(indexer.Run(ctx, topic))
	return nil
}
