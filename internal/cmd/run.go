package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/newsloom/newsloom/internal/config"
	"github.com/newsloom/newsloom/internal/embed"
	"github.com/newsloom/newsloom/internal/llm"
	"github.com/newsloom/newsloom/internal/llm/gemini"
	"github.com/newsloom/newsloom/internal/news"
	"github.com/newsloom/newsloom/internal/observability"
	"github.com/newsloom/newsloom/internal/output"
	"github.com/newsloom/newsloom/internal/pipeline"
	"github.com/newsloom/newsloom/internal/quota"
	"github.com/newsloom/newsloom/internal/store"
	"github.com/newsloom/newsloom/internal/vectorstore"
	"github.com/newsloom/newsloom/internal/websearch"
)

// llmRetryWait is the flat cool-off between chat retries when the provider
// does not suggest its own retry delay.
const llmRetryWait = 70 * time.Second

var runCmd = &cobra.Command{
	Use:   "run [topic...]",
	Short: "Research a topic and write a report",
	Long: `Run the full two-stage research pipeline for a topic: index fresh
news articles, condense them into key points, then write an in-depth report
using the news database and web search.

The topic can be passed as arguments; without arguments you are prompted
interactively. The finished report is printed and stored.`,
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
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
		topic, err = promptForTopic()
		if err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				fmt.Println("Operation cancelled by user.")
				return nil
			}
			return err
		}
	}

	runner := buildRunner(cfg, db)

	fmt.Println(ascii.DrawBox(fmt.Sprintf("Researching: %s", topic), 0))

	result, err := runner.Run(ctx, topic)
	if err != nil {
		printTroubleshootingTips()
		ExitWithCode(logger, foundry.ExitFailure, "Research run failed", err)
	}

	fmt.Println(ascii.DrawBox(fmt.Sprintf("Report: %s", result.Topic), 0))
	fmt.Println(result.Report)
	fmt.Println()

	formatter := &output.TableFormatter{}
	summary, err := formatter.FormatRunSummary(result)
	if err != nil {
		return err
	}
	fmt.Println(summary)

	return nil
}

// promptForTopic asks for a topic until the user confirms one.
func promptForTopic() (string, error) {
	for {
		var topic string
		input := &survey.Input{Message: "Enter the topic for news analysis:"}
		if err := survey.AskOne(input, &topic, survey.WithValidator(survey.Required)); err != nil {
			return "", err
		}
		topic = strings.TrimSpace(topic)
		if topic == "" {
			fmt.Println("Please enter a valid topic. Cannot be empty.")
			continue
		}

		var confirmed bool
		confirm := &survey.Confirm{
			Message: fmt.Sprintf("You've selected %q. Is this correct?", topic),
			Default: true,
		}
		if err := survey.AskOne(confirm, &confirmed); err != nil {
			return "", err
		}
		if confirmed {
			return topic, nil
		}
		fmt.Println("Let's try again...")
	}
}

// buildRunner wires the full pipeline: provider clients, limiters, retry
// drivers, tools, and the report store.
func buildRunner(cfg *config.Config, db *store.Store) *pipeline.Runner {
	logger := observability.CLILogger

	gem := gemini.NewClient(cfg.LLM.BaseURL, cfg.GoogleAPIKey)
	if cfg.LLM.Timeout > 0 {
		gem.Timeout = cfg.LLM.Timeout
	}

	temperature := cfg.LLM.Temperature
	invoker := &llm.Invoker{
		Driver:      gem,
		Model:       cfg.LLM.Model,
		Temperature: &temperature,
		Retry: &quota.Driver{
			Name:        config.ClientLLM,
			MaxAttempts: cfg.LLM.MaxAttempts,
			Backoff:     quota.FlatPolicy{Default: llmRetryWait},
			Limiter:     newLimiter(cfg, config.ClientLLM, db),
			Logger:      logger,
		},
	}

	index := buildIndex(cfg, db, gem)

	return &pipeline.Runner{
		Invoker: invoker,
		Indexer: buildIndexerTool(cfg, db, index),
		Lookup: &pipeline.LookupTool{
			Index:   index,
			Limiter: newLimiter(cfg, config.ClientNewsLookup, db),
			Logger:  logger,
		},
		Search: &pipeline.SearchTool{
			Client: buildSearchClient(cfg, db),
		},
		Reports: db,
		Retry: &quota.Driver{
			Name:         "pipeline",
			MaxAttempts:  cfg.Pipeline.MaxAttempts,
			Backoff:      quota.ExponentialPolicy{Base: cfg.Pipeline.BackoffBase, Cap: cfg.Pipeline.BackoffCap},
			PreDelay:     cfg.Pipeline.PreDelay,
			AttemptDelay: progressiveDelay,
			Logger:       logger,
		},
		Logger: logger,
	}
}

// buildIndex wires the vector store on top of the rate-limited embedder.
func buildIndex(cfg *config.Config, db *store.Store, client embed.Client) *vectorstore.Index {
	embedder := embed.New(client, cfg.Embeddings.Model, db)
	embedder.Retry.Logger = observability.CLILogger
	if cfg.Embeddings.MaxAttempts > 0 {
		embedder.Retry.MaxAttempts = cfg.Embeddings.MaxAttempts
	}

	limit := cfg.Limit(config.ClientEmbeddings)
	embedder.Retry.Limiter.Ceiling = limit.Ceiling
	embedder.Retry.Limiter.Buffer = limit.Buffer
	embedder.Retry.Limiter.Logger = observability.CLILogger

	return &vectorstore.Index{Store: db, Embedder: embedder}
}

func buildIndexerTool(cfg *config.Config, db *store.Store, index *vectorstore.Index) *pipeline.IndexerTool {
	newsClient := news.NewClient(cfg.News.BaseURL, cfg.NewsAPIKey)
	if cfg.News.PageSize > 0 {
		newsClient.PageSize = cfg.News.PageSize
	}

	return &pipeline.IndexerTool{
		News:     newsClient,
		Fetcher:  &news.Fetcher{},
		Splitter: news.NewSplitter(),
		Index:    index,
		Limiter:  newLimiter(cfg, config.ClientNewsIndexer, db),
		Logger:   observability.CLILogger,
	}
}

func buildSearchClient(cfg *config.Config, db *store.Store) *websearch.SerperClient {
	client := websearch.NewSerperClient(cfg.SerperAPIKey, db)
	limit := cfg.Limit(config.ClientWebSearch)
	client.Limiter.Ceiling = limit.Ceiling
	client.Limiter.Buffer = limit.Buffer
	client.Limiter.Logger = observability.CLILogger
	return client
}

// newLimiter builds a sliding-window limiter for one client from config.
func newLimiter(cfg *config.Config, client string, journal quota.Journal) *quota.Limiter {
	limit := cfg.Limit(client)
	return &quota.Limiter{
		Client:  client,
		Ceiling: limit.Ceiling,
		Buffer:  limit.Buffer,
		Journal: journal,
		Logger:  observability.CLILogger,
	}
}

// progressiveDelay spaces out run-level retries on top of the quota backoff.
func progressiveDelay(attempt int) time.Duration {
	return 15*time.Second + time.Duration(attempt)*10*time.Second
}

func printTroubleshootingTips() {
	fmt.Println("\nTroubleshooting tips:")
	fmt.Println("1. Check your Google API key and quota limits at https://ai.google.dev/gemini-api/docs/rate-limits")
	fmt.Println("2. Consider upgrading your API plan for higher quotas")
	fmt.Println("3. Verify your internet connection")
	fmt.Println("4. Try running with fewer articles (reduce news.page_size in config)")
	fmt.Println("5. Check the logs for more detailed error information")
	fmt.Println("6. Wait a few minutes before retrying if quota is exhausted")
}
