// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/caldera-labs/reviewpulse/internal/adapters/driven/config/file"
	"github.com/caldera-labs/reviewpulse/internal/adapters/driven/llm/groq"
	"github.com/caldera-labs/reviewpulse/internal/adapters/driven/storage/sqlite"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driven"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driving"
	"github.com/caldera-labs/reviewpulse/internal/core/services"
	"github.com/caldera-labs/reviewpulse/internal/logger"
	"github.com/caldera-labs/reviewpulse/internal/ratelimit"
	"github.com/caldera-labs/reviewpulse/internal/scrapers/amazon"
	"github.com/caldera-labs/reviewpulse/internal/scrapers/fetch"
	"github.com/caldera-labs/reviewpulse/internal/scrapers/flipkart"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired by Execute. Tests substitute these directly.
var (
	// pipelineFactory builds a pipeline bound to the named platform's
	// scraper. Nil until Execute wires it, or when GROQ_API_KEY is not
	// set.
	pipelineFactory func(platform string) (driving.PipelineService, error)

	// analysisService serves the analyse command. Nil without an API key.
	analysisService driving.PipelineService

	// statsService serves the stats command. Always wired; statistics
	// need no API key.
	statsService driving.PipelineService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "reviewpulse",
	Short: "Scrape product reviews and analyse their sentiment",
	Long: `ReviewPulse scrapes products and customer reviews from e-commerce
platforms, classifies review sentiment with the Groq API, and stores
everything in a local SQLite database.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute wires the application together and runs the root command.
func Execute() error {
	cfg, err := file.Load("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	// The stats path needs only the store; scraper and analyser stay nil.
	statsService = services.NewPipeline(nil, store, nil)

	if cfg.Groq.APIKey != "" {
		llm, err := groq.NewChatService(groq.Config{
			APIKey:  cfg.Groq.APIKey,
			BaseURL: cfg.Groq.BaseURL,
			Model:   cfg.Groq.Model,
		})
		if err != nil {
			return fmt.Errorf("configuring Groq service: %w", err)
		}
		defer llm.Close() //nolint:errcheck

		limiter := ratelimit.New(cfg.Groq.RequestsPerMin, cfg.Groq.TokensPerMin)
		analyser := services.NewAnalyser(llm, limiter, services.AnalyserConfig{})

		analysisService = services.NewPipeline(nil, store, analyser)
		pipelineFactory = func(platform string) (driving.PipelineService, error) {
			scraper, err := newScraper(platform, cfg)
			if err != nil {
				return nil, err
			}
			return services.NewPipeline(scraper, store, analyser), nil
		}
	}

	return rootCmd.Execute()
}

// newScraper builds the platform scraper with the configured politeness
// delays.
func newScraper(platform string, cfg *file.Config) (driven.Scraper, error) {
	client, err := fetch.NewClient(fetch.Config{
		DelayMin: time.Duration(cfg.Scraper.DelayMinSeconds) * time.Second,
		DelayMax: time.Duration(cfg.Scraper.DelayMaxSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring fetcher: %w", err)
	}

	switch platform {
	case "amazon":
		return amazon.New(client, ""), nil
	case "flipkart":
		return flipkart.New(client), nil
	default:
		client.Close()
		return nil, fmt.Errorf("unknown platform %q (expected amazon or flipkart)", platform)
	}
}
