package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
)

var (
	scrapePlatform string
	scrapeMaxPages int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url...]",
	Short: "Scrape products and analyse their reviews",
	Long: `Runs the full pipeline for each product URL: scrapes the product
page, fetches its reviews, classifies their sentiment and stores
everything. A URL that cannot be scraped is skipped; the rest of the
run continues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapePlatform, "platform", "p", "amazon", "platform to scrape (amazon or flipkart)")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 10, "maximum review pages per product")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	if pipelineFactory == nil {
		return fmt.Errorf("%w: GROQ_API_KEY not set", domain.ErrLLMUnavailable)
	}

	pipeline, err := pipelineFactory(scrapePlatform)
	if err != nil {
		return err
	}

	cmd.Printf("Scraping %d product(s) from %s...\n", len(args), scrapePlatform)

	report, err := pipeline.Run(cmd.Context(), args, scrapeMaxPages)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}
