package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driving"
)

var analyseLimit int

var analyseCmd = &cobra.Command{
	Use:   "analyse",
	Short: "Classify stored reviews that have no sentiment yet",
	Long: `Classifies the sentiment of reviews already in the database that
have no result row. Useful after a scrape interrupted mid-analysis, or
for reviews imported by other means.`,
	RunE: runAnalyse,
}

func init() {
	analyseCmd.Flags().IntVar(&analyseLimit, "limit", 0, "maximum reviews to classify (0 = all)")
	rootCmd.AddCommand(analyseCmd)
}

func runAnalyse(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return fmt.Errorf("%w: GROQ_API_KEY not set", domain.ErrLLMUnavailable)
	}

	report, err := analysisService.AnalysePending(cmd.Context(), analyseLimit)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if report.ReviewsAnalysed == 0 {
		cmd.Println("No pending reviews to analyse.")
		return nil
	}

	printReport(cmd, report)
	return nil
}

// printReport renders a run report's counters.
func printReport(cmd *cobra.Command, report *driving.RunReport) {
	cmd.Println()
	cmd.Printf("Run %s\n", report.RunID)
	if report.ProductsScraped > 0 || report.ProductsFailed > 0 {
		cmd.Printf("  Products scraped:  %d (%d failed)\n", report.ProductsScraped, report.ProductsFailed)
		cmd.Printf("  Reviews fetched:   %d (%d new)\n", report.ReviewsFetched, report.ReviewsInserted)
	}
	cmd.Printf("  Reviews analysed:  %d\n", report.ReviewsAnalysed)
	cmd.Printf("  Results stored:    %d\n", report.ResultsStored)
	cmd.Printf("  Sentiment:         %d positive, %d negative, %d neutral\n",
		report.Positive, report.Negative, report.Neutral)
	if report.ClassificationErrors > 0 {
		cmd.Printf("  Degraded results:  %d\n", report.ClassificationErrors)
	}
}
