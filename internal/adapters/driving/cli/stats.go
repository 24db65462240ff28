package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show sentiment statistics for stored reviews",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats, err := statsService.Statistics(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching statistics: %w", err)
	}

	cmd.Println("Sentiment Statistics")
	cmd.Println("====================")
	cmd.Println()
	cmd.Printf("  Products:       %d\n", stats.TotalProducts)
	cmd.Printf("  Reviews:        %d\n", stats.TotalReviews)
	cmd.Printf("  Average rating: %.2f\n", stats.AverageRating)
	cmd.Println()

	cmd.Println("  Distribution:")
	for _, sentiment := range []domain.Sentiment{
		domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral,
	} {
		cmd.Printf("    %-9s %d\n", sentiment, stats.Distribution[sentiment])
	}

	if len(stats.Products) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("  Per product:")

	sorted := make([]domain.ProductSentiment, len(stats.Products))
	copy(sorted, stats.Products)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].Sentiment < sorted[j].Sentiment
	})

	for _, ps := range sorted {
		name := ps.ProductName
		if name == "" {
			name = ps.ProductID
		}
		cmd.Printf("    %s: %s %d\n", name, ps.Sentiment, ps.Count)
	}

	return nil
}
