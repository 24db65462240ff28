package driving

import (
	"context"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
)

// PipelineService coordinates scraping, storage and sentiment analysis.
type PipelineService interface {
	// Run executes the full pipeline for each URL: scrape product,
	// upsert, scrape reviews, insert, analyse every fetched review,
	// append results. A failure on one URL never aborts the others.
	Run(ctx context.Context, urls []string, maxPages int) (*RunReport, error)

	// AnalysePending classifies up to limit stored reviews that have no
	// sentiment result yet and appends the results in one batch.
	AnalysePending(ctx context.Context, limit int) (*RunReport, error)

	// Statistics aggregates stored sentiment data.
	Statistics(ctx context.Context) (*domain.SentimentStatistics, error)
}

// RunReport carries per-stage success/failure counts for one run.
// Partial failures are reported here, not raised as errors.
type RunReport struct {
	// RunID uniquely identifies this run.
	RunID string

	// ProductsScraped is the number of products successfully scraped
	// and stored.
	ProductsScraped int

	// ProductsFailed is the number of URLs for which no product data
	// could be obtained.
	ProductsFailed int

	// ReviewsFetched is the total number of reviews scraped.
	ReviewsFetched int

	// ReviewsInserted is the number of reviews newly stored
	// (duplicates are dropped by the store).
	ReviewsInserted int

	// ReviewsAnalysed is the number of reviews run through the
	// classifier, including degraded results.
	ReviewsAnalysed int

	// ResultsStored is the number of sentiment rows written.
	ResultsStored int

	// Positive, Negative and Neutral count the labels produced.
	Positive int
	Negative int
	Neutral  int

	// ClassificationErrors counts results that degraded to NEUTRAL
	// because of a remote failure or short text.
	ClassificationErrors int
}
