package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driven"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driving"
	"github.com/caldera-labs/reviewpulse/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineService = (*Pipeline)(nil)

// Pipeline composes a scraper, the store and the analyser into an
// end-to-end or incremental run. Scraping and classification execute
// one step after another with no internal fan-out; failures on one URL
// or one review never abort the rest of the run.
type Pipeline struct {
	scraper  driven.Scraper
	store    driven.ReviewStore
	analyser *Analyser
}

// NewPipeline creates a pipeline service.
func NewPipeline(scraper driven.Scraper, store driven.ReviewStore, analyser *Analyser) *Pipeline {
	return &Pipeline{
		scraper:  scraper,
		store:    store,
		analyser: analyser,
	}
}

// Run executes the full pipeline for each URL.
func (p *Pipeline) Run(ctx context.Context, urls []string, maxPages int) (*driving.RunReport, error) {
	report := &driving.RunReport{RunID: uuid.NewString()}

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run cancelled: %w", err)
		}

		if err := p.processURL(ctx, url, maxPages, report); err != nil {
			// Only the inability to obtain any product data reaches
			// here; it halts this URL, not the run.
			logger.Error("Skipping %s: %v", url, err)
			report.ProductsFailed++
		}
	}

	logger.Info("Run %s: %d products, %d reviews fetched, %d analysed",
		report.RunID, report.ProductsScraped, report.ReviewsFetched, report.ReviewsAnalysed)
	return report, nil
}

// processURL handles one product URL end to end: scrape product, upsert,
// scrape reviews, insert, analyse, append results in one batch.
func (p *Pipeline) processURL(ctx context.Context, url string, maxPages int, report *driving.RunReport) error {
	logger.Section("Processing " + url)

	product, err := p.scraper.FetchProduct(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProductUnavailable, err)
	}
	if product == nil {
		return domain.ErrProductUnavailable
	}

	if err := p.store.UpsertProduct(ctx, product); err != nil {
		return fmt.Errorf("storing product %s: %w", product.ID, err)
	}
	report.ProductsScraped++
	logger.Info("Saved product %s (%s)", product.ID, product.Name)

	// Partial review results are a success: whatever came back before a
	// page failure still flows through the rest of the pipeline.
	reviews, err := p.scraper.FetchReviews(ctx, url, maxPages)
	if err != nil {
		logger.Warn("Fetching reviews for %s: %v", product.ID, err)
	}
	report.ReviewsFetched += len(reviews)

	if len(reviews) == 0 {
		logger.Warn("No reviews found for %s", product.ID)
		return nil
	}

	inserted, err := p.store.InsertReviews(ctx, reviews)
	if err != nil {
		return fmt.Errorf("storing reviews for %s: %w", product.ID, err)
	}
	report.ReviewsInserted += inserted
	logger.Info("Inserted %d new reviews (%d fetched)", inserted, len(reviews))

	// Analyse everything just fetched, not just the newly inserted:
	// duplicates harmlessly re-classify into an extra appended row.
	results := p.analyser.AnalyseBatch(ctx, reviews)
	p.tally(results, report)

	stored, err := p.store.AppendSentimentResults(ctx, results)
	if err != nil {
		return fmt.Errorf("storing results for %s: %w", product.ID, err)
	}
	report.ResultsStored += stored

	return nil
}

// AnalysePending classifies stored reviews that have no sentiment
// result yet and appends all results in one batch.
func (p *Pipeline) AnalysePending(ctx context.Context, limit int) (*driving.RunReport, error) {
	report := &driving.RunReport{RunID: uuid.NewString()}

	reviews, err := p.store.UnanalyzedReviews(ctx, limit)
	if err != nil {
		return report, fmt.Errorf("fetching unanalyzed reviews: %w", err)
	}
	if len(reviews) == 0 {
		logger.Info("No pending reviews to analyse")
		return report, nil
	}

	logger.Info("Analysing %d pending reviews", len(reviews))
	results := p.analyser.AnalyseBatch(ctx, reviews)
	p.tally(results, report)

	stored, err := p.store.AppendSentimentResults(ctx, results)
	if err != nil {
		return report, fmt.Errorf("storing results: %w", err)
	}
	report.ResultsStored += stored

	return report, nil
}

// Statistics aggregates stored sentiment data.
func (p *Pipeline) Statistics(ctx context.Context) (*domain.SentimentStatistics, error) {
	return p.store.SentimentStatistics(ctx)
}

// tally folds a batch of results into the report counters.
func (p *Pipeline) tally(results []domain.SentimentResult, report *driving.RunReport) {
	for _, r := range results {
		report.ReviewsAnalysed++
		switch r.Sentiment {
		case domain.SentimentPositive:
			report.Positive++
		case domain.SentimentNegative:
			report.Negative++
		case domain.SentimentNeutral:
			report.Neutral++
		}
		if r.Error != "" {
			report.ClassificationErrors++
		}
	}
}
