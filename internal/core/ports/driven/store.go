package driven

import (
	"context"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
)

// ReviewStore persists products, reviews and sentiment results.
// Backed by SQLite. Designed for one concurrent writer and multiple
// concurrent readers; it exposes no update or delete surface for
// reviews or results.
type ReviewStore interface {
	// UpsertProduct stores a product. A write with an existing ID fully
	// replaces the prior row (last-write-wins, no field merge).
	UpsertProduct(ctx context.Context, p *domain.Product) error

	// InsertReviews bulk-inserts reviews with insert-or-ignore semantics
	// keyed by review ID. Returns the count actually inserted; rows for
	// already-known IDs are silently dropped. A single bad row is logged
	// and skipped without aborting the batch.
	InsertReviews(ctx context.Context, reviews []domain.Review) (int, error)

	// AppendSentimentResults bulk-appends results. Never deduplicates:
	// re-analysing a review adds a row. Returns the count written; a
	// single bad row is logged and skipped without aborting the batch.
	AppendSentimentResults(ctx context.Context, results []domain.SentimentResult) (int, error)

	// UnanalyzedReviews returns up to limit reviews with non-empty text
	// and no sentiment row at all, in store order.
	UnanalyzedReviews(ctx context.Context, limit int) ([]domain.Review, error)

	// SentimentStatistics returns aggregate counts per label, overall
	// review/product counts, and per-product label breakdowns.
	SentimentStatistics(ctx context.Context) (*domain.SentimentStatistics, error)

	// Product retrieves a product by ID.
	// Returns domain.ErrNotFound when absent.
	Product(ctx context.Context, id string) (*domain.Product, error)

	// ReviewsByProduct returns all stored reviews for a product.
	ReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error)

	// LatestSentiment returns the most recent result for a review,
	// resolved latest-AnalysedAt-wins across its append-only rows.
	// Returns domain.ErrNotFound when the review has no result.
	LatestSentiment(ctx context.Context, reviewID string) (*domain.SentimentResult, error)

	// Close closes the store.
	Close() error
}
