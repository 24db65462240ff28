package memory

import (
	"context"
	"sync"
	"time"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ReviewStore = (*Store)(nil)

// Store is an in-memory ReviewStore.
// Safe for one writer with concurrent readers, like the SQLite adapter.
type Store struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	reviews  map[string]domain.Review
	order    []string // review insertion order
	results  []domain.SentimentResult
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		products: make(map[string]domain.Product),
		reviews:  make(map[string]domain.Review),
	}
}

// UpsertProduct replaces any existing row for the product's ID.
func (s *Store) UpsertProduct(_ context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *p
	stored.UpdatedAt = time.Now()
	s.products[p.ID] = stored
	return nil
}

// InsertReviews inserts reviews not yet known by ID.
func (s *Store) InsertReviews(_ context.Context, reviews []domain.Review) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, r := range reviews {
		if r.ID == "" {
			continue
		}
		if _, ok := s.reviews[r.ID]; ok {
			continue
		}
		s.reviews[r.ID] = r
		s.order = append(s.order, r.ID)
		inserted++
	}
	return inserted, nil
}

// AppendSentimentResults appends all results, never deduplicating.
func (s *Store) AppendSentimentResults(_ context.Context, results []domain.SentimentResult) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	for _, r := range results {
		if r.ReviewID == "" {
			continue
		}
		s.results = append(s.results, r)
		written++
	}
	return written, nil
}

// UnanalyzedReviews returns reviews with non-empty text and no result
// row, in insertion order.
func (s *Store) UnanalyzedReviews(_ context.Context, limit int) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analysed := make(map[string]bool, len(s.results))
	for _, r := range s.results {
		analysed[r.ReviewID] = true
	}

	var out []domain.Review
	for _, id := range s.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		review := s.reviews[id]
		if review.Text == "" || analysed[id] {
			continue
		}
		out = append(out, review)
	}
	return out, nil
}

// SentimentStatistics aggregates counts over the stored data.
func (s *Store) SentimentStatistics(_ context.Context) (*domain.SentimentStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.SentimentStatistics{
		TotalReviews: len(s.reviews),
		Distribution: make(map[domain.Sentiment]int),
	}

	products := make(map[string]bool)
	ratingSum := 0.0
	for _, r := range s.reviews {
		products[r.ProductID] = true
		ratingSum += r.Rating
	}
	stats.TotalProducts = len(products)
	if len(s.reviews) > 0 {
		stats.AverageRating = ratingSum / float64(len(s.reviews))
	}

	perProduct := make(map[string]map[domain.Sentiment]int)
	for _, res := range s.results {
		if !res.Sentiment.Valid() {
			continue
		}
		stats.Distribution[res.Sentiment]++

		review, ok := s.reviews[res.ReviewID]
		if !ok {
			continue
		}
		if perProduct[review.ProductID] == nil {
			perProduct[review.ProductID] = make(map[domain.Sentiment]int)
		}
		perProduct[review.ProductID][res.Sentiment]++
	}

	for productID, counts := range perProduct {
		product := s.products[productID]
		for sentiment, count := range counts {
			stats.Products = append(stats.Products, domain.ProductSentiment{
				ProductID:   productID,
				ProductName: product.Name,
				Brand:       product.Brand,
				Sentiment:   sentiment,
				Count:       count,
			})
		}
	}

	return stats, nil
}

// Product retrieves a product by ID.
func (s *Store) Product(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// ReviewsByProduct returns stored reviews for a product in insertion order.
func (s *Store) ReviewsByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Review
	for _, id := range s.order {
		if r := s.reviews[id]; r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// LatestSentiment resolves a review's results latest-AnalysedAt-wins.
func (s *Store) LatestSentiment(_ context.Context, reviewID string) (*domain.SentimentResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.SentimentResult
	for i := range s.results {
		r := s.results[i]
		if r.ReviewID != reviewID {
			continue
		}
		if latest == nil || r.AnalysedAt.After(latest.AnalysedAt) {
			latest = &r
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
