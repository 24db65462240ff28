package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-labs/reviewpulse/internal/adapters/driven/storage/memory"
	"github.com/caldera-labs/reviewpulse/internal/core/domain"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driven"
)

// mockScraper serves scripted products and reviews keyed by URL.
type mockScraper struct {
	products map[string]*domain.Product
	reviews  map[string][]domain.Review
}

func (m *mockScraper) Platform() string { return "mock" }

func (m *mockScraper) FetchProduct(_ context.Context, url string) (*domain.Product, error) {
	return m.products[url], nil
}

func (m *mockScraper) FetchReviews(_ context.Context, url string, _ int) ([]domain.Review, error) {
	return m.reviews[url], nil
}

func (m *mockScraper) Close() error { return nil }

func positiveCompletions(n int) []driven.Completion {
	out := make([]driven.Completion, n)
	for i := range out {
		out[i] = driven.Completion{Content: "POSITIVE", TokensUsed: 20}
	}
	return out
}

func TestRun_FullPipeline(t *testing.T) {
	url := "https://example.com/dp/PROD000001"
	scraper := &mockScraper{
		products: map[string]*domain.Product{
			url: {ID: "PROD000001", Platform: "mock", Name: "Test Phone"},
		},
		reviews: map[string][]domain.Review{
			url: {
				{ID: "r1", ProductID: "PROD000001", Text: "Great phone, camera is wonderful"},
				{ID: "r2", ProductID: "PROD000001", Text: "bad"},
			},
		},
	}
	store := memory.NewStore()
	llm := &mockChatService{completions: positiveCompletions(2)}
	analyser, _ := newTestAnalyser(llm)

	pipeline := NewPipeline(scraper, store, analyser)

	report, err := pipeline.Run(context.Background(), []string{url}, 5)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.ProductsScraped)
	assert.Zero(t, report.ProductsFailed)
	assert.Equal(t, 2, report.ReviewsFetched)
	assert.Equal(t, 2, report.ReviewsInserted)
	assert.Equal(t, 2, report.ReviewsAnalysed)
	assert.Equal(t, 2, report.ResultsStored)
	assert.Equal(t, 1, report.Positive)
	assert.Equal(t, 1, report.Neutral) // the short review
	assert.Equal(t, 1, report.ClassificationErrors)

	product, err := store.Product(context.Background(), "PROD000001")
	require.NoError(t, err)
	assert.Equal(t, "Test Phone", product.Name)

	stored, err := store.ReviewsByProduct(context.Background(), "PROD000001")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	latest, err := store.LatestSentiment(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentPositive, latest.Sentiment)
}

func TestRun_UnavailableProductSkipsURL(t *testing.T) {
	good := "https://example.com/dp/PRODGOOD01"
	bad := "https://example.com/dp/PRODGONE01"
	scraper := &mockScraper{
		products: map[string]*domain.Product{
			good: {ID: "PRODGOOD01", Name: "Available"},
		},
		reviews: map[string][]domain.Review{
			good: {{ID: "r1", ProductID: "PRODGOOD01", Text: "Works exactly as described, very happy"}},
		},
	}
	store := memory.NewStore()
	llm := &mockChatService{completions: positiveCompletions(1)}
	analyser, _ := newTestAnalyser(llm)

	pipeline := NewPipeline(scraper, store, analyser)

	report, err := pipeline.Run(context.Background(), []string{bad, good}, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ProductsFailed)
	assert.Equal(t, 1, report.ProductsScraped)
	assert.Equal(t, 1, report.ReviewsInserted)

	_, err = store.Product(context.Background(), "PRODGONE01")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRun_NoReviewsStillSavesProduct(t *testing.T) {
	url := "https://example.com/dp/PRODEMPTY1"
	scraper := &mockScraper{
		products: map[string]*domain.Product{
			url: {ID: "PRODEMPTY1", Name: "Unreviewed"},
		},
	}
	store := memory.NewStore()
	llm := &mockChatService{}
	analyser, _ := newTestAnalyser(llm)

	pipeline := NewPipeline(scraper, store, analyser)

	report, err := pipeline.Run(context.Background(), []string{url}, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ProductsScraped)
	assert.Zero(t, report.ReviewsFetched)
	assert.Zero(t, report.ReviewsAnalysed)
	assert.Zero(t, llm.calls)

	_, err = store.Product(context.Background(), "PRODEMPTY1")
	assert.NoError(t, err)
}

func TestRun_RerunReclassifiesWithoutDuplicatingReviews(t *testing.T) {
	url := "https://example.com/dp/PRODRERUN1"
	scraper := &mockScraper{
		products: map[string]*domain.Product{
			url: {ID: "PRODRERUN1", Name: "Rerun"},
		},
		reviews: map[string][]domain.Review{
			url: {{ID: "r1", ProductID: "PRODRERUN1", Text: "Excellent battery life and display"}},
		},
	}
	store := memory.NewStore()
	llm := &mockChatService{completions: positiveCompletions(2)}
	analyser, _ := newTestAnalyser(llm)

	pipeline := NewPipeline(scraper, store, analyser)

	first, err := pipeline.Run(context.Background(), []string{url}, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ReviewsInserted)
	assert.Equal(t, 1, first.ResultsStored)

	second, err := pipeline.Run(context.Background(), []string{url}, 5)
	require.NoError(t, err)

	// The review dedupes; the re-classification appends a second result.
	assert.Zero(t, second.ReviewsInserted)
	assert.Equal(t, 1, second.ReviewsAnalysed)
	assert.Equal(t, 1, second.ResultsStored)

	stored, err := store.ReviewsByProduct(context.Background(), "PRODRERUN1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestAnalysePending_ClassifiesOnlyUnanalysed(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertProduct(ctx, &domain.Product{ID: "p1", Name: "Seeded"}))
	_, err := store.InsertReviews(ctx, []domain.Review{
		{ID: "r1", ProductID: "p1", Text: "Already analysed earlier today"},
		{ID: "r2", ProductID: "p1", Text: "Waiting for a first classification"},
		{ID: "r3", ProductID: "p1", Text: "Also waiting for classification"},
	})
	require.NoError(t, err)
	_, err = store.AppendSentimentResults(ctx, []domain.SentimentResult{
		{ReviewID: "r1", Sentiment: domain.SentimentPositive},
	})
	require.NoError(t, err)

	llm := &mockChatService{completions: positiveCompletions(2)}
	analyser, _ := newTestAnalyser(llm)
	pipeline := NewPipeline(&mockScraper{}, store, analyser)

	report, err := pipeline.AnalysePending(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, report.ReviewsAnalysed)
	assert.Equal(t, 2, report.ResultsStored)
	assert.Equal(t, 2, llm.calls)

	// Nothing pending on a second pass.
	again, err := pipeline.AnalysePending(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, again.ReviewsAnalysed)
}

func TestAnalysePending_HonoursLimit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.InsertReviews(ctx, []domain.Review{
		{ID: "r1", ProductID: "p1", Text: "First pending review in order"},
		{ID: "r2", ProductID: "p1", Text: "Second pending review in order"},
		{ID: "r3", ProductID: "p1", Text: "Third pending review in order"},
	})
	require.NoError(t, err)

	llm := &mockChatService{completions: positiveCompletions(2)}
	analyser, _ := newTestAnalyser(llm)
	pipeline := NewPipeline(&mockScraper{}, store, analyser)

	report, err := pipeline.AnalysePending(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ReviewsAnalysed)
}
