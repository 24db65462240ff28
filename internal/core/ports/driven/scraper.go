package driven

import (
	"context"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
)

// Scraper fetches product and review data from an e-commerce platform.
// Each platform (amazon, flipkart, etc.) implements this interface with
// its page parsing fully encapsulated behind it.
type Scraper interface {
	// Platform returns the platform identifier ("amazon", "flipkart").
	Platform() string

	// FetchProduct scrapes the product page at url.
	// Field extraction is best-effort: any field that cannot be located
	// stays at its zero value. A page that cannot be fetched, or one
	// that yields no product identifier, returns a nil Product and nil
	// error; the caller decides whether to continue. A non-nil error is
	// reserved for unusable input such as a malformed URL.
	FetchProduct(ctx context.Context, url string) (*domain.Product, error)

	// FetchReviews scrapes review pages sequentially starting at page 1.
	// Pagination stops when a page yields zero review blocks or maxPages
	// is reached. A page-fetch failure mid-pagination terminates the
	// walk and returns the reviews collected so far with a nil error:
	// partial results are a success, not a failure. A randomized polite
	// delay is inserted between consecutive pages.
	FetchReviews(ctx context.Context, url string, maxPages int) ([]domain.Review, error)

	// Close releases resources.
	Close() error
}
