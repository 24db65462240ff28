package amazon

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driven"
	"github.com/caldera-labs/reviewpulse/internal/logger"
	"github.com/caldera-labs/reviewpulse/internal/scrapers/fetch"
)

// DefaultBaseURL is the Amazon India storefront.
const DefaultBaseURL = "https://www.amazon.in"

// asinPattern extracts the 10-character ASIN from a /dp/ product URL.
var asinPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

// Scraper implements the Scraper port for Amazon product pages.
type Scraper struct {
	client  *fetch.Client
	baseURL string
}

var _ driven.Scraper = (*Scraper)(nil)

// New creates an Amazon scraper backed by the given page fetcher.
// baseURL overrides the storefront origin when non-empty; review page
// URLs are built against it.
func New(client *fetch.Client, baseURL string) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Platform returns "amazon".
func (s *Scraper) Platform() string { return "amazon" }

// FetchProduct scrapes an Amazon product page. Every field except the
// ASIN is best-effort; a page that cannot be fetched or that yields no
// ASIN returns (nil, nil).
func (s *Scraper) FetchProduct(ctx context.Context, url string) (*domain.Product, error) {
	doc, err := s.client.Get(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Amazon product fetch failed: %v", err)
		return nil, nil
	}

	asin := extractASIN(url)
	if asin == "" {
		logger.Warn("No ASIN in URL %s", url)
		return nil, nil
	}

	product := &domain.Product{
		ID:         asin,
		Platform:   s.Platform(),
		URL:        url,
		ReviewsURL: s.reviewsURL(asin, 1),
		ScrapedAt:  time.Now().UTC(),
	}

	product.Name = strings.TrimSpace(doc.Find("span#productTitle").First().Text())
	if byline := strings.TrimSpace(doc.Find("a#bylineInfo").First().Text()); byline != "" {
		product.Brand = cleanBrand(byline)
	}
	product.Price = fetch.ParsePrice(doc.Find("span.a-price-whole").First().Text())
	product.MRP = fetch.ParsePrice(doc.Find(`span.a-price[data-a-strike="true"] span.a-offscreen`).First().Text())
	product.Discount = strings.TrimSpace(doc.Find("span.savingPriceOverride").First().Text())
	if avail := doc.Find("div#availability").First().Text(); strings.TrimSpace(avail) != "" {
		if strings.Contains(strings.ToLower(avail), "in stock") {
			product.StockStatus = "In Stock"
		} else {
			product.StockStatus = "Out of Stock"
		}
	}
	product.Rating = fetch.ParseFloat(doc.Find("span.a-icon-alt").First().Text())
	product.ReviewCount = fetch.ParseInt(doc.Find("span#acrCustomerReviewText").First().Text())
	product.Seller = strings.TrimSpace(doc.Find("a#sellerProfileTriggerId").First().Text())

	return product, nil
}

// FetchReviews walks the paginated review listing for the product at
// url, stopping at the first empty page or after maxPages pages.
func (s *Scraper) FetchReviews(ctx context.Context, url string, maxPages int) ([]domain.Review, error) {
	asin := extractASIN(url)
	if asin == "" {
		// Callers may pass a bare ASIN instead of a full product URL.
		if strings.Contains(url, "/") {
			return nil, fmt.Errorf("amazon: no ASIN in URL %s", url)
		}
		asin = url
	}

	var reviews []domain.Review
	for page := 1; page <= maxPages; page++ {
		pageURL := s.reviewsURL(asin, page)
		logger.Debug("Fetching review page %d: %s", page, pageURL)

		doc, err := s.client.Get(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return reviews, ctx.Err()
			}
			logger.Warn("Review page %d failed, keeping %d reviews: %v", page, len(reviews), err)
			break
		}

		blocks := doc.Find(`div[data-hook="review"]`)
		if blocks.Length() == 0 {
			logger.Debug("No reviews on page %d, stopping", page)
			break
		}

		blocks.Each(func(_ int, sel *goquery.Selection) {
			reviews = append(reviews, parseReview(sel, asin))
		})

		if page < maxPages {
			if err := s.client.Delay(ctx); err != nil {
				return reviews, err
			}
		}
	}

	logger.Info("Scraped %d reviews for ASIN %s", len(reviews), asin)
	return reviews, nil
}

// Close releases the underlying fetcher.
func (s *Scraper) Close() error {
	s.client.Close()
	return nil
}

func (s *Scraper) reviewsURL(asin string, page int) string {
	return fmt.Sprintf("%s/product-reviews/%s?pageNumber=%d", s.baseURL, asin, page)
}

func parseReview(sel *goquery.Selection, asin string) domain.Review {
	review := domain.Review{
		ProductID: asin,
		ScrapedAt: time.Now().UTC(),
	}

	if id, ok := sel.Attr("id"); ok {
		review.ID = id
	}
	review.Reviewer = strings.TrimSpace(sel.Find("span.a-profile-name").First().Text())
	review.Rating = fetch.ParseFloat(sel.Find(`i[data-hook="review-star-rating"]`).First().Text())
	review.Title = strings.TrimSpace(sel.Find(`a[data-hook="review-title"]`).First().Text())
	review.Text = strings.TrimSpace(sel.Find(`span[data-hook="review-body"]`).First().Text())
	review.Date = strings.TrimSpace(sel.Find(`span[data-hook="review-date"]`).First().Text())
	review.Verified = sel.Find(`span[data-hook="avp-badge"]`).Length() > 0
	review.HelpfulCount = fetch.ParseInt(sel.Find(`span[data-hook="helpful-vote-statement"]`).First().Text())

	return review
}

func extractASIN(url string) string {
	match := asinPattern.FindStringSubmatch(url)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// cleanBrand strips Amazon's "Visit the X Store" byline decoration.
func cleanBrand(byline string) string {
	byline = strings.ReplaceAll(byline, "Visit the", "")
	byline = strings.ReplaceAll(byline, "Store", "")
	return strings.TrimSpace(byline)
}
