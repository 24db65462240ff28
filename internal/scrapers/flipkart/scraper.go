package flipkart

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

// reviewsPerPage approximates how many reviews Flipkart renders per
// page; maxPages is converted to a review cap with it.
const reviewsPerPage = 10

// productIDPattern extracts the /p/ path segment that identifies a
// Flipkart product.
var productIDPattern = regexp.MustCompile(`/p/([^?/]+)`)

// Scraper implements the Scraper port for Flipkart product pages.
type Scraper struct {
	client *fetch.Client
}

var _ driven.Scraper = (*Scraper)(nil)

// New creates a Flipkart scraper backed by the given page fetcher.
func New(client *fetch.Client) *Scraper {
	return &Scraper{client: client}
}

// Platform returns "flipkart".
func (s *Scraper) Platform() string { return "flipkart" }

// FetchProduct scrapes a Flipkart product page. A page that cannot be
// fetched or that yields no product identifier returns (nil, nil).
func (s *Scraper) FetchProduct(ctx context.Context, url string) (*domain.Product, error) {
	doc, err := s.client.Get(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Flipkart product fetch failed: %v", err)
		return nil, nil
	}

	id := extractProductID(url)
	if id == "" {
		logger.Warn("No product ID in URL %s", url)
		return nil, nil
	}

	product := &domain.Product{
		ID:         id,
		Platform:   s.Platform(),
		URL:        url,
		ReviewsURL: url + "#reviews",
		ScrapedAt:  time.Now().UTC(),
	}

	product.Name = firstText(doc.Selection, "span.VU-ZEz", "span.B_NuCI")
	if product.Name != "" {
		// Flipkart has no byline element; the brand leads the title.
		product.Brand = strings.Fields(product.Name)[0]
	}
	product.Price = fetch.ParsePrice(firstText(doc.Selection, "div.Nx9bqj.CxhGGd", "div._30jeq3._16Jk6d"))
	product.MRP = fetch.ParsePrice(firstText(doc.Selection, "div.yRaY8j.ZYYwLA", "div._3I9_wc._2p6lqe"))
	product.Discount = firstText(doc.Selection, "div.UkUFwK", "div._3Ay6Sb._31Dcoz")
	if strings.Contains(strings.ToUpper(doc.Find("button.QqFHMw").Text()), "ADD TO CART") {
		product.StockStatus = "In Stock"
	} else {
		product.StockStatus = "Out of Stock"
	}
	product.Rating = fetch.ParseFloat(firstText(doc.Selection, "div.XQDdHH", "div._3LWZlK"))
	product.ReviewCount = fetch.ParseInt(firstText(doc.Selection, "span.Wphh3N", "span._2_R_DZ"))
	product.Seller = firstText(doc.Selection, "div._2Eq6O8", "div#sellerName")
	if product.Seller == "" {
		product.Seller = "Flipkart"
	}

	return product, nil
}

// FetchReviews scrapes the reviews rendered on the product page. The
// page is fetched once; maxPages caps how many reviews are kept.
func (s *Scraper) FetchReviews(ctx context.Context, url string, maxPages int) ([]domain.Review, error) {
	productID := extractProductID(url)
	if productID == "" {
		return nil, fmt.Errorf("flipkart: no product ID in URL %s", url)
	}

	doc, err := s.client.Get(ctx, url+"#reviews")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Flipkart review page failed: %v", err)
		return nil, nil
	}

	blocks := doc.Find("div.cPHDOP.col-12-12")
	if blocks.Length() == 0 {
		blocks = doc.Find("div._1AtVbE.col-12-12")
	}
	if blocks.Length() == 0 {
		logger.Debug("No reviews found for %s", productID)
		return nil, nil
	}

	limit := maxPages * reviewsPerPage
	var reviews []domain.Review
	blocks.EachWithBreak(func(idx int, sel *goquery.Selection) bool {
		if len(reviews) >= limit {
			return false
		}
		if review, ok := parseReview(sel, productID, idx); ok {
			reviews = append(reviews, review)
		}
		return true
	})

	logger.Info("Scraped %d reviews for product %s", len(reviews), productID)
	return reviews, nil
}

// Close releases the underlying fetcher.
func (s *Scraper) Close() error {
	s.client.Close()
	return nil
}

// parseReview extracts one review block. Blocks with neither text nor
// a title are layout rows between reviews and are skipped.
func parseReview(sel *goquery.Selection, productID string, idx int) (domain.Review, bool) {
	review := domain.Review{
		ID:        fmt.Sprintf("flipkart_%s_review_%d", productID, idx),
		ProductID: productID,
		ScrapedAt: time.Now().UTC(),
	}

	review.Reviewer = firstText(sel, "p._2NsDsF.AwS1CA", "p._2sc7ZR._2V5EHH")
	review.Rating = fetch.ParseFloat(firstText(sel, "div.XQDdHH.Ga3i8K", "div._3LWZlK._1BLPMq"))
	review.Title = firstText(sel, "p.z9E0IG", "p._2-N8zT")
	review.Text = firstText(sel, "div.ZmyHeo", "div.t-ZTKy")
	review.Date = strings.TrimSpace(sel.Find("p._2NsDsF").Not(".AwS1CA").First().Text())
	if review.Date == "" {
		review.Date = strings.TrimSpace(sel.Find("p._2sc7ZR").Not("._2V5EHH").First().Text())
	}
	review.Verified = strings.Contains(sel.Find("div._2_R_DZ").Text(), "Certified Buyer")
	review.HelpfulCount = fetch.ParseInt(sel.Find("div._1ZudkL").First().Text())

	if review.Text == "" && review.Title == "" {
		return domain.Review{}, false
	}
	return review, true
}

// firstText returns the trimmed text of the first selector that
// matches anything.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(sel.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func extractProductID(url string) string {
	match := productIDPattern.FindStringSubmatch(url)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
