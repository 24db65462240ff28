package amazon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-labs/reviewpulse/internal/scrapers/fetch"
)

const productPageHTML = `<html><body>
	<span id="productTitle"> Apple iPhone 14 (128 GB) - Midnight </span>
	<a id="bylineInfo">Visit the Apple Store</a>
	<span class="a-price-whole">58,999</span>
	<span class="a-price" data-a-strike="true"><span class="a-offscreen">₹69,900</span></span>
	<div id="availability"><span>In stock</span></div>
	<span class="a-icon-alt">4.5 out of 5 stars</span>
	<span id="acrCustomerReviewText">12,345 ratings</span>
	<a id="sellerProfileTriggerId">Appario Retail</a>
</body></html>`

func reviewPageHTML(ids ...string) string {
	page := `<html><body>`
	for _, id := range ids {
		page += fmt.Sprintf(`<div data-hook="review" id="%s">
			<span class="a-profile-name">Priya</span>
			<i data-hook="review-star-rating"><span>5.0 out of 5 stars</span></i>
			<a data-hook="review-title">Excellent phone</a>
			<span data-hook="review-body">Camera quality is superb, battery lasts all day.</span>
			<span data-hook="review-date">Reviewed in India on 12 March 2025</span>
			<span data-hook="avp-badge">Verified Purchase</span>
			<span data-hook="helpful-vote-statement">42 people found this helpful</span>
		</div>`, id)
	}
	return page + `</body></html>`
}

func newTestClient(t *testing.T) *fetch.Client {
	t.Helper()
	client, err := fetch.NewClient(fetch.Config{
		DelayMin:    time.Millisecond,
		DelayMax:    2 * time.Millisecond,
		RequestRate: 1000,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestFetchProduct_ExtractsFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(productPageHTML))
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)
	url := server.URL + "/dp/B0BDJH6GL7"

	product, err := scraper.FetchProduct(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, product)

	assert.Equal(t, "B0BDJH6GL7", product.ID)
	assert.Equal(t, "amazon", product.Platform)
	assert.Equal(t, "Apple iPhone 14 (128 GB) - Midnight", product.Name)
	assert.Equal(t, "Apple", product.Brand)
	assert.InDelta(t, 58999, product.Price, 1e-9)
	assert.InDelta(t, 69900, product.MRP, 1e-9)
	assert.Equal(t, "In Stock", product.StockStatus)
	assert.InDelta(t, 4.5, product.Rating, 1e-9)
	assert.Equal(t, 12345, product.ReviewCount)
	assert.Equal(t, "Appario Retail", product.Seller)
	assert.Equal(t, url, product.URL)
	assert.Contains(t, product.ReviewsURL, "/product-reviews/B0BDJH6GL7")
	assert.False(t, product.ScrapedAt.IsZero())
}

func TestFetchProduct_MissingFieldsStayZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><span id="productTitle">Bare Product</span></body></html>`))
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)

	product, err := scraper.FetchProduct(context.Background(), server.URL+"/dp/B000000001")
	require.NoError(t, err)
	require.NotNil(t, product)

	assert.Equal(t, "Bare Product", product.Name)
	assert.Empty(t, product.Brand)
	assert.Zero(t, product.Price)
	assert.Zero(t, product.Rating)
	assert.Empty(t, product.StockStatus)
}

func TestFetchProduct_FetchFailureReturnsNilNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)

	product, err := scraper.FetchProduct(context.Background(), server.URL+"/dp/B000000001")
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestFetchProduct_NoASINReturnsNilNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(productPageHTML))
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)

	product, err := scraper.FetchProduct(context.Background(), server.URL+"/gp/offer-listing/something")
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestFetchReviews_PaginatesUntilEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pageNumber") {
		case "1":
			_, _ = w.Write([]byte(reviewPageHTML("R1AAA", "R1BBB")))
		case "2":
			_, _ = w.Write([]byte(reviewPageHTML("R2CCC")))
		default:
			_, _ = w.Write([]byte(`<html><body></body></html>`))
		}
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)

	reviews, err := scraper.FetchReviews(context.Background(), server.URL+"/dp/B0BDJH6GL7", 10)
	require.NoError(t, err)
	require.Len(t, reviews, 3)

	first := reviews[0]
	assert.Equal(t, "R1AAA", first.ID)
	assert.Equal(t, "B0BDJH6GL7", first.ProductID)
	assert.Equal(t, "Priya", first.Reviewer)
	assert.InDelta(t, 5.0, first.Rating, 1e-9)
	assert.Equal(t, "Excellent phone", first.Title)
	assert.Contains(t, first.Text, "Camera quality")
	assert.True(t, first.Verified)
	assert.Equal(t, 42, first.HelpfulCount)
	assert.Equal(t, "R2CCC", reviews[2].ID)
}

func TestFetchReviews_EmptyFirstPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>No reviews yet</p></body></html>`))
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)

	reviews, err := scraper.FetchReviews(context.Background(), server.URL+"/dp/B0BDJH6GL7", 10)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestFetchReviews_RespectsMaxPages(t *testing.T) {
	var pagesServed int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		page := r.URL.Query().Get("pageNumber")
		_, _ = w.Write([]byte(reviewPageHTML("R" + page)))
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)

	reviews, err := scraper.FetchReviews(context.Background(), server.URL+"/dp/B0BDJH6GL7", 2)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.Equal(t, 2, pagesServed)
}

func TestFetchReviews_PartialOnMidPaginationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageNumber") == "1" {
			_, _ = w.Write([]byte(reviewPageHTML("R1AAA", "R1BBB")))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)

	reviews, err := scraper.FetchReviews(context.Background(), server.URL+"/dp/B0BDJH6GL7", 10)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestFetchReviews_AcceptsBareASIN(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer server.Close()

	scraper := New(newTestClient(t), server.URL)

	_, err := scraper.FetchReviews(context.Background(), "B0BDJH6GL7", 1)
	require.NoError(t, err)
	assert.Equal(t, "/product-reviews/B0BDJH6GL7", gotPath)
}

func TestExtractASIN(t *testing.T) {
	assert.Equal(t, "B0BDJH6GL7", extractASIN("https://www.amazon.in/Apple-iPhone-14/dp/B0BDJH6GL7?th=1"))
	assert.Empty(t, extractASIN("https://www.amazon.in/gp/bestsellers"))
}
