package domain

import "time"

// Product represents a scraped product listing.
// Every scalar field is best-effort: a field the scraper could not
// locate on the page is left at its zero value, never an error.
type Product struct {
	// ID is the platform product identifier (ASIN on Amazon,
	// the /p/ path segment on Flipkart). Unique per platform.
	ID string

	// Platform identifies the source platform ("amazon", "flipkart").
	Platform string

	// Name is the product title.
	Name string

	// Brand is the manufacturer or seller brand.
	Brand string

	// Price is the current selling price. Zero when not found.
	Price float64

	// MRP is the list price before discount. Zero when not found.
	MRP float64

	// Discount is the displayed discount text, verbatim.
	Discount string

	// Rating is the average star rating. Zero when not found.
	Rating float64

	// ReviewCount is the number of ratings/reviews reported by the page.
	ReviewCount int

	// Seller is the seller name.
	Seller string

	// StockStatus is "In Stock", "Out of Stock" or empty.
	StockStatus string

	// URL is the product page the product was scraped from.
	URL string

	// ReviewsURL is the review listing page, when derivable.
	ReviewsURL string

	// ScrapedAt is when the product page was fetched.
	ScrapedAt time.Time

	// UpdatedAt is when the stored row was last replaced.
	UpdatedAt time.Time
}
