package domain

import "time"

// Review represents a single customer review.
// Reviews are treated as immutable once observed: the store keeps the
// first write for an ID and silently drops later ones.
type Review struct {
	// ID is stable per platform+product+review. On Amazon it is the
	// review element's own id attribute; on Flipkart it is derived
	// from the product ID and the review's position.
	ID string

	// ProductID references the Product this review belongs to.
	ProductID string

	// Reviewer is the display name of the review author.
	Reviewer string

	// Rating is the star rating given by the reviewer. Zero when not found.
	Rating float64

	// Title is the review headline.
	Title string

	// Text is the review body. Classification input.
	Text string

	// Date is the review date as displayed by the platform, verbatim.
	Date string

	// Verified reports whether the platform marked this a verified purchase.
	Verified bool

	// HelpfulCount is the number of helpful votes.
	HelpfulCount int

	// ScrapedAt is when the review was fetched.
	ScrapedAt time.Time
}
