package domain

import "time"

// Sentiment is a classification label from the closed set.
type Sentiment string

// The closed label set. Anything else a classifier returns is coerced
// to SentimentNeutral before it reaches storage.
const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// Valid reports whether s is one of the closed label set.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// SentimentResult is one classification outcome for a review.
// Results are append-only: re-analysing a review produces an additional
// row. Readers resolve multiples with latest-AnalysedAt-wins.
type SentimentResult struct {
	// ReviewID references the Review that was classified. Not unique.
	ReviewID string

	// Sentiment is the validated label.
	Sentiment Sentiment

	// Confidence is in [0,1]. The remote service provides no native
	// confidence, so successful calls carry a fixed high value and
	// degraded results carry zero.
	Confidence float64

	// ResponseTime is the elapsed time of the remote call.
	ResponseTime time.Duration

	// TokensUsed is the total token count reported by the service.
	TokensUsed int

	// AnalysedAt is when the classification completed.
	AnalysedAt time.Time

	// Error holds the failure text when classification degraded.
	// Empty on success.
	Error string
}

// SentimentStatistics is the aggregate read model for reporting.
type SentimentStatistics struct {
	// TotalReviews is the number of stored reviews.
	TotalReviews int

	// TotalProducts is the number of distinct products with reviews.
	TotalProducts int

	// AverageRating is the mean review rating across all reviews.
	AverageRating float64

	// Distribution maps each label to its result count.
	Distribution map[Sentiment]int

	// Products holds the per-product label breakdown.
	Products []ProductSentiment
}

// ProductSentiment is one product's count for one label.
type ProductSentiment struct {
	ProductID   string
	ProductName string
	Brand       string
	Sentiment   Sentiment
	Count       int
}
