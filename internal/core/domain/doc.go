// Package domain defines the core business entities for ReviewPulse.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Product: A scraped product listing
//   - Review: A single customer review, immutable once observed
//   - SentimentResult: One classification outcome for a review
//   - SentimentStatistics: Aggregate read model for reporting
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
