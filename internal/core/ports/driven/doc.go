// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Scraper: Fetches product and review data from a platform
//   - ReviewStore: Idempotent persistence for products, reviews and results
//   - ChatService: Remote chat-completion service used for classification
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or scraper package
package driven
