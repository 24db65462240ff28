package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProductUnavailable indicates no product data could be obtained
	// for a URL. Halts processing of that one URL only, never the run.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrLLMUnavailable indicates the classification service is not
	// configured. Analysis commands cannot run without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
