// Package amazon implements the Scraper port for Amazon India product
// and review pages.
//
// Selectors target the desktop HTML layout. Extraction is best-effort:
// a selector that no longer matches leaves its field empty rather than
// failing the fetch.
package amazon
