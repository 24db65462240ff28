// Package flipkart implements the Scraper port for Flipkart product
// pages.
//
// Flipkart renders reviews on the product page itself rather than a
// paginated listing, and ships obfuscated class names that rotate
// between frontend releases. Each field therefore carries a current
// and a legacy selector; extraction is best-effort.
package flipkart
