// Package fetch provides the shared polite HTTP page fetcher used by
// all platform scrapers.
//
// Politeness has two layers: a proactive token-bucket throttle on every
// request, and a randomized delay drawn from a configured [min, max]
// interval that scrapers insert between consecutive review pages. The
// delay is an anti-blocking measure, not a correctness requirement.
package fetch
