// Package ratelimit provides a sliding-window rate limiter guarding the
// remote classification service.
//
// The limiter tracks two rolling 60-second budgets at once: a maximum
// request count and a maximum cumulative token count. Exact event
// timestamps are kept and pruned as they age out of the window, unlike a
// fixed-window counter which allows a burst of up to twice the limit
// across a window boundary.
//
// State is purely in-process and resets on restart.
package ratelimit
