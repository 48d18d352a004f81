// Package artwork resolves thumbnail images for tracks.
//
// Lookups are best effort. A Resolver never returns an error to its caller:
// HTTP failures, timeouts, cancellation and an open circuit breaker all
// produce a Result with Found set to false, which callers render as "no
// image". Aggregations never wait on artwork.
package artwork
