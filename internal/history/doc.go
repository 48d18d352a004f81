// Package history holds the listening-history aggregation engine.
//
// Raw export rows are turned into ListeningEvents by Normalize, narrowed by a
// Filter, and summarized with GroupBy, FindPeak, LongestStreak and
// CountTransitions. Everything here is pure: the same events and parameters
// always produce the same output, and bad input degrades to empty results
// instead of errors.
package history
