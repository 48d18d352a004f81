package history

import (
	"cmp"
	"slices"
)

// Aggregate returns the contribution of one event to its bucket.
type Aggregate func(ListeningEvent) float64

// SumMinutes sums played minutes.
func SumMinutes(e ListeningEvent) float64 {
	return e.Minutes()
}

// Count counts plays.
func Count(ListeningEvent) float64 {
	return 1
}

// Bucket is one key of a Rollup and its summary value.
type Bucket[K comparable] struct {
	Key   K
	Value float64
}

// Rollup maps bucket keys to summaries. Buckets keep the order in which their
// keys were first seen during the scan.
type Rollup[K comparable] struct {
	index   map[K]int
	buckets []Bucket[K]
}

// GroupBy places every event in exactly one bucket, keyed by key, and folds
// agg over each bucket.
func GroupBy[K comparable](events []ListeningEvent, key func(ListeningEvent) K, agg Aggregate) *Rollup[K] {
	r := &Rollup[K]{index: make(map[K]int)}
	for _, e := range events {
		k := key(e)
		i, ok := r.index[k]
		if !ok {
			i = len(r.buckets)
			r.index[k] = i
			r.buckets = append(r.buckets, Bucket[K]{Key: k})
		}
		r.buckets[i].Value += agg(e)
	}
	return r
}

func (r *Rollup[K]) Len() int {
	return len(r.buckets)
}

// Get returns the summary for k.
func (r *Rollup[K]) Get(k K) (float64, bool) {
	i, ok := r.index[k]
	if !ok {
		return 0, false
	}
	return r.buckets[i].Value, true
}

// Buckets returns a copy of the buckets in first-seen order.
func (r *Rollup[K]) Buckets() []Bucket[K] {
	return slices.Clone(r.buckets)
}

// Keys returns the keys in first-seen order.
func (r *Rollup[K]) Keys() []K {
	keys := make([]K, len(r.buckets))
	for i, b := range r.buckets {
		keys[i] = b.Key
	}
	return keys
}

// Total sums all bucket values.
func (r *Rollup[K]) Total() float64 {
	var total float64
	for _, b := range r.buckets {
		total += b.Value
	}
	return total
}

// ByValueDesc returns the buckets sorted by descending value. Equal values
// keep first-seen order.
func (r *Rollup[K]) ByValueDesc() []Bucket[K] {
	out := r.Buckets()
	slices.SortStableFunc(out, func(a, b Bucket[K]) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}

// ByKey returns the buckets sorted with compare applied to their keys.
func (r *Rollup[K]) ByKey(compare func(a, b K) int) []Bucket[K] {
	out := r.Buckets()
	slices.SortStableFunc(out, func(a, b Bucket[K]) int {
		return compare(a.Key, b.Key)
	})
	return out
}

// Top returns at most n buckets by descending value. n <= 0 returns all.
func (r *Rollup[K]) Top(n int) []Bucket[K] {
	out := r.ByValueDesc()
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Peak is FindPeak over the first-seen order.
func (r *Rollup[K]) Peak() (Bucket[K], bool) {
	return FindPeak(r.buckets)
}

// SortedByKey is ByKey for ordered keys such as day strings, hours and years.
func SortedByKey[K cmp.Ordered](r *Rollup[K]) []Bucket[K] {
	return r.ByKey(cmp.Compare[K])
}
