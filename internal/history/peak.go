package history

// FindPeak returns the bucket with the largest value. Ties go to the first
// maximum in the given order, so callers control the tie-break by how they
// order buckets (chronological for time series). The bool is false when
// buckets is empty.
func FindPeak[K comparable](buckets []Bucket[K]) (Bucket[K], bool) {
	if len(buckets) == 0 {
		return Bucket[K]{}, false
	}
	peak := buckets[0]
	for _, b := range buckets[1:] {
		if b.Value > peak.Value {
			peak = b
		}
	}
	return peak, true
}
