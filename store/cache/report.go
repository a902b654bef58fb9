package cache

// Report is the observability snapshot served by the admin stats endpoint.
// Counters are cumulative since process start; key counts cover live entries
// only.
type Report struct {
	Instance       string         `json:"instance"`
	TotalKeys      int            `json:"total_keys"`
	MaxEntries     int            `json:"max_entries"`
	Hits           int64          `json:"hits"`
	Misses         int64          `json:"misses"`
	HitRatePercent float64        `json:"hit_rate_percent"`
	TypeBreakdown  map[string]int `json:"type_breakdown"`
}

// Report assembles the current snapshot: cumulative hit/miss counters plus a
// per-type breakdown derived from the type prefix of every live key.
func (c *Cache) Report() Report {
	keys := c.store.Keys()
	stats := c.store.Stats()

	breakdown := make(map[string]int, len(c.policies.types))
	for _, key := range keys {
		breakdown[TypeOf(key)]++
	}

	return Report{
		Instance:       c.instance,
		TotalKeys:      len(keys),
		MaxEntries:     c.store.capacity,
		Hits:           stats.Hits,
		Misses:         stats.Misses,
		HitRatePercent: hitRatePercent(stats.Hits, stats.Misses),
		TypeBreakdown:  breakdown,
	}
}

// hitRatePercent is hits over total traffic as a percentage, defined as zero
// when there has been no traffic at all.
func hitRatePercent(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
