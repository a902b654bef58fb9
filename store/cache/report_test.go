package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Report(t *testing.T) {
	t.Run("NoTrafficNoDivisionByZero", func(t *testing.T) {
		c, _ := newTestCache(t, Config{MaxEntries: 50})

		r := c.Report()
		assert.Equal(t, 0, r.TotalKeys)
		assert.Equal(t, 50, r.MaxEntries)
		assert.Zero(t, r.Hits)
		assert.Zero(t, r.Misses)
		assert.Zero(t, r.HitRatePercent)
		assert.NotEmpty(t, r.Instance)
	})

	t.Run("HitRateAfterTraffic", func(t *testing.T) {
		c, _ := newTestCache(t, Config{})
		ctx := context.Background()

		compute := func(ctx context.Context) (any, error) { return 1, nil }

		// One miss populates, one hit follows.
		_, err := c.GetOrCompute(ctx, "dashboard:u1:s1", TypeDashboard, compute)
		require.NoError(t, err)
		_, err = c.GetOrCompute(ctx, "dashboard:u1:s1", TypeDashboard, compute)
		require.NoError(t, err)

		r := c.Report()
		assert.Equal(t, int64(1), r.Hits)
		assert.Equal(t, int64(1), r.Misses)
		assert.InDelta(t, 50.0, r.HitRatePercent, 0.001)
		assert.Equal(t, 1, r.TotalKeys)
	})

	t.Run("TypeBreakdown", func(t *testing.T) {
		c, _ := newTestCache(t, Config{})
		seedKeys(c,
			"dashboard:u1:s1",
			"dashboard:u2:s1",
			"promedio_periodo:st1:s1:p1",
			"destinatarios",
		)

		r := c.Report()
		assert.Equal(t, 4, r.TotalKeys)
		assert.Equal(t, map[string]int{
			"dashboard":        2,
			"promedio_periodo": 1,
			"destinatarios":    1,
		}, r.TypeBreakdown)
	})

	t.Run("ExpiredKeysDropOut", func(t *testing.T) {
		c, clock := newTestCache(t, Config{})
		seedKeys(c, "dashboard:u1:s1")
		c.store.Set("destinatarios:u1:s1", "v", time.Second)

		clock.Advance(2 * time.Second)

		r := c.Report()
		assert.Equal(t, 1, r.TotalKeys)
		assert.Equal(t, map[string]int{"dashboard": 1}, r.TypeBreakdown)
	})

	t.Run("SerializesForTheAdminEndpoint", func(t *testing.T) {
		c, _ := newTestCache(t, Config{})
		seedKeys(c, "dashboard:u1:s1")

		data, err := json.Marshal(c.Report())
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Contains(t, decoded, "total_keys")
		assert.Contains(t, decoded, "hit_rate_percent")
		assert.Contains(t, decoded, "type_breakdown")
	})
}
