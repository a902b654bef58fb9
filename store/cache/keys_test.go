package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		k1, err := BuildKey(TypeDashboard, "u1", "s1")
		require.NoError(t, err)

		k2, err := BuildKey(TypeDashboard, "u1", "s1")
		require.NoError(t, err)

		assert.Equal(t, "dashboard:u1:s1", k1)
		assert.Equal(t, k1, k2)
	})

	t.Run("DistinctInputsDistinctKeys", func(t *testing.T) {
		keys := map[string]bool{}
		for _, args := range [][]string{
			{"u1", "s1"},
			{"u1", "s2"},
			{"u2", "s1"},
			{"u10", "s1"},
		} {
			k, err := BuildKey(TypeDashboard, args...)
			require.NoError(t, err)
			assert.False(t, keys[k], "duplicate key %q", k)
			keys[k] = true
		}
	})

	t.Run("NoParams", func(t *testing.T) {
		k, err := BuildKey(TypeRecipients)
		require.NoError(t, err)
		assert.Equal(t, "destinatarios", k)
	})

	t.Run("EmptyTypeName", func(t *testing.T) {
		_, err := BuildKey("")
		assert.Error(t, err)
	})

	t.Run("DelimiterInType", func(t *testing.T) {
		_, err := BuildKey("dash:board", "u1")
		assert.ErrorIs(t, err, ErrReservedDelimiter)
	})

	t.Run("DelimiterInParam", func(t *testing.T) {
		_, err := BuildKey(TypeDashboard, "u1", `{"q":"x"}`)
		assert.ErrorIs(t, err, ErrReservedDelimiter)
	})

	t.Run("UnderscoreTypeNameStaysIntact", func(t *testing.T) {
		k, err := BuildKey(TypePeriodAverage, "st1", "s1", "p2")
		require.NoError(t, err)
		assert.Equal(t, "promedio_periodo:st1:s1:p2", k)
		assert.Equal(t, TypePeriodAverage, TypeOf(k))
	})
}

func TestSafeParam(t *testing.T) {
	t.Run("CleanShortValuePassesThrough", func(t *testing.T) {
		assert.Equal(t, "course-42", SafeParam("course-42"))
	})

	t.Run("DelimiterGetsHashed", func(t *testing.T) {
		p := SafeParam(`{"query":"math","course":"c1"}`)
		assert.NotContains(t, p, KeyDelimiter)
		assert.Len(t, p, 16)
	})

	t.Run("LongValueGetsHashed", func(t *testing.T) {
		long := strings.Repeat("x", maxRawParamLen+1)
		assert.Len(t, SafeParam(long), 16)
	})

	t.Run("HashIsDeterministic", func(t *testing.T) {
		in := `{"filters":["a","b"],"page":3}`
		assert.Equal(t, SafeParam(in), SafeParam(in))
		assert.NotEqual(t, SafeParam(in), SafeParam(in+" "))
	})

	t.Run("HashedParamBuildsValidKey", func(t *testing.T) {
		k, err := BuildKey(TypeDashboard, "u1", "s1", SafeParam(`{"a":1}`))
		require.NoError(t, err)
		assert.Equal(t, TypeDashboard, TypeOf(k))
	})
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "dashboard", TypeOf("dashboard:u1:s1"))
	assert.Equal(t, "promedio_periodo", TypeOf("promedio_periodo:st1:s1:p2"))
	assert.Equal(t, "destinatarios", TypeOf("destinatarios"))
	assert.Equal(t, "", TypeOf(""))
}
