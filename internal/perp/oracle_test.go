package perp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand is a deterministic RandSource for reproducible noise in tests.
type fixedRand struct{ v float64 }

func (r fixedRand) Float64() float64 { return r.v }

func TestOraclePrice_UpdateAppliesNoise(t *testing.T) {
	o := NewOraclePrice(mustPrice(t, "1000"))
	// Float64() = 0.5 -> noise = (0.5-0.5)*0.001 = 0, so price should be unchanged.
	err := o.Update(mustPrice(t, "1000"), fixedRand{v: 0.5})
	require.NoError(t, err)
	assert.True(t, o.Price.Equal(mustPrice(t, "1000")))
	assert.Equal(t, uint64(1), o.Timestamp)
}

func TestOraclePrice_UpdateAdvancesTimestamp(t *testing.T) {
	o := NewOraclePrice(mustPrice(t, "1000"))
	for i := 0; i < 3; i++ {
		require.NoError(t, o.Update(mustPrice(t, "1000"), fixedRand{v: 0.5}))
	}
	assert.Equal(t, uint64(3), o.Timestamp)
}

func TestOraclePrice_GetTWAP_NoHistory(t *testing.T) {
	o := NewOraclePrice(mustPrice(t, "1234"))
	assert.True(t, o.GetTWAP(10).Equal(mustPrice(t, "1234")))
}

func TestOraclePrice_GetTWAP_AveragesRecentWindow(t *testing.T) {
	o := NewOraclePrice(mustPrice(t, "1000"))
	require.NoError(t, o.Update(mustPrice(t, "1000"), fixedRand{v: 0.5}))
	require.NoError(t, o.Update(mustPrice(t, "2000"), fixedRand{v: 0.5}))

	twap := o.GetTWAP(2)
	assert.True(t, twap.Equal(mustPrice(t, "1500")))
}

func TestOraclePrice_GetTWAP_NonPositiveLookbackReturnsCurrentPrice(t *testing.T) {
	o := NewOraclePrice(mustPrice(t, "1000"))
	require.NoError(t, o.Update(mustPrice(t, "1000"), fixedRand{v: 0.5}))
	require.NoError(t, o.Update(mustPrice(t, "2000"), fixedRand{v: 0.5}))

	assert.True(t, o.GetTWAP(0).Equal(o.Price))
	assert.True(t, o.GetTWAP(-1).Equal(o.Price))
}

func TestOraclePrice_EvictsOldestHistory(t *testing.T) {
	o := NewOraclePrice(mustPrice(t, "1000"))
	for i := 0; i < maxPriceHistory+5; i++ {
		require.NoError(t, o.Update(mustPrice(t, "1000"), fixedRand{v: 0.5}))
	}
	assert.Len(t, o.history, maxPriceHistory)
}
