package perp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTWAPPremium_Empty(t *testing.T) {
	f := NewFundingRate()
	premium, err := f.CalculateTWAPPremium(FundingIntervalSeconds)
	require.NoError(t, err)
	assert.True(t, premium.IsZero())
}

func TestCalculateTWAPPremium_ConstantPremium(t *testing.T) {
	f := NewFundingRate()
	for ts := uint64(0); ts <= 180; ts += 60 {
		f.AddPriceSample(mustPrice(t, "1010"), mustPrice(t, "1000"), ts)
	}

	premium, err := f.CalculateTWAPPremium(FundingIntervalSeconds)
	require.NoError(t, err)
	// (1010-1000)/1000 = 0.01 regardless of weighting, since every sample agrees.
	assert.True(t, premium.Equal(mustPrice(t, "0.01")))
}

func TestCalculateFundingRate_ClampsToBounds(t *testing.T) {
	f := NewFundingRate()
	for ts := uint64(0); ts <= 180; ts += 60 {
		f.AddPriceSample(mustPrice(t, "1500"), mustPrice(t, "1000"), ts)
	}

	rate, err := f.CalculateFundingRate(1000)
	require.NoError(t, err)
	assert.True(t, rate.Equal(MaxFundingRatePerInterval))
	assert.Equal(t, uint64(1000+FundingIntervalSeconds), f.NextFundingTime)
}

func TestCalculateFundingRate_ClampsToLowerBound(t *testing.T) {
	f := NewFundingRate()
	for ts := uint64(0); ts <= 180; ts += 60 {
		f.AddPriceSample(mustPrice(t, "500"), mustPrice(t, "1000"), ts)
	}

	rate, err := f.CalculateFundingRate(1000)
	require.NoError(t, err)
	assert.True(t, rate.Equal(MinFundingRatePerInterval))
}

func TestGetImbalanceRatio(t *testing.T) {
	f := NewFundingRate()
	f.UpdateOpenInterest(mustPrice(t, "150"), mustPrice(t, "50"))
	ratio := f.GetImbalanceRatio()
	assert.True(t, ratio.Equal(mustPrice(t, "0.5")))
}

func TestGetImbalanceRatio_ZeroOpenInterest(t *testing.T) {
	f := NewFundingRate()
	assert.True(t, f.GetImbalanceRatio().IsZero())
}

func TestShouldApplyFunding(t *testing.T) {
	f := NewFundingRate()
	assert.False(t, f.ShouldApplyFunding(0))
	assert.True(t, f.ShouldApplyFunding(FundingIntervalSeconds))
}

func TestCalculateFundingPayment_LongPaysWhenRatePositive(t *testing.T) {
	f := NewFundingRate()
	f.CurrentRate = mustPrice(t, "0.001")

	payment := f.CalculateFundingPayment(mustPrice(t, "10"), true)
	assert.True(t, payment.Equal(mustPrice(t, "-0.01")))

	payment = f.CalculateFundingPayment(mustPrice(t, "10"), false)
	assert.True(t, payment.Equal(mustPrice(t, "0.01")))
}

func TestAddPriceSample_EvictsOldest(t *testing.T) {
	f := NewFundingRate()
	f.maxSamples = 2
	f.AddPriceSample(mustPrice(t, "1"), mustPrice(t, "1"), 1)
	f.AddPriceSample(mustPrice(t, "2"), mustPrice(t, "1"), 2)
	f.AddPriceSample(mustPrice(t, "3"), mustPrice(t, "1"), 3)

	assert.Len(t, f.Samples(10), 2)
	assert.Nil(t, f.Samples(0))
}
