package perp

import "heimdall/internal/pricescalar"

const (
	// FundingIntervalSeconds is the period between funding settlements and
	// the default TWAP lookback window for the premium.
	FundingIntervalSeconds uint64 = 28800

	defaultSampleIntervalSeconds uint64 = 60
	defaultMaxSamples                   = 480
)

// MaxFundingRatePerInterval and MinFundingRatePerInterval bound the clamped
// rate CalculateFundingRate may return. Named for what they clamp, rather
// than the original's bare MAX/MIN_FUNDING_RATE divided by 100 at the call
// site.
var (
	MaxFundingRatePerInterval = pricescalar.FromFloat(0.01)
	MinFundingRatePerInterval = pricescalar.FromFloat(-0.01)
)

// PriceSample is one retained (mark, index, timestamp) observation used to
// TWAP the funding premium, exposed by Samples for reporting.
type PriceSample struct {
	MarkPrice  pricescalar.PriceScalar
	IndexPrice pricescalar.PriceScalar
	Timestamp  uint64
}

// FundingRate tracks the premium between mark and index price over a
// rolling sample window and derives the periodic funding rate and payments
// from it. InterestRate is held at zero, matching perpetual markets with no
// external lending-rate input.
type FundingRate struct {
	CurrentRate       pricescalar.PriceScalar
	NextFundingTime   uint64
	PremiumIndex      pricescalar.PriceScalar
	InterestRate      pricescalar.PriceScalar
	LongOpenInterest  pricescalar.PriceScalar
	ShortOpenInterest pricescalar.PriceScalar

	samples        []PriceSample
	sampleInterval uint64
	maxSamples     int
}

// NewFundingRate constructs a FundingRate with the default sample cadence
// and window.
func NewFundingRate() *FundingRate {
	return &FundingRate{
		CurrentRate:       pricescalar.Zero,
		NextFundingTime:   FundingIntervalSeconds,
		PremiumIndex:      pricescalar.Zero,
		InterestRate:      pricescalar.Zero,
		LongOpenInterest:  pricescalar.Zero,
		ShortOpenInterest: pricescalar.Zero,
		sampleInterval:    defaultSampleIntervalSeconds,
		maxSamples:        defaultMaxSamples,
	}
}

// AddPriceSample records a (mark, index) observation at timestamp, evicting
// the oldest sample once the window exceeds maxSamples.
func (f *FundingRate) AddPriceSample(markPrice, indexPrice pricescalar.PriceScalar, timestamp uint64) {
	f.samples = append(f.samples, PriceSample{MarkPrice: markPrice, IndexPrice: indexPrice, Timestamp: timestamp})
	if len(f.samples) > f.maxSamples {
		f.samples = f.samples[1:]
	}
}

// Samples returns up to the most recent limit retained price samples,
// oldest first.
func (f *FundingRate) Samples(limit int) []PriceSample {
	if limit <= 0 || len(f.samples) == 0 {
		return nil
	}
	start := 0
	if len(f.samples) > limit {
		start = len(f.samples) - limit
	}
	out := make([]PriceSample, len(f.samples)-start)
	copy(out, f.samples[start:])
	return out
}

// CalculateTWAPPremium time-weights (mark-index)/index over the trailing
// lookbackSeconds window, using each sample's gap to its successor as its
// weight and sampleInterval as the final sample's weight.
func (f *FundingRate) CalculateTWAPPremium(lookbackSeconds uint64) (pricescalar.PriceScalar, error) {
	if len(f.samples) == 0 {
		return pricescalar.Zero, nil
	}

	currentTime := f.samples[len(f.samples)-1].Timestamp
	startTime := uint64(0)
	if currentTime > lookbackSeconds {
		startTime = currentTime - lookbackSeconds
	}

	var relevant []PriceSample
	for _, s := range f.samples {
		if s.Timestamp >= startTime {
			relevant = append(relevant, s)
		}
	}
	if len(relevant) == 0 {
		return pricescalar.Zero, nil
	}

	weightedPremium := pricescalar.Zero
	totalWeight := pricescalar.Zero

	for i, s := range relevant {
		diff, err := s.MarkPrice.Sub(s.IndexPrice)
		if err != nil {
			return pricescalar.Zero, err
		}
		premium, err := diff.Div(s.IndexPrice)
		if err != nil {
			return pricescalar.Zero, err
		}

		var weight pricescalar.PriceScalar
		if i < len(relevant)-1 {
			weight = pricescalar.FromInt(int64(relevant[i+1].Timestamp - s.Timestamp))
		} else {
			weight = pricescalar.FromInt(int64(f.sampleInterval))
		}

		weightedPremium = weightedPremium.MustAdd(premium.MustMul(weight))
		totalWeight = totalWeight.MustAdd(weight)
	}

	if totalWeight.IsZero() {
		return pricescalar.Zero, nil
	}
	return weightedPremium.Div(totalWeight)
}

// CalculateFundingRate derives and clamps the current funding rate from the
// TWAP premium over FundingIntervalSeconds, and advances NextFundingTime.
func (f *FundingRate) CalculateFundingRate(timestamp uint64) (pricescalar.PriceScalar, error) {
	premium, err := f.CalculateTWAPPremium(FundingIntervalSeconds)
	if err != nil {
		return pricescalar.Zero, err
	}
	f.PremiumIndex = premium

	rate := premium.MustAdd(f.InterestRate)
	f.CurrentRate = rate.Clamp(MinFundingRatePerInterval, MaxFundingRatePerInterval)
	f.NextFundingTime = timestamp + FundingIntervalSeconds

	return f.CurrentRate, nil
}

// UpdateOpenInterest records the book's current aggregate long and short
// size, feeding GetImbalanceRatio.
func (f *FundingRate) UpdateOpenInterest(longOI, shortOI pricescalar.PriceScalar) {
	f.LongOpenInterest = longOI
	f.ShortOpenInterest = shortOI
}

// GetImbalanceRatio returns (long-short)/(long+short), or zero when open
// interest is zero on both sides.
func (f *FundingRate) GetImbalanceRatio() pricescalar.PriceScalar {
	total := f.LongOpenInterest.MustAdd(f.ShortOpenInterest)
	if total.IsZero() {
		return pricescalar.Zero
	}
	diff := f.LongOpenInterest.MustSub(f.ShortOpenInterest)
	ratio, err := diff.Div(total)
	if err != nil {
		// total was just checked non-zero; unreachable.
		return pricescalar.Zero
	}
	return ratio
}

// ShouldApplyFunding reports whether timestamp has reached NextFundingTime.
func (f *FundingRate) ShouldApplyFunding(timestamp uint64) bool {
	return timestamp >= f.NextFundingTime
}

// CalculateFundingPayment returns the funding cash flow for a position of
// positionSize at the current rate: longs pay when the rate is positive,
// shorts receive.
func (f *FundingRate) CalculateFundingPayment(positionSize pricescalar.PriceScalar, isLong bool) pricescalar.PriceScalar {
	payment := positionSize.MustMul(f.CurrentRate)
	if isLong {
		return payment.Neg()
	}
	return payment
}
