package perp

import "heimdall/internal/pricescalar"

const maxMarkSamples = 100

var (
	impactBidFactor    = pricescalar.FromFloat(0.999)
	impactAskFactor    = pricescalar.FromFloat(1.001)
	two                = pricescalar.FromInt(2)
	three              = pricescalar.FromInt(3)
	fundingBasisDecay  = pricescalar.FromFloat(0.9)
	fundingBasisWeight = pricescalar.FromFloat(0.1)
)

// MarkSample is one retained (timestamp, mark, index) observation, exposed
// by History for reporting without reaching into MarkPrice's internal
// buffer.
type MarkSample struct {
	Timestamp  uint64
	Price      pricescalar.PriceScalar
	IndexPrice pricescalar.PriceScalar
}

// MarkPrice is the fair valuation used for PnL, margin, and liquidation
// checks: an impact-weighted blend of the book's best bid/ask smoothed
// toward the index price, with a slow EMA tracking the basis between fair
// value and index for funding.
type MarkPrice struct {
	Price        pricescalar.PriceScalar
	FairPrice    pricescalar.PriceScalar
	IndexPrice   pricescalar.PriceScalar
	FundingBasis pricescalar.PriceScalar

	samples []MarkSample
}

// NewMarkPrice seeds the mark at 1000, matching the reference feed's
// bootstrap value before any book activity has occurred.
func NewMarkPrice() *MarkPrice {
	seed := pricescalar.FromInt(1000)
	return &MarkPrice{Price: seed, FairPrice: seed, IndexPrice: seed}
}

// Calculate recomputes Price from the book's best bid/ask and the current
// index price. bestBid and bestAsk must both be positive and non-crossed;
// a crossed market is refused rather than silently priced.
func (m *MarkPrice) Calculate(bestBid, bestAsk, indexPrice pricescalar.PriceScalar) error {
	if !bestBid.IsPositive() || !bestAsk.IsPositive() {
		return ErrInvalidPrice
	}
	if bestBid.GreaterThan(bestAsk) {
		return ErrMarketManipulation
	}

	fair, err := bestBid.Add(bestAsk)
	if err != nil {
		return err
	}
	fair, err = fair.Div(two)
	if err != nil {
		return err
	}
	m.FairPrice = fair
	m.IndexPrice = indexPrice

	basis := m.FairPrice.MustSub(m.IndexPrice)
	m.FundingBasis = m.FundingBasis.MustMul(fundingBasisDecay).MustAdd(basis.MustMul(fundingBasisWeight))

	impactBid := bestBid.MustMul(impactBidFactor)
	impactAsk := bestAsk.MustMul(impactAskFactor)
	impactMid, err := impactBid.Add(impactAsk)
	if err != nil {
		return err
	}
	impactMid, err = impactMid.Div(two)
	if err != nil {
		return err
	}

	weighted := impactMid.MustAdd(indexPrice.MustMul(two))
	price, err := weighted.Div(three)
	if err != nil {
		return err
	}
	m.Price = price

	m.samples = append(m.samples, MarkSample{Timestamp: uint64(len(m.samples)), Price: m.Price, IndexPrice: indexPrice})
	if len(m.samples) > maxMarkSamples {
		m.samples = m.samples[1:]
	}

	return nil
}

// History returns up to the most recent limit retained mark/index samples,
// oldest first.
func (m *MarkPrice) History(limit int) []MarkSample {
	if limit <= 0 || len(m.samples) == 0 {
		return nil
	}
	start := 0
	if len(m.samples) > limit {
		start = len(m.samples) - limit
	}
	out := make([]MarkSample, len(m.samples)-start)
	copy(out, m.samples[start:])
	return out
}
