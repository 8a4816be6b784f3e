package perp

import "heimdall/internal/pricescalar"

const maxPriceHistory = 1000

// OraclePrice models an external index feed: a spot price perturbed by a
// small amount of simulated noise, with its own TWAP over recent updates.
// Confidence and Source are carried for downstream display; neither feeds
// the update arithmetic.
type OraclePrice struct {
	Price      pricescalar.PriceScalar
	Timestamp  uint64
	Confidence pricescalar.PriceScalar
	Source     string

	history []pricescalar.PriceScalar
}

// NewOraclePrice seeds the feed at price with a "Simulated" source and
// 0.99 confidence, matching the reference feed's defaults.
func NewOraclePrice(price pricescalar.PriceScalar) *OraclePrice {
	return &OraclePrice{
		Price:      price,
		Confidence: pricescalar.FromFloat(0.99),
		Source:     "Simulated",
	}
}

// RandSource is the minimal random-number interface Update draws noise
// from. Passing it explicitly rather than reading a process-global RNG
// keeps the feed deterministic and testable.
type RandSource interface {
	// Float64 returns a value in [0, 1), matching math/rand.Rand's Float64.
	Float64() float64
}

// Update perturbs spotPrice by up to +/-0.05% of simulated noise drawn from
// rng, advances Timestamp, and appends the result to the TWAP history.
func (o *OraclePrice) Update(spotPrice pricescalar.PriceScalar, rng RandSource) error {
	noise := (rng.Float64() - 0.5) * 0.001
	noiseFactor := pricescalar.One.MustAdd(pricescalar.FromFloat(noise))

	price, err := spotPrice.Mul(noiseFactor)
	if err != nil {
		return err
	}
	o.Price = price

	o.Timestamp++
	o.history = append(o.history, o.Price)
	if len(o.history) > maxPriceHistory {
		o.history = o.history[1:]
	}

	return nil
}

// GetTWAP averages the most recent lookbackPeriods updates, or returns the
// current price if no history has accumulated yet.
func (o *OraclePrice) GetTWAP(lookbackPeriods int) pricescalar.PriceScalar {
	if lookbackPeriods <= 0 || len(o.history) == 0 {
		return o.Price
	}

	start := 0
	if len(o.history) > lookbackPeriods {
		start = len(o.history) - lookbackPeriods
	}
	samples := o.history[start:]
	if len(samples) == 0 {
		return o.Price
	}

	sum := pricescalar.Zero
	for _, s := range samples {
		sum = sum.MustAdd(s)
	}
	avg, err := sum.Div(pricescalar.FromInt(int64(len(samples))))
	if err != nil {
		// len(samples) > 0 was just checked; unreachable.
		return o.Price
	}
	return avg
}
