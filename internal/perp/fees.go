package perp

import "heimdall/internal/pricescalar"

// FeeStructure holds the fixed fee rates applied to fills and liquidations.
// MakerFee is negative: makers are rebated, not charged.
type FeeStructure struct {
	MakerFee        pricescalar.PriceScalar
	TakerFee        pricescalar.PriceScalar
	LiquidationFee  pricescalar.PriceScalar
	FundingInterval uint64
}

// NewFeeStructure constructs the reference fee schedule: -0.01% maker
// rebate, 0.05% taker fee, 0.3% liquidation fee, 8-hour funding interval.
func NewFeeStructure() *FeeStructure {
	return &FeeStructure{
		MakerFee:        pricescalar.FromFloat(-0.0001),
		TakerFee:        pricescalar.FromFloat(0.0005),
		LiquidationFee:  pricescalar.FromFloat(0.003),
		FundingInterval: FundingIntervalSeconds,
	}
}

// CalculateFee returns the fee owed (or rebated, if negative) on a fill of
// notionalValue, using the maker or taker rate depending on isMaker.
func (f *FeeStructure) CalculateFee(isMaker bool, notionalValue pricescalar.PriceScalar) pricescalar.PriceScalar {
	rate := f.TakerFee
	if isMaker {
		rate = f.MakerFee
	}
	return notionalValue.MustMul(rate)
}
