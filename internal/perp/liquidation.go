package perp

import "heimdall/internal/pricescalar"

// LiquidationEngine holds the margin and fee parameters that govern when a
// position is forced closed and what it costs to do so. Its rates are
// fractions (0.005 = 0.5%), not percentages.
type LiquidationEngine struct {
	MaintenanceMargin pricescalar.PriceScalar
	InitialMargin     pricescalar.PriceScalar
	LiquidationFee    pricescalar.PriceScalar
	InsuranceFund     pricescalar.PriceScalar
	ADLThreshold      pricescalar.PriceScalar
}

// NewLiquidationEngine constructs an engine with the reference parameters:
// 0.5% maintenance margin, 1% initial margin, 0.3% liquidation fee, a
// seeded $1,000,000 insurance fund, and an 80% ADL threshold.
func NewLiquidationEngine() *LiquidationEngine {
	return &LiquidationEngine{
		MaintenanceMargin: pricescalar.FromFloat(0.005),
		InitialMargin:     pricescalar.FromFloat(0.01),
		LiquidationFee:    pricescalar.FromFloat(0.003),
		InsuranceFund:     pricescalar.FromInt(1_000_000),
		ADLThreshold:      pricescalar.FromFloat(0.8),
	}
}

// CalculateLiquidationPrice returns the mark price at which position should
// be force-closed: entry price moved against the position by
// (maintenance margin + liquidation fee) / leverage. Never negative.
func (e *LiquidationEngine) CalculateLiquidationPrice(position *Position) (pricescalar.PriceScalar, error) {
	if !position.Leverage.IsPositive() {
		return pricescalar.Zero, &InvalidLeverageError{Leverage: position.Leverage}
	}

	marginRatio := e.MaintenanceMargin.MustAdd(e.LiquidationFee)
	adjustment, err := marginRatio.Div(position.Leverage)
	if err != nil {
		return pricescalar.Zero, err
	}

	var liqPrice pricescalar.PriceScalar
	switch position.Side {
	case Long:
		liqPrice = position.EntryPrice.MustMul(pricescalar.One.MustSub(adjustment))
	case Short:
		liqPrice = position.EntryPrice.MustMul(pricescalar.One.MustAdd(adjustment))
	}

	return liqPrice.Max(pricescalar.Zero), nil
}

// CalculateBankruptcyPrice returns the mark price at which the position's
// margin is fully exhausted: entry price moved against the position by
// margin/size. Never negative.
func (e *LiquidationEngine) CalculateBankruptcyPrice(position *Position) (pricescalar.PriceScalar, error) {
	if position.Size.IsZero() {
		return pricescalar.Zero, ErrInvalidQuantity
	}

	perUnitMargin, err := position.Margin.Div(position.Size)
	if err != nil {
		return pricescalar.Zero, err
	}

	var price pricescalar.PriceScalar
	switch position.Side {
	case Long:
		price = position.EntryPrice.MustSub(perUnitMargin)
	case Short:
		price = position.EntryPrice.MustAdd(perUnitMargin)
	}

	return price.Max(pricescalar.Zero), nil
}

// ShouldLiquidate reports whether markPrice has crossed position's
// (already computed) liquidation price.
func (e *LiquidationEngine) ShouldLiquidate(position *Position, markPrice pricescalar.PriceScalar) bool {
	switch position.Side {
	case Long:
		return markPrice.LessThanOrEqual(position.LiquidationPrice)
	default:
		return markPrice.GreaterThanOrEqual(position.LiquidationPrice)
	}
}

// CalculatePnL returns the unrealized profit or loss of position marked at
// markPrice.
func CalculatePnL(position *Position, markPrice pricescalar.PriceScalar) pricescalar.PriceScalar {
	diff := markPrice.MustSub(position.EntryPrice)
	pnl := diff.MustMul(position.Size)
	if position.Side == Short {
		return pnl.Neg()
	}
	return pnl
}

// CalculateMarginRatio returns (margin + unrealized PnL) / position notional
// at markPrice.
func (e *LiquidationEngine) CalculateMarginRatio(position *Position, markPrice pricescalar.PriceScalar) (pricescalar.PriceScalar, error) {
	notional := markPrice.MustMul(position.Size)
	if notional.IsZero() {
		return pricescalar.Zero, ErrInvalidQuantity
	}

	pnl := CalculatePnL(position, markPrice)
	return position.Margin.MustAdd(pnl).Div(notional)
}

// ShouldTriggerADL reports whether insuranceFundBalance has fallen below
// ADLThreshold of totalPositionsValue, the notional exposure auto-deleverage
// protects against. Both amounts are explicit parameters rather than read
// off the engine, so callers can evaluate the threshold against a balance
// from InsuranceFund and an aggregate computed from PositionManager without
// the two having to agree on a single shared field.
func (e *LiquidationEngine) ShouldTriggerADL(insuranceFundBalance, totalPositionsValue pricescalar.PriceScalar) (bool, error) {
	if totalPositionsValue.IsZero() {
		return false, ErrInvalidQuantity
	}
	ratio, err := insuranceFundBalance.Div(totalPositionsValue)
	if err != nil {
		return false, err
	}
	return ratio.LessThan(e.ADLThreshold), nil
}
