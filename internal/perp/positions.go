package perp

import (
	"sort"

	"heimdall/internal/pricescalar"
)

// PositionManager owns the book of open positions and the aggregate long
// and short interest they imply. All mutation goes through OpenPosition,
// ClosePosition, UpdatePositions, and ApplyFunding; there is no direct
// access to the underlying map.
type PositionManager struct {
	positions map[uint64]*Position

	TotalLongInterest  pricescalar.PriceScalar
	TotalShortInterest pricescalar.PriceScalar
	MaxLeverage        pricescalar.PriceScalar
	MaxPositionSize    pricescalar.PriceScalar
}

// NewPositionManager constructs an empty manager with the reference limits:
// 100x max leverage, 1,000,000 max position size.
func NewPositionManager() *PositionManager {
	return &PositionManager{
		positions:          make(map[uint64]*Position),
		TotalLongInterest:  pricescalar.Zero,
		TotalShortInterest: pricescalar.Zero,
		MaxLeverage:        pricescalar.FromInt(100),
		MaxPositionSize:    pricescalar.FromInt(1_000_000),
	}
}

// Position returns the trader's open position, if any.
func (m *PositionManager) Position(traderID uint64) (*Position, bool) {
	p, ok := m.positions[traderID]
	return p, ok
}

// Positions returns every open position, ordered by ascending trader ID for
// deterministic iteration.
func (m *PositionManager) Positions() []*Position {
	out := make([]*Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TraderID < out[j].TraderID })
	return out
}

// OpenPosition opens a new position for trader, rejecting the call outright
// if one is already open: callers must ClosePosition first rather than
// relying on an implicit overwrite.
func (m *PositionManager) OpenPosition(
	traderID uint64,
	side PositionSide,
	size, entryPrice, margin pricescalar.PriceScalar,
	engine *LiquidationEngine,
) (*Position, error) {
	if _, exists := m.positions[traderID]; exists {
		return nil, ErrPositionAlreadyOpen
	}

	if size.GreaterThan(m.MaxPositionSize) {
		return nil, ErrInvalidQuantity
	}
	if !margin.IsPositive() {
		return nil, &InsufficientMarginError{Required: pricescalar.One, Provided: pricescalar.Zero}
	}

	notional := entryPrice.MustMul(size)
	leverage, err := notional.Div(margin)
	if err != nil {
		return nil, err
	}
	if leverage.GreaterThan(m.MaxLeverage) {
		return nil, &InvalidLeverageError{Leverage: leverage}
	}

	requiredMargin := notional.MustMul(engine.InitialMargin).RoundTo(2)
	if margin.LessThan(requiredMargin) {
		return nil, &InsufficientMarginError{Required: requiredMargin, Provided: margin}
	}

	position := &Position{
		TraderID:   traderID,
		Side:       side,
		Size:       size,
		EntryPrice: entryPrice,
		Margin:     margin,
		Leverage:   leverage,
	}

	position.LiquidationPrice, err = engine.CalculateLiquidationPrice(position)
	if err != nil {
		return nil, err
	}
	position.BankruptcyPrice, err = engine.CalculateBankruptcyPrice(position)
	if err != nil {
		return nil, err
	}

	switch side {
	case Long:
		m.TotalLongInterest = m.TotalLongInterest.MustAdd(size)
	case Short:
		m.TotalShortInterest = m.TotalShortInterest.MustAdd(size)
	}

	m.positions[traderID] = position
	return position, nil
}

// ClosePosition removes and returns trader's position, unwinding its
// contribution to aggregate open interest.
func (m *PositionManager) ClosePosition(traderID uint64) (*Position, error) {
	position, ok := m.positions[traderID]
	if !ok {
		return nil, &PositionNotFoundError{TraderID: traderID}
	}
	delete(m.positions, traderID)

	switch position.Side {
	case Long:
		m.TotalLongInterest = m.TotalLongInterest.MustSub(position.Size)
	case Short:
		m.TotalShortInterest = m.TotalShortInterest.MustSub(position.Size)
	}

	return position, nil
}

// UpdatePositions marks every open position to markPrice and force-closes
// those the engine flags for liquidation, returning the liquidated trader
// IDs in ascending order.
func (m *PositionManager) UpdatePositions(markPrice pricescalar.PriceScalar, engine *LiquidationEngine) ([]uint64, error) {
	var liquidated []uint64

	for _, position := range m.Positions() {
		position.UnrealizedPnL = CalculatePnL(position, markPrice)
		if engine.ShouldLiquidate(position, markPrice) {
			liquidated = append(liquidated, position.TraderID)
		}
	}

	for _, traderID := range liquidated {
		if _, err := m.ClosePosition(traderID); err != nil {
			return nil, err
		}
	}

	return liquidated, nil
}

// ApplyFunding settles the current funding rate against every open
// position's margin and returns the payment applied per trader ID (signed:
// negative is a payment out, positive is a receipt in).
func (m *PositionManager) ApplyFunding(rate *FundingRate) map[uint64]pricescalar.PriceScalar {
	payments := make(map[uint64]pricescalar.PriceScalar, len(m.positions))

	for traderID, position := range m.positions {
		payment := rate.CalculateFundingPayment(position.Size, position.Side == Long)
		position.Margin = position.Margin.MustAdd(payment)
		payments[traderID] = payment
	}

	return payments
}
