package perp

import "heimdall/internal/pricescalar"

// PositionSide is the two-valued tag distinguishing a long from a short
// perpetual position.
type PositionSide int

const (
	Long PositionSide = iota
	Short
)

func (s PositionSide) String() string {
	if s == Long {
		return "long"
	}
	return "short"
}

// Position is a trader's open exposure on the instrument. LiquidationPrice
// and BankruptcyPrice are computed once at open and held fixed; they are not
// recomputed as margin or mark price moves, matching the original's
// open-time snapshot semantics.
type Position struct {
	TraderID         uint64
	Side             PositionSide
	Size             pricescalar.PriceScalar
	EntryPrice       pricescalar.PriceScalar
	Margin           pricescalar.PriceScalar
	Leverage         pricescalar.PriceScalar
	UnrealizedPnL    pricescalar.PriceScalar
	LiquidationPrice pricescalar.PriceScalar
	BankruptcyPrice  pricescalar.PriceScalar
}
