package perp

import (
	"errors"
	"fmt"

	"heimdall/internal/pricescalar"
)

// Sentinel errors mirroring the core's plain validation failures.
var (
	ErrInvalidQuantity     = errors.New("perp: invalid quantity")
	ErrInvalidPrice        = errors.New("perp: invalid price")
	ErrMarketManipulation  = errors.New("perp: crossed market detected")
	ErrPositionAlreadyOpen = errors.New("perp: position already open for trader")
)

// InvalidLeverageError carries the offending leverage ratio, mirroring the
// original's InvalidLeverage(f64) variant.
type InvalidLeverageError struct {
	Leverage pricescalar.PriceScalar
}

func (e *InvalidLeverageError) Error() string {
	return fmt.Sprintf("perp: invalid leverage: %s", e.Leverage)
}

// InsufficientMarginError reports a margin shortfall with the amounts
// involved.
type InsufficientMarginError struct {
	Required pricescalar.PriceScalar
	Provided pricescalar.PriceScalar
}

func (e *InsufficientMarginError) Error() string {
	return fmt.Sprintf("perp: insufficient margin: required %s, provided %s", e.Required, e.Provided)
}

// PositionNotFoundError reports a close/update against an unknown trader.
type PositionNotFoundError struct {
	TraderID uint64
}

func (e *PositionNotFoundError) Error() string {
	return fmt.Sprintf("perp: position not found for trader %d", e.TraderID)
}
