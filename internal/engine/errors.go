package engine

import "errors"

// Sentinel errors surfaced by the matching core. All validation and
// arithmetic failures are returned synchronously; none are swallowed.
var (
	// ErrInvalidQuantity is returned when a quantity is non-positive or
	// exceeds the book's max_quantity bound.
	ErrInvalidQuantity = errors.New("engine: invalid quantity")

	// ErrInvalidPrice is returned when a price falls outside
	// [min_price, max_price].
	ErrInvalidPrice = errors.New("engine: invalid price")

	// ErrSequenceOverflow is returned when the book's monotone sequence
	// counter would wrap past its maximum value.
	ErrSequenceOverflow = errors.New("engine: sequence counter overflow")
)
