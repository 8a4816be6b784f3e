package engine

import "heimdall/internal/pricescalar"

// Order is a resting order on the book. It is created when PlaceOrder
// leaves an unfilled remainder, mutated only by partial fills decrementing
// RemainingQty, and destroyed when RemainingQty reaches zero or the book
// is cleared. An Order belongs to exactly one price level on exactly one
// side; it points nowhere else.
type Order struct {
	ID           uint64
	RemainingQty pricescalar.PriceScalar
	Sequence     uint64
}
