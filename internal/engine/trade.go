package engine

import "heimdall/internal/pricescalar"

// Trade is emitted, never stored, as matches occur during PlaceOrder. Price
// is always the maker's resting price: price improvement flows to the
// taker. No two trades returned by a single PlaceOrder call share a maker
// order — a maker may be split across separate taker calls, never within
// one.
type Trade struct {
	Price    pricescalar.PriceScalar
	Quantity pricescalar.PriceScalar
	MakerID  uint64
	TakerID  uint64
}
