package engine

import "heimdall/internal/pricescalar"

// buyLess and sellLess are the two total orders over PriceScalar the book
// walks best-first: descending for bids (best = highest price) and
// ascending for asks (best = lowest price). Wrapping these as plain
// comparator funcs — rather than duplicating the match loop per side —
// lets OrderBook parameterise over a single best-first btree.BTreeG per
// side, per spec.md §9's "best-first iterator" guidance.
func buyLess(a, b *PriceLevel) bool {
	return a.Price.GreaterThan(b.Price)
}

func sellLess(a, b *PriceLevel) bool {
	return a.Price.LessThan(b.Price)
}

// crosses reports whether a resting level at levelPrice is marketable
// against a taker limit of price on the given side: for a buy taker,
// an ask level crosses while its price is at or below the taker's limit;
// for a sell taker, a bid level crosses while its price is at or above.
func crosses(side Side, levelPrice, takerPrice pricescalar.PriceScalar) bool {
	if side == Buy {
		return levelPrice.LessThanOrEqual(takerPrice)
	}
	return levelPrice.GreaterThanOrEqual(takerPrice)
}
