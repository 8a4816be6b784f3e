package engine

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/tidwall/btree"

	"heimdall/internal/pricescalar"
)

// PriceLevel is a FIFO queue of resting Orders at a single price. Insertion
// order reflects arrival order, which equals Sequence order across the
// whole book (I3). Empty levels are removed eagerly from their side map.
type PriceLevel struct {
	Price  pricescalar.PriceScalar
	Orders []*Order
}

// TotalQuantity sums RemainingQty over the level's queue (I4).
func (l *PriceLevel) TotalQuantity() pricescalar.PriceScalar {
	total := pricescalar.Zero
	for _, o := range l.Orders {
		total = total.MustAdd(o.RemainingQty)
	}
	return total
}

// PriceLevels is the ordered side map: a price key to a FIFO queue of
// resting orders, backed by a balanced tree for O(log L) best-quote
// retrieval and insertion, grounded on fenrir/internal/engine/orderbook.go.
type PriceLevels = btree.BTreeG[*PriceLevel]

// Quote is a best-priced level's price and aggregate resting quantity.
type Quote struct {
	Price    pricescalar.PriceScalar
	Quantity pricescalar.PriceScalar
}

// OrderBook is the matching core for a single instrument: two ordered
// price-level maps and a monotonically increasing sequence counter
// providing time priority (I5). All operations are synchronous and take
// exclusive access to the structure for their duration; there is no
// internal parallelism (spec §5).
type OrderBook struct {
	bids *PriceLevels // descending: best bid = highest price
	asks *PriceLevels // ascending: best ask = lowest price

	sequence uint64

	minPrice    pricescalar.PriceScalar
	maxPrice    pricescalar.PriceScalar
	maxQuantity pricescalar.PriceScalar

	log zerolog.Logger
}

// NewOrderBook constructs an empty book bounded by the given price and
// quantity limits (spec §4.2's validation bounds).
func NewOrderBook(minPrice, maxPrice, maxQuantity pricescalar.PriceScalar) *OrderBook {
	return &OrderBook{
		bids:        btree.NewBTreeG(buyLess),
		asks:        btree.NewBTreeG(sellLess),
		minPrice:    minPrice,
		maxPrice:    maxPrice,
		maxQuantity: maxQuantity,
		log:         zerolog.Nop(),
	}
}

// WithLogger attaches a structured logger for trade/rejection observability.
// Logging never substitutes for the returned error.
func (b *OrderBook) WithLogger(log zerolog.Logger) *OrderBook {
	b.log = log
	return b
}

// PlaceOrder validates and matches a limit order, returning the trades
// produced in strict match order. A non-crossing remainder rests on the
// taker's own side (I1). Crossed states never persist once PlaceOrder
// returns (I2).
func (b *OrderBook) PlaceOrder(side Side, price, qty pricescalar.PriceScalar, id uint64) ([]Trade, error) {
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if qty.GreaterThan(b.maxQuantity) {
		return nil, ErrInvalidQuantity
	}
	if price.LessThan(b.minPrice) || price.GreaterThan(b.maxPrice) {
		return nil, ErrInvalidPrice
	}
	if b.sequence == math.MaxUint64 {
		return nil, ErrSequenceOverflow
	}

	seq := b.sequence
	b.sequence++

	var (
		trades []Trade
		err    error
	)
	switch side {
	case Buy:
		trades, err = b.match(side, b.asks, price, qty, id, seq)
	case Sell:
		trades, err = b.match(side, b.bids, price, qty, id, seq)
	}
	if err != nil {
		return nil, err
	}

	b.log.Debug().
		Uint64("id", id).
		Str("side", side.String()).
		Str("price", price.String()).
		Str("qty", qty.String()).
		Int("trades", len(trades)).
		Msg("order placed")

	return trades, nil
}

// match walks the opposing side in best-first order while it crosses the
// taker's limit, consuming from the front of each level's queue (I3) and
// emitting trades at the maker's resting price. Any non-crossing remainder
// is appended to the taker's own side.
func (b *OrderBook) match(side Side, opposing *PriceLevels, price, qty pricescalar.PriceScalar, takerID, seq uint64) ([]Trade, error) {
	var trades []Trade
	remaining := qty

	for remaining.IsPositive() {
		level, ok := opposing.Min()
		if !ok || !crosses(side, level.Price, price) {
			break
		}

		for remaining.IsPositive() && len(level.Orders) > 0 {
			maker := level.Orders[0]
			fill := remaining.Min(maker.RemainingQty)

			trades = append(trades, Trade{
				Price:    level.Price,
				Quantity: fill,
				MakerID:  maker.ID,
				TakerID:  takerID,
			})

			remaining = remaining.MustSub(fill)
			maker.RemainingQty = maker.RemainingQty.MustSub(fill)
			if maker.RemainingQty.IsZero() {
				level.Orders = level.Orders[1:]
			}
		}

		if len(level.Orders) == 0 {
			opposing.Delete(level)
		}
	}

	if remaining.IsPositive() {
		b.restOn(side, price, remaining, takerID, seq)
	}

	return trades, nil
}

// restOn appends the unfilled remainder as a new resting Order on side's
// own book at price, creating the level if it does not yet exist.
func (b *OrderBook) restOn(side Side, price, remaining pricescalar.PriceScalar, id, seq uint64) {
	own := b.bids
	if side == Sell {
		own = b.asks
	}

	order := &Order{ID: id, RemainingQty: remaining, Sequence: seq}

	level, ok := own.Get(&PriceLevel{Price: price})
	if ok {
		level.Orders = append(level.Orders, order)
		return
	}
	own.Set(&PriceLevel{Price: price, Orders: []*Order{order}})
}

// BestBid returns the best (highest-priced) bid level's price and
// aggregate resting quantity.
func (b *OrderBook) BestBid() (Quote, bool) {
	return bestOf(b.bids)
}

// BestAsk returns the best (lowest-priced) ask level's price and aggregate
// resting quantity.
func (b *OrderBook) BestAsk() (Quote, bool) {
	return bestOf(b.asks)
}

func bestOf(levels *PriceLevels) (Quote, bool) {
	level, ok := levels.Min()
	if !ok {
		return Quote{}, false
	}
	return Quote{Price: level.Price, Quantity: level.TotalQuantity()}, true
}

// BidDepth returns the number of distinct bid price levels.
func (b *OrderBook) BidDepth() int { return b.bids.Len() }

// AskDepth returns the number of distinct ask price levels.
func (b *OrderBook) AskDepth() int { return b.asks.Len() }

// BidLevels returns up to limit best-first (price, total_qty) pairs on the
// bid side.
func (b *OrderBook) BidLevels(limit int) []Quote {
	return levelsOf(b.bids, limit)
}

// AskLevels returns up to limit best-first (price, total_qty) pairs on the
// ask side.
func (b *OrderBook) AskLevels(limit int) []Quote {
	return levelsOf(b.asks, limit)
}

func levelsOf(levels *PriceLevels, limit int) []Quote {
	if limit <= 0 {
		return nil
	}
	quotes := make([]Quote, 0, limit)
	levels.Scan(func(level *PriceLevel) bool {
		quotes = append(quotes, Quote{Price: level.Price, Quantity: level.TotalQuantity()})
		return len(quotes) < limit
	})
	return quotes
}

// IsEmpty reports whether both sides of the book hold no resting orders.
func (b *OrderBook) IsEmpty() bool {
	return b.bids.Len() == 0 && b.asks.Len() == 0
}

// Clear removes all resting orders from both sides. It is the only bulk
// release of book memory.
func (b *OrderBook) Clear() {
	b.bids.Clear()
	b.asks.Clear()
}

// Sequence returns the next sequence number that will be assigned, for
// diagnostics and tests asserting I5's monotonicity.
func (b *OrderBook) Sequence() uint64 { return b.sequence }
