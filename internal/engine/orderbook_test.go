package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heimdall/internal/pricescalar"
)

func newTestBook() *OrderBook {
	return NewOrderBook(pricescalar.FromInt(1), pricescalar.FromInt(1_000_000), pricescalar.FromInt(1_000_000))
}

func price(v string) pricescalar.PriceScalar {
	p, err := pricescalar.FromString(v)
	if err != nil {
		panic(err)
	}
	return p
}

// S1: empty book, first resting buy order.
func TestPlaceOrder_EmptyBookRests(t *testing.T) {
	book := newTestBook()
	trades, err := book.PlaceOrder(Buy, price("100"), price("10"), 1)
	require.NoError(t, err)
	assert.Empty(t, trades)

	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.True(t, bid.Price.Equal(price("100")))
	assert.True(t, bid.Quantity.Equal(price("10")))

	_, ok = book.BestAsk()
	assert.False(t, ok)
}

// S2: round-trip at the same price and quantity fully matches and empties the book.
func TestPlaceOrder_RoundTripFullMatch(t *testing.T) {
	book := newTestBook()
	_, err := book.PlaceOrder(Buy, price("100"), price("10"), 1)
	require.NoError(t, err)

	trades, err := book.PlaceOrder(Sell, price("100"), price("10"), 2)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].Price.Equal(price("100")))
	assert.True(t, trades[0].Quantity.Equal(price("10")))
	assert.EqualValues(t, 1, trades[0].MakerID)
	assert.EqualValues(t, 2, trades[0].TakerID)

	assert.True(t, book.IsEmpty())
}

// S3: a deep sweep across multiple bid levels, best price first.
func TestPlaceOrder_SweepAcrossLevels(t *testing.T) {
	book := newTestBook()
	for i, p := range []string{"99", "100", "101"} {
		_, err := book.PlaceOrder(Buy, price(p), price("10"), uint64(i+1))
		require.NoError(t, err)
	}

	trades, err := book.PlaceOrder(Sell, price("99"), price("25"), 4)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	assert.True(t, trades[0].Price.Equal(price("101")))
	assert.True(t, trades[0].Quantity.Equal(price("10")))
	assert.EqualValues(t, 3, trades[0].MakerID)

	assert.True(t, trades[1].Price.Equal(price("100")))
	assert.EqualValues(t, 2, trades[1].MakerID)

	assert.True(t, trades[2].Price.Equal(price("99")))
	assert.True(t, trades[2].Quantity.Equal(price("5")))
	assert.EqualValues(t, 1, trades[2].MakerID)

	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.True(t, bid.Price.Equal(price("99")))
	assert.True(t, bid.Quantity.Equal(price("5")))

	_, ok = book.BestAsk()
	assert.False(t, ok)
}

// S4: price-time priority within a single level.
func TestPlaceOrder_PriceTimePriority(t *testing.T) {
	book := newTestBook()
	for id := uint64(1); id <= 3; id++ {
		_, err := book.PlaceOrder(Buy, price("100"), price("10"), id)
		require.NoError(t, err)
	}

	trades, err := book.PlaceOrder(Sell, price("100"), price("25"), 4)
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.EqualValues(t, 1, trades[0].MakerID)
	assert.True(t, trades[0].Quantity.Equal(price("10")))
	assert.EqualValues(t, 2, trades[1].MakerID)
	assert.True(t, trades[1].Quantity.Equal(price("10")))
	assert.EqualValues(t, 3, trades[2].MakerID)
	assert.True(t, trades[2].Quantity.Equal(price("5")))

	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.True(t, bid.Quantity.Equal(price("5")))
}

// S5: price improvement flows to the taker.
func TestPlaceOrder_PriceImprovement(t *testing.T) {
	book := newTestBook()
	_, err := book.PlaceOrder(Buy, price("102"), price("10"), 1)
	require.NoError(t, err)

	trades, err := book.PlaceOrder(Sell, price("100"), price("10"), 2)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].Price.Equal(price("102")))
}

func TestPlaceOrder_RemainderRestsWhenNoCross(t *testing.T) {
	book := newTestBook()
	_, err := book.PlaceOrder(Buy, price("100"), price("10"), 1)
	require.NoError(t, err)

	trades, err := book.PlaceOrder(Sell, price("101"), price("20"), 2)
	require.NoError(t, err)
	assert.Empty(t, trades)

	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.True(t, bid.Price.Equal(price("100")))

	ask, ok := book.BestAsk()
	require.True(t, ok)
	assert.True(t, ask.Price.Equal(price("101")))
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	book := newTestBook()
	_, err := book.PlaceOrder(Buy, price("100"), price("0"), 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.True(t, book.IsEmpty())

	_, err = book.PlaceOrder(Buy, price("100"), price("-5"), 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = book.PlaceOrder(Buy, price("100"), price("2000000"), 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPlaceOrder_InvalidPrice(t *testing.T) {
	book := newTestBook()
	_, err := book.PlaceOrder(Buy, price("0"), price("10"), 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = book.PlaceOrder(Buy, price("2000000"), price("10"), 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

// I5: sequence is strictly monotone and never reused.
func TestPlaceOrder_SequenceMonotone(t *testing.T) {
	book := newTestBook()
	require.EqualValues(t, 0, book.Sequence())
	_, err := book.PlaceOrder(Buy, price("100"), price("1"), 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, book.Sequence())
	_, err = book.PlaceOrder(Buy, price("100"), price("1"), 2)
	require.NoError(t, err)
	require.EqualValues(t, 2, book.Sequence())
}

// A failed validation never consumes a sequence number.
func TestPlaceOrder_RejectedOrderDoesNotConsumeSequence(t *testing.T) {
	book := newTestBook()
	_, err := book.PlaceOrder(Buy, price("100"), price("0"), 1)
	require.Error(t, err)
	assert.EqualValues(t, 0, book.Sequence())
}

func TestClear(t *testing.T) {
	book := newTestBook()
	_, err := book.PlaceOrder(Buy, price("100"), price("10"), 1)
	require.NoError(t, err)
	_, err = book.PlaceOrder(Sell, price("101"), price("10"), 2)
	require.NoError(t, err)
	require.False(t, book.IsEmpty())

	book.Clear()
	assert.True(t, book.IsEmpty())
	assert.Equal(t, 0, book.BidDepth())
	assert.Equal(t, 0, book.AskDepth())
}

func TestBidAskLevels_BestFirstOrder(t *testing.T) {
	book := newTestBook()
	for i, p := range []string{"99", "100", "101"} {
		_, err := book.PlaceOrder(Buy, price(p), price("10"), uint64(i+1))
		require.NoError(t, err)
	}
	levels := book.BidLevels(2)
	require.Len(t, levels, 2)
	assert.True(t, levels[0].Price.Equal(price("101")))
	assert.True(t, levels[1].Price.Equal(price("100")))
	assert.Equal(t, 3, book.BidDepth())
}

// I2: best_bid < best_ask whenever both exist, after every call.
func TestInvariant_BookNeverCrossedAfterPlaceOrder(t *testing.T) {
	book := newTestBook()
	_, err := book.PlaceOrder(Buy, price("100"), price("10"), 1)
	require.NoError(t, err)
	_, err = book.PlaceOrder(Sell, price("105"), price("10"), 2)
	require.NoError(t, err)
	_, err = book.PlaceOrder(Buy, price("102"), price("5"), 3)
	require.NoError(t, err)

	bid, bidOk := book.BestBid()
	ask, askOk := book.BestAsk()
	if bidOk && askOk {
		assert.True(t, bid.Price.LessThan(ask.Price))
	}
}
