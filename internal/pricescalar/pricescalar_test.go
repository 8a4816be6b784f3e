package pricescalar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFromString(t *testing.T, s string) PriceScalar {
	t.Helper()
	v, err := FromString(s)
	require.NoError(t, err)
	return v
}

func TestAddSubExact(t *testing.T) {
	a := mustFromString(t, "10.25")
	b := mustFromString(t, "0.125")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "10.375", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "10.125", diff.String())
}

func TestDivByZero(t *testing.T) {
	a := FromInt(10)
	_, err := a.Div(Zero)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestDivExact(t *testing.T) {
	a := FromInt(10)
	b := FromInt(4)
	q, err := a.Div(b)
	require.NoError(t, err)
	assert.Equal(t, "2.5", q.String())
}

func TestRoundToBankersRounding(t *testing.T) {
	cases := []struct {
		in   string
		n    int32
		want string
	}{
		{"2.345", 2, "2.34"}, // half-to-even: 4 is even, rounds down
		{"2.355", 2, "2.36"}, // half-to-even: 6 is even, rounds up from 5
		{"1.005", 2, "1"},    // half-to-even: 0 is even, rounds down; String trims trailing zeros
	}
	for _, c := range cases {
		v := mustFromString(t, c.in)
		assert.Equal(t, c.want, v.RoundTo(c.n).String())
	}
}

func TestClampMinMax(t *testing.T) {
	lo := FromInt(0)
	hi := FromInt(100)
	assert.True(t, FromInt(-5).Clamp(lo, hi).Equal(lo))
	assert.True(t, FromInt(500).Clamp(lo, hi).Equal(hi))
	assert.True(t, FromInt(50).Clamp(lo, hi).Equal(FromInt(50)))
}

func TestOrdering(t *testing.T) {
	a := FromInt(5)
	b := FromInt(10)
	assert.True(t, a.LessThan(b))
	assert.False(t, b.LessThan(a))
	assert.True(t, a.Max(b).Equal(b))
	assert.True(t, a.Min(b).Equal(a))
}
