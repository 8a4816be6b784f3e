package perp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsuranceFund_AddContribution(t *testing.T) {
	f := NewInsuranceFund(mustPrice(t, "1000"))
	f.AddContribution(mustPrice(t, "500"))
	assert.True(t, f.Balance().Equal(mustPrice(t, "1500")))
	assert.True(t, f.Contributions().Equal(mustPrice(t, "500")))
}

func TestInsuranceFund_ProcessPayout_Succeeds(t *testing.T) {
	f := NewInsuranceFund(mustPrice(t, "1000"))
	ok := f.ProcessPayout(mustPrice(t, "400"))
	assert.True(t, ok)
	assert.True(t, f.Balance().Equal(mustPrice(t, "600")))
	assert.True(t, f.Payouts().Equal(mustPrice(t, "400")))
}

func TestInsuranceFund_ProcessPayout_InsufficientBalance(t *testing.T) {
	f := NewInsuranceFund(mustPrice(t, "100"))
	ok := f.ProcessPayout(mustPrice(t, "400"))
	assert.False(t, ok)
	assert.True(t, f.Balance().Equal(mustPrice(t, "100")))
	assert.True(t, f.Payouts().IsZero())
}
