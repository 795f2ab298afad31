package pricing_test

import (
	"testing"

	"app/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRateTax(t *testing.T) {
	tax := pricing.FixedRateTax(10)

	assert.Equal(t, int64(400), tax(4000))
	//端数は切り捨て
	assert.Equal(t, int64(10), tax(105))
	assert.Equal(t, int64(0), tax(0))
	assert.Equal(t, int64(0), tax(-100))
}

func TestFlatShipping(t *testing.T) {
	shipping := pricing.FlatShipping(500)

	assert.Equal(t, int64(500), shipping(0))
	assert.Equal(t, int64(500), shipping(100000))
}

func TestFlatShippingWithFreeThreshold(t *testing.T) {
	shipping := pricing.FlatShippingWithFreeThreshold(500, 5000)

	assert.Equal(t, int64(500), shipping(4999))
	assert.Equal(t, int64(0), shipping(5000))
	assert.Equal(t, int64(0), shipping(10000))

	//threshold<=0なら常に一律
	always := pricing.FlatShippingWithFreeThreshold(500, 0)
	assert.Equal(t, int64(500), always(100000))
}
