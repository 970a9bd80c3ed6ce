package application

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuatorUsesPurchasePrice(t *testing.T) {
	purchases := &fakePurchaseHistory{prices: map[string]int64{"Cement": 2500}}
	valuator := NewValuator(purchases, testMetrics(), testLogger())

	value := valuator.Value(context.Background(), cementBags, 4)
	assert.Equal(t, int64(10000), value.Amount())
	assert.Equal(t, DefaultCurrency, value.Currency())
}

func TestValuatorMissingHistoryValuesZero(t *testing.T) {
	purchases := &fakePurchaseHistory{prices: map[string]int64{}}
	valuator := NewValuator(purchases, testMetrics(), testLogger())

	value := valuator.Value(context.Background(), cementBags, 4)
	assert.True(t, value.IsZero())
}

func TestValuatorLookupErrorValuesZero(t *testing.T) {
	purchases := &fakePurchaseHistory{findErr: assert.AnError}
	valuator := NewValuator(purchases, testMetrics(), testLogger())

	value := valuator.Value(context.Background(), cementBags, 4)
	assert.True(t, value.IsZero())
}

func TestValuatorOverflowValuesZero(t *testing.T) {
	purchases := &fakePurchaseHistory{prices: map[string]int64{"Cement": math.MaxInt64 / 2}}
	valuator := NewValuator(purchases, testMetrics(), testLogger())

	// A product that would wrap int64 degrades to zero, never to a
	// negative amount that would inflate a site's expenses.
	value := valuator.Value(context.Background(), cementBags, 3)
	assert.True(t, value.IsZero())
	assert.GreaterOrEqual(t, value.Amount(), int64(0))
}
