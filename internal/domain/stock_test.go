package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemIdentityValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    ItemIdentity
		wantErr bool
	}{
		{"valid", ItemIdentity{Name: "Cement", Unit: "bag", Category: "material"}, false},
		{"no category", ItemIdentity{Name: "Cement", Unit: "bag"}, false},
		{"missing name", ItemIdentity{Unit: "bag"}, true},
		{"missing unit", ItemIdentity{Name: "Cement"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewStockItem(t *testing.T) {
	item := ItemIdentity{Name: "Rebar", Unit: "ton", Category: "material"}

	stock, err := NewStockItem(item, "site-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, stock.Quantity)
	assert.Equal(t, "site-1", stock.SiteID)
	assert.False(t, stock.IsCompanyStock())

	_, err = NewStockItem(item, CompanyHolder, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	pool, err := NewStockItem(item, CompanyHolder, 0)
	require.NoError(t, err)
	assert.True(t, pool.IsCompanyStock())
	assert.Equal(t, 0, pool.Quantity)
}

func TestStockItemCreditDebit(t *testing.T) {
	item := ItemIdentity{Name: "Cement", Unit: "bag"}
	stock, err := NewStockItem(item, CompanyHolder, 5)
	require.NoError(t, err)

	require.NoError(t, stock.Credit(3))
	assert.Equal(t, 8, stock.Quantity)

	require.NoError(t, stock.Debit(8))
	assert.Equal(t, 0, stock.Quantity)

	// zero-quantity line persists and further debits are refused
	err = stock.Debit(1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 0, stock.Quantity)

	assert.ErrorIs(t, stock.Credit(0), ErrInvalidQuantity)
	assert.ErrorIs(t, stock.Debit(-2), ErrInvalidQuantity)
}

func TestStockItemHasAvailable(t *testing.T) {
	stock := &StockItem{Quantity: 4}

	assert.True(t, stock.HasAvailable(4))
	assert.True(t, stock.HasAvailable(1))
	assert.False(t, stock.HasAvailable(5))
	assert.False(t, stock.HasAvailable(0))
	assert.False(t, stock.HasAvailable(-1))
}

func TestHolderLabel(t *testing.T) {
	assert.Equal(t, "company", HolderLabel(CompanyHolder))
	assert.Equal(t, "site abc", HolderLabel("abc"))
}
