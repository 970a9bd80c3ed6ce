package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestStock(t *testing.T, siteID string, quantity int) *StockItem {
	t.Helper()
	stock, err := NewStockItem(ItemIdentity{Name: "Cement", Unit: "bag", Category: "material"}, siteID, quantity)
	require.NoError(t, err)
	stock.ID = primitive.NewObjectID()
	return stock
}

func TestNewTransferRequest(t *testing.T) {
	stock := newTestStock(t, CompanyHolder, 10)

	transfer, err := NewTransferRequest(stock, 4, "site-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, TransferRequested, transfer.Status)
	assert.Equal(t, stock.ID, transfer.StockID)
	assert.Equal(t, stock.Item, transfer.Item)
	assert.Equal(t, CompanyHolder, transfer.FromSiteID)
	assert.Equal(t, "site-1", transfer.ToSiteID)
	assert.True(t, transfer.FromCompany())
	assert.Nil(t, transfer.DecidedAt)
}

func TestNewTransferRequestValidation(t *testing.T) {
	stock := newTestStock(t, "site-1", 10)

	_, err := NewTransferRequest(stock, 0, "site-2", "user-1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewTransferRequest(stock, 3, "site-2", "")
	assert.ErrorIs(t, err, ErrMissingActor)

	_, err = NewTransferRequest(stock, 3, "site-1", "user-1")
	assert.ErrorIs(t, err, ErrSameHolder)

	// a request may exceed current availability; quantities are re-validated
	// at approval time
	transfer, err := NewTransferRequest(stock, 99, "site-2", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 99, transfer.Quantity)
}

func TestTransferDecide(t *testing.T) {
	stock := newTestStock(t, CompanyHolder, 10)

	transfer, err := NewTransferRequest(stock, 4, "site-1", "user-1")
	require.NoError(t, err)

	require.NoError(t, transfer.Approve("admin-1"))
	assert.Equal(t, TransferApproved, transfer.Status)
	assert.Equal(t, "admin-1", transfer.DecidedBy)
	require.NotNil(t, transfer.DecidedAt)

	// terminal states are final
	assert.ErrorIs(t, transfer.Reject("admin-2"), ErrInvalidTransferState)
	assert.ErrorIs(t, transfer.Approve("admin-2"), ErrInvalidTransferState)
	assert.Equal(t, TransferApproved, transfer.Status)
	assert.Equal(t, "admin-1", transfer.DecidedBy)
}

func TestTransferReject(t *testing.T) {
	stock := newTestStock(t, "site-1", 10)

	transfer, err := NewTransferRequest(stock, 4, CompanyHolder, "user-1")
	require.NoError(t, err)
	assert.False(t, transfer.FromCompany())

	assert.ErrorIs(t, transfer.Reject(""), ErrMissingActor)

	require.NoError(t, transfer.Reject("admin-1"))
	assert.Equal(t, TransferRejected, transfer.Status)
	assert.ErrorIs(t, transfer.Approve("admin-1"), ErrInvalidTransferState)
}

func TestTransferStatusIsTerminal(t *testing.T) {
	assert.False(t, TransferRequested.IsTerminal())
	assert.True(t, TransferApproved.IsTerminal())
	assert.True(t, TransferRejected.IsTerminal())
}
