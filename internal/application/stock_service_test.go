package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsite-platform/stock-service/internal/domain"
	apperrors "github.com/buildsite-platform/stock-service/pkg/errors"
)

type stockFixture struct {
	stocks    *fakeStockRepo
	sites     *fakeSiteAccounts
	publisher *fakePublisher
	service   *StockApplicationService
}

func newStockFixture() *stockFixture {
	f := &stockFixture{
		stocks:    newFakeStockRepo(),
		sites:     newFakeSiteAccounts(),
		publisher: &fakePublisher{},
	}
	f.service = NewStockApplicationService(f.stocks, f.sites, f.publisher, testMetrics(), testLogger())
	return f
}

func TestAddStockCreatesLine(t *testing.T) {
	f := newStockFixture()

	dto, err := f.service.AddStock(context.Background(), AddStockCommand{
		Name:     "Cement",
		Unit:     "bag",
		Category: "material",
		Quantity: 10,
		Actor:    "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, dto.Quantity)
	assert.Equal(t, "company", dto.HolderName)
	assert.Equal(t, 10, f.stocks.quantity(cementBags, domain.CompanyHolder))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.EventStockAdded, f.publisher.events[0].event.Type)
}

func TestAddStockAccumulates(t *testing.T) {
	f := newStockFixture()
	f.stocks.seed(cementBags, "site-1", 5)

	dto, err := f.service.AddStock(context.Background(), AddStockCommand{
		Name:     "Cement",
		Unit:     "bag",
		Category: "material",
		SiteID:   "site-1",
		Quantity: 3,
		Actor:    "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 8, dto.Quantity)
	assert.Equal(t, 8, f.stocks.quantity(cementBags, "site-1"))
}

func TestAddStockDistinctIdentities(t *testing.T) {
	f := newStockFixture()
	f.stocks.seed(cementBags, domain.CompanyHolder, 5)

	// same name, different unit is a separate ledger line
	_, err := f.service.AddStock(context.Background(), AddStockCommand{
		Name:     "Cement",
		Unit:     "pallet",
		Category: "material",
		Quantity: 2,
		Actor:    "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, f.stocks.quantity(cementBags, domain.CompanyHolder))
	pallets := domain.ItemIdentity{Name: "Cement", Unit: "pallet", Category: "material"}
	assert.Equal(t, 2, f.stocks.quantity(pallets, domain.CompanyHolder))
}

func TestAddStockValidation(t *testing.T) {
	f := newStockFixture()

	_, err := f.service.AddStock(context.Background(), AddStockCommand{
		Unit: "bag", Quantity: 1, Actor: "user-1"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)

	_, err = f.service.AddStock(context.Background(), AddStockCommand{
		Name: "Cement", Unit: "bag", Quantity: 0, Actor: "user-1"})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)

	_, err = f.service.AddStock(context.Background(), AddStockCommand{
		Name: "Cement", Unit: "bag", Quantity: 1})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestListStocksResolvesSiteNames(t *testing.T) {
	f := newStockFixture()
	f.sites.names["site-1"] = "Riverside Tower"
	f.stocks.seed(cementBags, domain.CompanyHolder, 5)
	f.stocks.seed(cementBags, "site-1", 3)

	list, err := f.service.ListStocks(context.Background(), ListStocksQuery{})
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)

	byHolder := make(map[string]string)
	for _, stock := range list.Stocks {
		byHolder[stock.SiteID] = stock.HolderName
	}
	assert.Equal(t, "company", byHolder[domain.CompanyHolder])
	assert.Equal(t, "Riverside Tower", byHolder["site-1"])
}

func TestListStocksScopedToSite(t *testing.T) {
	f := newStockFixture()
	f.stocks.seed(cementBags, domain.CompanyHolder, 5)
	f.stocks.seed(cementBags, "site-1", 3)

	list, err := f.service.ListStocks(context.Background(), ListStocksQuery{SiteID: "site-1"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, 3, list.Stocks[0].Quantity)
}
