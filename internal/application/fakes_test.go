package application

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/buildsite-platform/stock-service/internal/domain"
	"github.com/buildsite-platform/stock-service/pkg/kafka"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("stock-service-test")
	config.Output = io.Discard
	return logging.New(config)
}

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("stock-service-test"))
}

type stockKey struct {
	name     string
	unit     string
	category string
	siteID   string
}

func keyOf(item domain.ItemIdentity, siteID string) stockKey {
	return stockKey{name: item.Name, unit: item.Unit, category: item.Category, siteID: siteID}
}

type fakeStockRepo struct {
	stocks   map[stockKey]*domain.StockItem
	findErr  error
	writeErr error
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stocks: make(map[stockKey]*domain.StockItem)}
}

func (f *fakeStockRepo) seed(item domain.ItemIdentity, siteID string, quantity int) *domain.StockItem {
	stock := &domain.StockItem{
		ID:       primitive.NewObjectID(),
		Item:     item,
		SiteID:   siteID,
		Quantity: quantity,
	}
	f.stocks[keyOf(item, siteID)] = stock
	return stock
}

func (f *fakeStockRepo) quantity(item domain.ItemIdentity, siteID string) int {
	if stock, ok := f.stocks[keyOf(item, siteID)]; ok {
		return stock.Quantity
	}
	return 0
}

func (f *fakeStockRepo) total(item domain.ItemIdentity) int {
	total := 0
	for key, stock := range f.stocks {
		if key.name == item.Name && key.unit == item.Unit && key.category == item.Category {
			total += stock.Quantity
		}
	}
	return total
}

func (f *fakeStockRepo) snapshot() map[stockKey]int {
	snap := make(map[stockKey]int, len(f.stocks))
	for key, stock := range f.stocks {
		snap[key] = stock.Quantity
	}
	return snap
}

func (f *fakeStockRepo) restore(snap map[stockKey]int) {
	for key := range f.stocks {
		if _, ok := snap[key]; !ok {
			delete(f.stocks, key)
		}
	}
	for key, quantity := range snap {
		if stock, ok := f.stocks[key]; ok {
			stock.Quantity = quantity
		}
	}
}

func (f *fakeStockRepo) FindByID(ctx context.Context, id string) (*domain.StockItem, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, stock := range f.stocks {
		if stock.ID.Hex() == id {
			return stock, nil
		}
	}
	return nil, nil
}

func (f *fakeStockRepo) FindByIdentity(ctx context.Context, item domain.ItemIdentity, siteID string) (*domain.StockItem, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.stocks[keyOf(item, siteID)], nil
}

func (f *fakeStockRepo) FindAll(ctx context.Context, siteID string, limit, offset int) ([]*domain.StockItem, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var stocks []*domain.StockItem
	for _, stock := range f.stocks {
		if siteID == "" || stock.SiteID == siteID {
			stocks = append(stocks, stock)
		}
	}
	return stocks, nil
}

func (f *fakeStockRepo) Credit(ctx context.Context, item domain.ItemIdentity, siteID string, quantity int) (*domain.StockItem, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	stock, ok := f.stocks[keyOf(item, siteID)]
	if !ok {
		stock = f.seed(item, siteID, 0)
	}
	stock.Quantity += quantity
	stock.UpdatedAt = time.Now().UTC()
	return stock, nil
}

func (f *fakeStockRepo) DebitIfSufficient(ctx context.Context, item domain.ItemIdentity, siteID string, quantity int) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	stock, ok := f.stocks[keyOf(item, siteID)]
	if !ok || stock.Quantity < quantity {
		return domain.ErrInsufficientStock
	}
	stock.Quantity -= quantity
	return nil
}

type fakeTransferRepo struct {
	transfers map[string]*domain.TransferRequest
	insertErr error
	findErr   error
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[string]*domain.TransferRequest)}
}

func (f *fakeTransferRepo) Insert(ctx context.Context, transfer *domain.TransferRequest) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if transfer.ID.IsZero() {
		transfer.ID = primitive.NewObjectID()
	}
	clone := *transfer
	f.transfers[transfer.ID.Hex()] = &clone
	return nil
}

func (f *fakeTransferRepo) FindByID(ctx context.Context, id string) (*domain.TransferRequest, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	transfer, ok := f.transfers[id]
	if !ok {
		return nil, nil
	}
	clone := *transfer
	return &clone, nil
}

func (f *fakeTransferRepo) FindAll(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.TransferRequest, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var transfers []*domain.TransferRequest
	for _, transfer := range f.transfers {
		if status == "" || transfer.Status == status {
			clone := *transfer
			transfers = append(transfers, &clone)
		}
	}
	return transfers, nil
}

func (f *fakeTransferRepo) MarkDecided(ctx context.Context, id string, status domain.TransferStatus, actor string, decidedAt time.Time) error {
	transfer, ok := f.transfers[id]
	if !ok {
		return domain.ErrTransferNotFound
	}
	if transfer.Status != domain.TransferRequested {
		return domain.ErrInvalidTransferState
	}
	transfer.Status = status
	transfer.DecidedBy = actor
	transfer.DecidedAt = &decidedAt
	return nil
}

type fakeUsageRepo struct {
	usages    []*domain.UsageRecord
	insertErr error
}

func (f *fakeUsageRepo) Insert(ctx context.Context, usage *domain.UsageRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if usage.ID.IsZero() {
		usage.ID = primitive.NewObjectID()
	}
	f.usages = append(f.usages, usage)
	return nil
}

func (f *fakeUsageRepo) FindAll(ctx context.Context, siteID string, limit, offset int) ([]*domain.UsageRecord, error) {
	var usages []*domain.UsageRecord
	for _, usage := range f.usages {
		if siteID == "" || usage.SiteID == siteID {
			usages = append(usages, usage)
		}
	}
	return usages, nil
}

type appendedTransaction struct {
	siteID string
	txn    domain.SiteTransaction
}

type fakeSiteAccounts struct {
	names        map[string]string
	transactions []appendedTransaction
	expenses     map[string]int64
	writeErr     error
	namesErr     error
}

func newFakeSiteAccounts() *fakeSiteAccounts {
	return &fakeSiteAccounts{names: make(map[string]string), expenses: make(map[string]int64)}
}

func (f *fakeSiteAccounts) AppendTransaction(ctx context.Context, siteID string, txn domain.SiteTransaction) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.transactions = append(f.transactions, appendedTransaction{siteID: siteID, txn: txn})
	return nil
}

func (f *fakeSiteAccounts) AdjustExpenses(ctx context.Context, siteID string, delta int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.expenses[siteID] += delta
	return nil
}

func (f *fakeSiteAccounts) GetNames(ctx context.Context, siteIDs []string) (map[string]string, error) {
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	names := make(map[string]string)
	for _, id := range siteIDs {
		if name, ok := f.names[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

type fakePurchaseHistory struct {
	prices  map[string]int64 // item name -> unit price in cents
	findErr error
}

func (f *fakePurchaseHistory) FindUnitPrice(ctx context.Context, itemName string) (domain.Money, bool, error) {
	if f.findErr != nil {
		return domain.ZeroMoney(DefaultCurrency), false, f.findErr
	}
	price, ok := f.prices[itemName]
	if !ok {
		return domain.ZeroMoney(DefaultCurrency), false, nil
	}
	money, err := domain.NewMoney(price, DefaultCurrency)
	if err != nil {
		return domain.ZeroMoney(DefaultCurrency), false, err
	}
	return money, true, nil
}

type fakeAdminDirectory struct {
	admins  []string
	listErr error
}

func (f *fakeAdminDirectory) ListAdmins(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.admins, nil
}

type statusUpdate struct {
	relatedID string
	notifType string
	status    string
}

type fakeNotificationStore struct {
	created   []*domain.Notification
	updates   []statusUpdate
	createErr error
	updateErr error
}

func (f *fakeNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationStore) UpdateStatusByRelatedID(ctx context.Context, relatedID, notificationType, status string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, statusUpdate{relatedID: relatedID, notifType: notificationType, status: status})
	return nil
}

// fakeTxManager mimics transactional rollback over the fake stock repo:
// when fn fails, stock quantities are restored to the pre-transaction state.
type fakeTxManager struct {
	stocks   *fakeStockRepo
	beginErr error
}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	snap := f.stocks.snapshot()
	if err := fn(ctx); err != nil {
		f.stocks.restore(snap)
		return err
	}
	return nil
}

type publishedEvent struct {
	topic string
	event *kafka.Event
}

type fakePublisher struct {
	events     []publishedEvent
	publishErr error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic string, event *kafka.Event) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, publishedEvent{topic: topic, event: event})
	return nil
}
