package domain

import (
	"context"
	"time"
)

// StockRepository is the sole mutator of ledger lines. Implementations must
// make DebitIfSufficient a single conditional atomic operation so two
// concurrent debits cannot both succeed against the same quantity.
// Transaction scope is carried through ctx.
type StockRepository interface {
	// FindByID returns the line by ID, or nil when absent
	FindByID(ctx context.Context, id string) (*StockItem, error)

	// FindByIdentity returns the line for (item, holder), or nil when absent
	FindByIdentity(ctx context.Context, item ItemIdentity, siteID string) (*StockItem, error)

	// FindAll lists lines, optionally filtered to one holder
	FindAll(ctx context.Context, siteID string, limit, offset int) ([]*StockItem, error)

	// Credit increments the line for (item, holder), creating it with zero
	// quantity first when absent. The single choke point for incoming stock.
	Credit(ctx context.Context, item ItemIdentity, siteID string, quantity int) (*StockItem, error)

	// DebitIfSufficient decrements the line for (item, holder) only when its
	// quantity covers the amount; returns ErrInsufficientStock otherwise
	// (an absent line counts as zero). The single choke point for outgoing
	// stock.
	DebitIfSufficient(ctx context.Context, item ItemIdentity, siteID string, quantity int) error
}

// TransactionManager runs a function inside a storage transaction. Writes
// made through the context handed to fn are atomic: all commit or none do.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransferRepository persists transfer requests
type TransferRepository interface {
	Insert(ctx context.Context, transfer *TransferRequest) error

	// FindByID returns the transfer, or nil when absent
	FindByID(ctx context.Context, id string) (*TransferRequest, error)

	// FindAll lists transfers, optionally filtered by status
	FindAll(ctx context.Context, status TransferStatus, limit, offset int) ([]*TransferRequest, error)

	// MarkDecided flips a transfer out of the requested state. The update is
	// conditional on the current state still being requested and returns
	// ErrInvalidTransferState when the transfer was already decided.
	MarkDecided(ctx context.Context, id string, status TransferStatus, actor string, decidedAt time.Time) error
}

// UsageRepository persists consumption records
type UsageRepository interface {
	Insert(ctx context.Context, usage *UsageRecord) error
	FindAll(ctx context.Context, siteID string, limit, offset int) ([]*UsageRecord, error)
}

// SiteTransaction is one entry appended to a site's financial log
type SiteTransaction struct {
	Date        time.Time `bson:"date" json:"date"`
	Amount      int64     `bson:"amount" json:"amount"` // cents, negative = expense reversal
	Type        string    `bson:"type" json:"type"`
	Description string    `bson:"description" json:"description"`
	RelatedID   string    `bson:"relatedId" json:"relatedId"`
	Actor       string    `bson:"actor" json:"actor"`
}

// SiteAccounts is the site collaborator. The ledger's only write access to
// a site is appending a transaction and adjusting its running expenses.
type SiteAccounts interface {
	AppendTransaction(ctx context.Context, siteID string, txn SiteTransaction) error
	AdjustExpenses(ctx context.Context, siteID string, delta int64) error

	// GetNames resolves site IDs to display names for listings
	GetNames(ctx context.Context, siteIDs []string) (map[string]string, error)
}

// PurchaseHistory resolves a unit price for an item name from historical
// purchase line items. The lookup is read-only; absence of history is a
// degraded-data condition, not an error.
type PurchaseHistory interface {
	FindUnitPrice(ctx context.Context, itemName string) (Money, bool, error)
}

// AdminDirectory lists the users who receive transfer request broadcasts
type AdminDirectory interface {
	ListAdmins(ctx context.Context) ([]string, error)
}

// Notification is one row per (recipient, transfer) pair; its status
// mirrors the transfer's state.
type Notification struct {
	Recipient string    `bson:"recipient" json:"recipient"`
	Type      string    `bson:"type" json:"type"`
	RelatedID string    `bson:"relatedId" json:"relatedId"`
	Message   string    `bson:"message" json:"message"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NotificationStore is the notification collaborator
type NotificationStore interface {
	Create(ctx context.Context, notification *Notification) error

	// UpdateStatusByRelatedID bulk-updates every notification tied to a
	// related record, so repeated decisions never duplicate rows
	UpdateStatusByRelatedID(ctx context.Context, relatedID, notificationType, status string) error
}
