package domain

import "time"

// Event types published to the platform event bus. Delivery is best-effort
// and happens after the ledger mutation commits; consumers must not rely on
// these for correctness.
const (
	EventStockAdded        = "stock.added"
	EventTransferRequested = "stock.transfer.requested"
	EventTransferApproved  = "stock.transfer.approved"
	EventTransferRejected  = "stock.transfer.rejected"
	EventUsageRecorded     = "stock.usage.recorded"
)

// StockAddedEvent is emitted when quantity is added to a holder
type StockAddedEvent struct {
	StockID  string       `json:"stockId"`
	Item     ItemIdentity `json:"item"`
	SiteID   string       `json:"siteId"`
	Quantity int          `json:"quantity"`
	AddedAt  time.Time    `json:"addedAt"`
}

// TransferRequestedEvent is emitted when a transfer request is created
type TransferRequestedEvent struct {
	TransferID  string       `json:"transferId"`
	Item        ItemIdentity `json:"item"`
	Quantity    int          `json:"quantity"`
	FromSiteID  string       `json:"fromSiteId"`
	ToSiteID    string       `json:"toSiteId"`
	RequestedBy string       `json:"requestedBy"`
	RequestedAt time.Time    `json:"requestedAt"`
}

// TransferDecidedEvent is emitted when a transfer is approved or rejected
type TransferDecidedEvent struct {
	TransferID string       `json:"transferId"`
	Item       ItemIdentity `json:"item"`
	Quantity   int          `json:"quantity"`
	FromSiteID string       `json:"fromSiteId"`
	ToSiteID   string       `json:"toSiteId"`
	Outcome    string       `json:"outcome"`
	DecidedBy  string       `json:"decidedBy"`
	DecidedAt  time.Time    `json:"decidedAt"`
}

// UsageRecordedEvent is emitted when consumption is recorded at a site
type UsageRecordedEvent struct {
	UsageID    string       `json:"usageId"`
	SiteID     string       `json:"siteId"`
	Item       ItemIdentity `json:"item"`
	Quantity   int          `json:"quantity"`
	RecordedBy string       `json:"recordedBy"`
	RecordedAt time.Time    `json:"recordedAt"`
}
