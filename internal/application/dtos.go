package application

import "time"

// StockDTO represents one ledger line in responses
type StockDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	Category   string    `json:"category"`
	SiteID     string    `json:"siteId,omitempty"`
	HolderName string    `json:"holderName"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TransferDTO represents a transfer request in responses
type TransferDTO struct {
	ID          string     `json:"id"`
	StockID     string     `json:"stockId"`
	Name        string     `json:"name"`
	Unit        string     `json:"unit"`
	Category    string     `json:"category"`
	Quantity    int        `json:"quantity"`
	FromSiteID  string     `json:"fromSiteId,omitempty"`
	FromName    string     `json:"fromName"`
	ToSiteID    string     `json:"toSiteId,omitempty"`
	ToName      string     `json:"toName"`
	RequestedBy string     `json:"requestedBy"`
	Status      string     `json:"status"`
	DecidedBy   string     `json:"decidedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}

// UsageDTO represents a consumption record in responses
type UsageDTO struct {
	ID         string    `json:"id"`
	SiteID     string    `json:"siteId"`
	SiteName   string    `json:"siteName,omitempty"`
	StockID    string    `json:"stockId"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	Category   string    `json:"category"`
	Quantity   int       `json:"quantity"`
	RecordedBy string    `json:"recordedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StockListDTO wraps a page of stock lines
type StockListDTO struct {
	Stocks []*StockDTO `json:"stocks"`
	Total  int         `json:"total"`
}

// TransferListDTO wraps a page of transfer requests
type TransferListDTO struct {
	Transfers []*TransferDTO `json:"transfers"`
	Total     int            `json:"total"`
}

// UsageListDTO wraps a page of usage records
type UsageListDTO struct {
	Usages []*UsageDTO `json:"usages"`
	Total  int         `json:"total"`
}
