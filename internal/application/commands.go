package application

// AddStockCommand represents the command to credit stock to a holder
type AddStockCommand struct {
	Name     string
	Unit     string
	Category string
	SiteID   string
	Quantity int
	Actor    string
}

// RequestTransferCommand represents the command to open a transfer request
type RequestTransferCommand struct {
	StockID  string
	Quantity int
	ToSiteID string
	Actor    string
}

// DecideTransferCommand represents the command to approve or reject a pending transfer
type DecideTransferCommand struct {
	TransferID string
	Actor      string
}

// RecordUsageCommand represents the command to record consumption at a site
type RecordUsageCommand struct {
	StockID  string
	SiteID   string
	Quantity int
	Actor    string
}

// ListStocksQuery represents the query to list stock lines with pagination
type ListStocksQuery struct {
	SiteID string
	Limit  int
	Offset int
}

// ListTransfersQuery represents the query to list transfer requests
type ListTransfersQuery struct {
	Status string
	Limit  int
	Offset int
}

// ListUsagesQuery represents the query to list usage records
type ListUsagesQuery struct {
	SiteID string
	Limit  int
	Offset int
}
