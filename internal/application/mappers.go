package application

import "github.com/buildsite-platform/stock-service/internal/domain"

// ToStockDTO converts a domain StockItem to StockDTO
func ToStockDTO(stock *domain.StockItem, siteNames map[string]string) *StockDTO {
	if stock == nil {
		return nil
	}

	holderName := domain.HolderLabel(stock.SiteID)
	if name, ok := siteNames[stock.SiteID]; ok {
		holderName = name
	}

	return &StockDTO{
		ID:         stock.ID.Hex(),
		Name:       stock.Item.Name,
		Unit:       stock.Item.Unit,
		Category:   stock.Item.Category,
		SiteID:     stock.SiteID,
		HolderName: holderName,
		Quantity:   stock.Quantity,
		CreatedAt:  stock.CreatedAt,
		UpdatedAt:  stock.UpdatedAt,
	}
}

// ToTransferDTO converts a domain TransferRequest to TransferDTO
func ToTransferDTO(transfer *domain.TransferRequest, siteNames map[string]string) *TransferDTO {
	if transfer == nil {
		return nil
	}

	return &TransferDTO{
		ID:          transfer.ID.Hex(),
		StockID:     transfer.StockID.Hex(),
		Name:        transfer.Item.Name,
		Unit:        transfer.Item.Unit,
		Category:    transfer.Item.Category,
		Quantity:    transfer.Quantity,
		FromSiteID:  transfer.FromSiteID,
		FromName:    holderName(transfer.FromSiteID, siteNames),
		ToSiteID:    transfer.ToSiteID,
		ToName:      holderName(transfer.ToSiteID, siteNames),
		RequestedBy: transfer.RequestedBy,
		Status:      string(transfer.Status),
		DecidedBy:   transfer.DecidedBy,
		CreatedAt:   transfer.CreatedAt,
		DecidedAt:   transfer.DecidedAt,
	}
}

// ToUsageDTO converts a domain UsageRecord to UsageDTO
func ToUsageDTO(usage *domain.UsageRecord, siteNames map[string]string) *UsageDTO {
	if usage == nil {
		return nil
	}

	return &UsageDTO{
		ID:         usage.ID.Hex(),
		SiteID:     usage.SiteID,
		SiteName:   siteNames[usage.SiteID],
		StockID:    usage.StockID.Hex(),
		Name:       usage.Item.Name,
		Unit:       usage.Item.Unit,
		Category:   usage.Item.Category,
		Quantity:   usage.Quantity,
		RecordedBy: usage.RecordedBy,
		CreatedAt:  usage.CreatedAt,
	}
}

func holderName(siteID string, siteNames map[string]string) string {
	if name, ok := siteNames[siteID]; ok {
		return name
	}
	return domain.HolderLabel(siteID)
}
