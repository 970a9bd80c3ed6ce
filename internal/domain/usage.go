package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsageRecord is a consumption event: quantity permanently removed from a
// site's stock. It is created atomically with the ledger decrement and is
// immutable afterward.
type UsageRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID     string             `bson:"siteId" json:"siteId"`
	StockID    primitive.ObjectID `bson:"stockId" json:"stockId"`
	Item       ItemIdentity       `bson:"item" json:"item"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	RecordedBy string             `bson:"recordedBy" json:"recordedBy"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewUsageRecord creates a usage record for a site's stock line
func NewUsageRecord(stock *StockItem, siteID string, quantity int, recordedBy string) (*UsageRecord, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if siteID == CompanyHolder {
		return nil, ErrMissingSite
	}
	if recordedBy == "" {
		return nil, ErrMissingActor
	}

	return &UsageRecord{
		SiteID:     siteID,
		StockID:    stock.ID,
		Item:       stock.Item,
		Quantity:   quantity,
		RecordedBy: recordedBy,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
