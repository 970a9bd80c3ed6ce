package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompanyHolder is the site ID of the company-wide pool. Stock held at a
// construction site carries that site's ID; stock held centrally carries
// the empty string.
const CompanyHolder = ""

// ItemIdentity identifies a kind of stock independent of who holds it.
// Two ledger lines with the same identity but different holders are
// distinct records.
type ItemIdentity struct {
	Name     string `bson:"name" json:"name"`
	Unit     string `bson:"unit" json:"unit"`
	Category string `bson:"category" json:"category"`
}

// Validate checks the identity fields
func (i ItemIdentity) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if i.Unit == "" {
		return fmt.Errorf("item unit is required")
	}
	return nil
}

// String returns a display form of the identity
func (i ItemIdentity) String() string {
	if i.Category == "" {
		return fmt.Sprintf("%s (%s)", i.Name, i.Unit)
	}
	return fmt.Sprintf("%s (%s, %s)", i.Name, i.Unit, i.Category)
}

// StockItem is one ledger line: the quantity of one item identity held by
// one holder. Quantity never goes below zero; zero-quantity lines persist.
type StockItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Item      ItemIdentity       `bson:"item" json:"item"`
	SiteID    string             `bson:"siteId" json:"siteId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewStockItem creates a ledger line for a holder with an initial quantity
func NewStockItem(item ItemIdentity, siteID string, quantity int) (*StockItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now().UTC()
	return &StockItem{
		Item:      item,
		SiteID:    siteID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsCompanyStock reports whether this line belongs to the company pool
func (s *StockItem) IsCompanyStock() bool {
	return s.SiteID == CompanyHolder
}

// HasAvailable reports whether the line covers the given quantity
func (s *StockItem) HasAvailable(quantity int) bool {
	return quantity > 0 && s.Quantity >= quantity
}

// Credit adds quantity to the line
func (s *StockItem) Credit(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	s.Quantity += quantity
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Debit removes quantity from the line, refusing to go negative
func (s *StockItem) Debit(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if s.Quantity < quantity {
		return ErrInsufficientStock
	}
	s.Quantity -= quantity
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// HolderLabel returns a display label for a holder
func HolderLabel(siteID string) string {
	if siteID == CompanyHolder {
		return "company"
	}
	return "site " + siteID
}
