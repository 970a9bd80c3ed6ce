package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransferStatus is the state of a transfer request
type TransferStatus string

const (
	TransferRequested TransferStatus = "requested"
	TransferApproved  TransferStatus = "approved"
	TransferRejected  TransferStatus = "rejected"
)

// IsTerminal reports whether the status permits no further transitions
func (s TransferStatus) IsTerminal() bool {
	return s == TransferApproved || s == TransferRejected
}

// TransferRequest is a proposed movement of quantity between two holders.
// It moves through requested -> approved | rejected and is never deleted.
type TransferRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StockID     primitive.ObjectID `bson:"stockId" json:"stockId"`
	Item        ItemIdentity       `bson:"item" json:"item"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	FromSiteID  string             `bson:"fromSiteId" json:"fromSiteId"`
	ToSiteID    string             `bson:"toSiteId" json:"toSiteId"`
	RequestedBy string             `bson:"requestedBy" json:"requestedBy"`
	Status      TransferStatus     `bson:"status" json:"status"`
	DecidedBy   string             `bson:"decidedBy,omitempty" json:"decidedBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	DecidedAt   *time.Time         `bson:"decidedAt,omitempty" json:"decidedAt,omitempty"`
}

// NewTransferRequest creates a transfer in the requested state. Availability
// at the source is the caller's concern; it is advisory at request time and
// re-checked at approval.
func NewTransferRequest(stock *StockItem, quantity int, toSiteID, requestedBy string) (*TransferRequest, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if requestedBy == "" {
		return nil, ErrMissingActor
	}
	if stock.SiteID == toSiteID {
		return nil, ErrSameHolder
	}

	return &TransferRequest{
		StockID:     stock.ID,
		Item:        stock.Item,
		Quantity:    quantity,
		FromSiteID:  stock.SiteID,
		ToSiteID:    toSiteID,
		RequestedBy: requestedBy,
		Status:      TransferRequested,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Approve transitions the transfer to approved
func (t *TransferRequest) Approve(actor string) error {
	return t.decide(TransferApproved, actor)
}

// Reject transitions the transfer to rejected
func (t *TransferRequest) Reject(actor string) error {
	return t.decide(TransferRejected, actor)
}

func (t *TransferRequest) decide(status TransferStatus, actor string) error {
	if actor == "" {
		return ErrMissingActor
	}
	if t.Status != TransferRequested {
		return ErrInvalidTransferState
	}

	now := time.Now().UTC()
	t.Status = status
	t.DecidedBy = actor
	t.DecidedAt = &now
	return nil
}

// FromCompany reports whether the source holder is the company pool
func (t *TransferRequest) FromCompany() bool {
	return t.FromSiteID == CompanyHolder
}
