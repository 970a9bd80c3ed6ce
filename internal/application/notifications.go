package application

import (
	"context"
	"fmt"
	"time"

	"github.com/buildsite-platform/stock-service/internal/domain"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// NotificationType for transfer lifecycle notifications
const NotificationTypeTransfer = "stock_transfer"

// NotificationFanout delivers in-app notifications for the transfer
// lifecycle. Every method is best-effort: failures are logged and counted,
// never returned, so notification problems cannot fail a ledger operation.
type NotificationFanout struct {
	admins  domain.AdminDirectory
	store   domain.NotificationStore
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewNotificationFanout creates a NotificationFanout
func NewNotificationFanout(
	admins domain.AdminDirectory,
	store domain.NotificationStore,
	m *metrics.Metrics,
	logger *logging.Logger,
) *NotificationFanout {
	return &NotificationFanout{
		admins:  admins,
		store:   store,
		metrics: m,
		logger:  logger.WithComponent("notification-fanout"),
	}
}

// BroadcastRequested creates one pending notification per admin for a new
// transfer request
func (f *NotificationFanout) BroadcastRequested(ctx context.Context, transfer *domain.TransferRequest) {
	recipients, err := f.admins.ListAdmins(ctx)
	if err != nil {
		f.metrics.RecordNotificationFailure()
		f.logger.WithContext(ctx).Error("Failed to list admins for transfer broadcast",
			"transferId", transfer.ID.Hex(), "error", err)
		return
	}

	message := fmt.Sprintf("Transfer of %d %s of %s requested from %s to %s",
		transfer.Quantity, transfer.Item.Unit, transfer.Item.Name,
		domain.HolderLabel(transfer.FromSiteID), domain.HolderLabel(transfer.ToSiteID))

	now := time.Now().UTC()
	for _, recipient := range recipients {
		notification := &domain.Notification{
			Recipient: recipient,
			Type:      NotificationTypeTransfer,
			RelatedID: transfer.ID.Hex(),
			Message:   message,
			Status:    string(domain.TransferRequested),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := f.store.Create(ctx, notification); err != nil {
			f.metrics.RecordNotificationFailure()
			f.logger.WithContext(ctx).Error("Failed to create transfer notification",
				"transferId", transfer.ID.Hex(), "recipient", recipient, "error", err)
		}
	}
}

// MarkDecision updates the broadcast notifications to the decision outcome
// and notifies the requester
func (f *NotificationFanout) MarkDecision(ctx context.Context, transfer *domain.TransferRequest) {
	transferID := transfer.ID.Hex()

	if err := f.store.UpdateStatusByRelatedID(ctx, transferID, NotificationTypeTransfer, string(transfer.Status)); err != nil {
		f.metrics.RecordNotificationFailure()
		f.logger.WithContext(ctx).Error("Failed to update transfer notifications",
			"transferId", transferID, "status", transfer.Status, "error", err)
	}

	now := time.Now().UTC()
	notification := &domain.Notification{
		Recipient: transfer.RequestedBy,
		Type:      NotificationTypeTransfer,
		RelatedID: transferID,
		Message: fmt.Sprintf("Your transfer request for %d %s of %s was %s",
			transfer.Quantity, transfer.Item.Unit, transfer.Item.Name, transfer.Status),
		Status:    string(transfer.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.store.Create(ctx, notification); err != nil {
		f.metrics.RecordNotificationFailure()
		f.logger.WithContext(ctx).Error("Failed to notify requester of decision",
			"transferId", transferID, "recipient", transfer.RequestedBy, "error", err)
	}
}
