package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildsite-platform/stock-service/internal/domain"
	apperrors "github.com/buildsite-platform/stock-service/pkg/errors"
	"github.com/buildsite-platform/stock-service/pkg/kafka"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// TransferApplicationService handles the transfer request lifecycle
type TransferApplicationService struct {
	stocks    domain.StockRepository
	transfers domain.TransferRepository
	sites     domain.SiteAccounts
	txManager domain.TransactionManager
	valuator  *Valuator
	fanout    *NotificationFanout
	producer  EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewTransferApplicationService creates a new TransferApplicationService
func NewTransferApplicationService(
	stocks domain.StockRepository,
	transfers domain.TransferRepository,
	sites domain.SiteAccounts,
	txManager domain.TransactionManager,
	valuator *Valuator,
	fanout *NotificationFanout,
	producer EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *TransferApplicationService {
	return &TransferApplicationService{
		stocks:    stocks,
		transfers: transfers,
		sites:     sites,
		txManager: txManager,
		valuator:  valuator,
		fanout:    fanout,
		producer:  producer,
		metrics:   m,
		logger:    logger,
	}
}

// RequestTransfer opens a transfer request against an existing stock line.
// The availability check here is advisory; quantities are only re-validated
// and moved at approval time.
func (s *TransferApplicationService) RequestTransfer(ctx context.Context, cmd RequestTransferCommand) (*TransferDTO, error) {
	stock, err := s.stocks.FindByID(ctx, cmd.StockID)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to load stock for transfer request",
			"stockId", cmd.StockID, "error", err)
		return nil, fmt.Errorf("failed to load stock: %w", err)
	}
	if stock == nil {
		return nil, apperrors.ErrNotFoundWithID("stock", cmd.StockID)
	}

	transfer, err := domain.NewTransferRequest(stock, cmd.Quantity, cmd.ToSiteID, cmd.Actor)
	if err != nil {
		return nil, mapDomainError(err)
	}
	if !stock.HasAvailable(cmd.Quantity) {
		return nil, apperrors.ErrInsufficientStock(fmt.Sprintf(
			"%s holds %d, requested %d", domain.HolderLabel(stock.SiteID), stock.Quantity, cmd.Quantity))
	}

	if err := s.transfers.Insert(ctx, transfer); err != nil {
		s.logger.WithContext(ctx).Error("Failed to create transfer request",
			"stockId", cmd.StockID, "error", err)
		return nil, fmt.Errorf("failed to create transfer request: %w", err)
	}

	s.metrics.RecordTransferRequested()
	s.fanout.BroadcastRequested(ctx, transfer)
	s.publishTransferEvent(ctx, domain.EventTransferRequested, transfer)

	s.logger.WithContext(ctx).Info("Transfer requested",
		"transferId", transfer.ID.Hex(), "item", transfer.Item.String(),
		"quantity", transfer.Quantity, "from", domain.HolderLabel(transfer.FromSiteID),
		"to", domain.HolderLabel(transfer.ToSiteID), "actor", cmd.Actor)
	return ToTransferDTO(transfer, nil), nil
}

// ApproveTransfer executes a pending transfer. The debit, the credit, the
// source site's balance adjustment, and the status flip happen in one
// storage transaction; a shortfall at the source aborts everything and the
// transfer stays requested.
func (s *TransferApplicationService) ApproveTransfer(ctx context.Context, cmd DecideTransferCommand) (*TransferDTO, error) {
	if cmd.Actor == "" {
		return nil, apperrors.ErrUnauthorized(domain.ErrMissingActor.Error())
	}

	transfer, err := s.loadPendingTransfer(ctx, cmd.TransferID)
	if err != nil {
		return nil, err
	}

	value := domain.ZeroMoney(DefaultCurrency)
	if !transfer.FromCompany() {
		value = s.valuator.Value(ctx, transfer.Item, transfer.Quantity)
	}

	decidedAt := time.Now().UTC()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.stocks.DebitIfSufficient(txCtx, transfer.Item, transfer.FromSiteID, transfer.Quantity); err != nil {
			return err
		}
		if _, err := s.stocks.Credit(txCtx, transfer.Item, transfer.ToSiteID, transfer.Quantity); err != nil {
			return err
		}
		if !transfer.FromCompany() && !value.IsZero() {
			if err := s.adjustSourceBalance(txCtx, transfer, value, cmd.Actor, decidedAt); err != nil {
				return err
			}
		}
		return s.transfers.MarkDecided(txCtx, cmd.TransferID, domain.TransferApproved, cmd.Actor, decidedAt)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			s.logger.WithContext(ctx).Warn("Transfer approval failed, source short",
				"transferId", cmd.TransferID, "from", domain.HolderLabel(transfer.FromSiteID))
			return nil, apperrors.ErrInsufficientStock(fmt.Sprintf(
				"%s no longer holds %d %s of %s", domain.HolderLabel(transfer.FromSiteID),
				transfer.Quantity, transfer.Item.Unit, transfer.Item.Name))
		case errors.Is(err, domain.ErrInvalidTransferState):
			return nil, apperrors.ErrInvalidState("transfer already decided")
		default:
			s.logger.WithContext(ctx).Error("Transfer approval transaction failed",
				"transferId", cmd.TransferID, "error", err)
			return nil, fmt.Errorf("failed to approve transfer: %w", err)
		}
	}

	transfer.Status = domain.TransferApproved
	transfer.DecidedBy = cmd.Actor
	transfer.DecidedAt = &decidedAt

	s.metrics.RecordTransferDecided(string(domain.TransferApproved))
	s.metrics.RecordStockMoved(transfer.Quantity)
	s.fanout.MarkDecision(ctx, transfer)
	s.publishTransferEvent(ctx, domain.EventTransferApproved, transfer)

	s.logger.WithContext(ctx).Info("Transfer approved",
		"transferId", cmd.TransferID, "item", transfer.Item.String(),
		"quantity", transfer.Quantity, "value", value.String(), "actor", cmd.Actor)
	return ToTransferDTO(transfer, nil), nil
}

// RejectTransfer declines a pending transfer. No quantities move.
func (s *TransferApplicationService) RejectTransfer(ctx context.Context, cmd DecideTransferCommand) (*TransferDTO, error) {
	if cmd.Actor == "" {
		return nil, apperrors.ErrUnauthorized(domain.ErrMissingActor.Error())
	}

	transfer, err := s.loadPendingTransfer(ctx, cmd.TransferID)
	if err != nil {
		return nil, err
	}

	decidedAt := time.Now().UTC()
	if err := s.transfers.MarkDecided(ctx, cmd.TransferID, domain.TransferRejected, cmd.Actor, decidedAt); err != nil {
		if errors.Is(err, domain.ErrInvalidTransferState) {
			return nil, apperrors.ErrInvalidState("transfer already decided")
		}
		s.logger.WithContext(ctx).Error("Failed to reject transfer",
			"transferId", cmd.TransferID, "error", err)
		return nil, fmt.Errorf("failed to reject transfer: %w", err)
	}

	transfer.Status = domain.TransferRejected
	transfer.DecidedBy = cmd.Actor
	transfer.DecidedAt = &decidedAt

	s.metrics.RecordTransferDecided(string(domain.TransferRejected))
	s.fanout.MarkDecision(ctx, transfer)
	s.publishTransferEvent(ctx, domain.EventTransferRejected, transfer)

	s.logger.WithContext(ctx).Info("Transfer rejected",
		"transferId", cmd.TransferID, "actor", cmd.Actor)
	return ToTransferDTO(transfer, nil), nil
}

// ListTransfers lists transfer requests, optionally filtered by status
func (s *TransferApplicationService) ListTransfers(ctx context.Context, query ListTransfersQuery) (*TransferListDTO, error) {
	status := domain.TransferStatus(query.Status)
	if query.Status != "" && status != domain.TransferRequested && !status.IsTerminal() {
		return nil, apperrors.ErrValidation("unknown transfer status: " + query.Status)
	}

	transfers, err := s.transfers.FindAll(ctx, status, query.Limit, query.Offset)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to list transfers", "status", query.Status, "error", err)
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	siteNames := s.resolveSiteNames(ctx, siteIDsOfTransfers(transfers))

	dtos := make([]*TransferDTO, 0, len(transfers))
	for _, transfer := range transfers {
		dtos = append(dtos, ToTransferDTO(transfer, siteNames))
	}
	return &TransferListDTO{Transfers: dtos, Total: len(dtos)}, nil
}

func (s *TransferApplicationService) loadPendingTransfer(ctx context.Context, transferID string) (*domain.TransferRequest, error) {
	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to load transfer", "transferId", transferID, "error", err)
		return nil, fmt.Errorf("failed to load transfer: %w", err)
	}
	if transfer == nil {
		return nil, apperrors.ErrNotFoundWithID("transfer", transferID)
	}
	if transfer.Status.IsTerminal() {
		return nil, apperrors.ErrInvalidState(fmt.Sprintf("transfer already %s", transfer.Status))
	}
	return transfer, nil
}

// adjustSourceBalance reverses the source site's expense for the moved
// quantity: one negative transaction in its log plus a matching decrement
// of its running expense total.
func (s *TransferApplicationService) adjustSourceBalance(ctx context.Context, transfer *domain.TransferRequest, value domain.Money, actor string, at time.Time) error {
	txn := domain.SiteTransaction{
		Date:   at,
		Amount: -value.Amount(),
		Type:   "stock_transfer_out",
		Description: fmt.Sprintf("Transferred %d %s of %s to %s",
			transfer.Quantity, transfer.Item.Unit, transfer.Item.Name,
			domain.HolderLabel(transfer.ToSiteID)),
		RelatedID: transfer.ID.Hex(),
		Actor:     actor,
	}
	if err := s.sites.AppendTransaction(ctx, transfer.FromSiteID, txn); err != nil {
		return fmt.Errorf("failed to log site transaction: %w", err)
	}
	if err := s.sites.AdjustExpenses(ctx, transfer.FromSiteID, -value.Amount()); err != nil {
		return fmt.Errorf("failed to adjust site expenses: %w", err)
	}
	return nil
}

func (s *TransferApplicationService) publishTransferEvent(ctx context.Context, eventType string, transfer *domain.TransferRequest) {
	var data interface{}
	if eventType == domain.EventTransferRequested {
		data = domain.TransferRequestedEvent{
			TransferID:  transfer.ID.Hex(),
			Item:        transfer.Item,
			Quantity:    transfer.Quantity,
			FromSiteID:  transfer.FromSiteID,
			ToSiteID:    transfer.ToSiteID,
			RequestedBy: transfer.RequestedBy,
			RequestedAt: transfer.CreatedAt,
		}
	} else {
		decidedAt := transfer.CreatedAt
		if transfer.DecidedAt != nil {
			decidedAt = *transfer.DecidedAt
		}
		data = domain.TransferDecidedEvent{
			TransferID: transfer.ID.Hex(),
			Item:       transfer.Item,
			Quantity:   transfer.Quantity,
			FromSiteID: transfer.FromSiteID,
			ToSiteID:   transfer.ToSiteID,
			Outcome:    string(transfer.Status),
			DecidedBy:  transfer.DecidedBy,
			DecidedAt:  decidedAt,
		}
	}

	event := kafka.NewEvent(eventType, eventSource, transfer.ID.Hex(), data)
	if err := s.producer.PublishEvent(ctx, kafka.Topics.StockEvents, event); err != nil {
		s.metrics.RecordKafkaEventPublished(kafka.Topics.StockEvents, eventType, false)
		s.logger.WithContext(ctx).Error("Failed to publish transfer event",
			"eventType", eventType, "transferId", transfer.ID.Hex(), "error", err)
		return
	}
	s.metrics.RecordKafkaEventPublished(kafka.Topics.StockEvents, eventType, true)
}

func (s *TransferApplicationService) resolveSiteNames(ctx context.Context, siteIDs []string) map[string]string {
	if len(siteIDs) == 0 {
		return nil
	}
	names, err := s.sites.GetNames(ctx, siteIDs)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Failed to resolve site names", "error", err)
		return nil
	}
	return names
}

func siteIDsOfTransfers(transfers []*domain.TransferRequest) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(transfers))
	add := func(siteID string) {
		if siteID == domain.CompanyHolder || seen[siteID] {
			return
		}
		seen[siteID] = true
		ids = append(ids, siteID)
	}
	for _, transfer := range transfers {
		add(transfer.FromSiteID)
		add(transfer.ToSiteID)
	}
	return ids
}

// mapDomainError translates domain validation sentinels to API errors
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrSameHolder),
		errors.Is(err, domain.ErrMissingSite):
		return apperrors.ErrValidation(err.Error())
	case errors.Is(err, domain.ErrMissingActor):
		return apperrors.ErrUnauthorized(err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return apperrors.ErrInsufficientStock(err.Error())
	case errors.Is(err, domain.ErrInvalidTransferState):
		return apperrors.ErrInvalidState(err.Error())
	default:
		return err
	}
}
