package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/buildsite-platform/stock-service/internal/domain"
	apperrors "github.com/buildsite-platform/stock-service/pkg/errors"
	"github.com/buildsite-platform/stock-service/pkg/kafka"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// UsageApplicationService handles consumption of site stock. Usage is a
// pure sink: quantity leaves the ledger and is never credited anywhere.
type UsageApplicationService struct {
	stocks    domain.StockRepository
	usages    domain.UsageRepository
	sites     domain.SiteAccounts
	txManager domain.TransactionManager
	producer  EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewUsageApplicationService creates a new UsageApplicationService
func NewUsageApplicationService(
	stocks domain.StockRepository,
	usages domain.UsageRepository,
	sites domain.SiteAccounts,
	txManager domain.TransactionManager,
	producer EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *UsageApplicationService {
	return &UsageApplicationService{
		stocks:    stocks,
		usages:    usages,
		sites:     sites,
		txManager: txManager,
		producer:  producer,
		metrics:   m,
		logger:    logger,
	}
}

// RecordUsage decrements a site's stock line and writes the usage record in
// one transaction. A shortfall aborts both: no record, no decrement.
func (s *UsageApplicationService) RecordUsage(ctx context.Context, cmd RecordUsageCommand) (*UsageDTO, error) {
	stock, err := s.stocks.FindByID(ctx, cmd.StockID)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to load stock for usage",
			"stockId", cmd.StockID, "error", err)
		return nil, fmt.Errorf("failed to load stock: %w", err)
	}
	if stock == nil {
		return nil, apperrors.ErrNotFoundWithID("stock", cmd.StockID)
	}
	if stock.SiteID != cmd.SiteID {
		return nil, apperrors.ErrValidation("stock is not held by the given site")
	}

	usage, err := domain.NewUsageRecord(stock, cmd.SiteID, cmd.Quantity, cmd.Actor)
	if err != nil {
		return nil, mapDomainError(err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.stocks.DebitIfSufficient(txCtx, stock.Item, cmd.SiteID, cmd.Quantity); err != nil {
			return err
		}
		return s.usages.Insert(txCtx, usage)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, apperrors.ErrInsufficientStock(fmt.Sprintf(
				"site %s holds %d, usage of %d requested", cmd.SiteID, stock.Quantity, cmd.Quantity))
		}
		s.logger.WithContext(ctx).Error("Usage transaction failed",
			"stockId", cmd.StockID, "siteId", cmd.SiteID, "error", err)
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	s.metrics.RecordUsage()
	s.publishUsageRecorded(ctx, usage)

	s.logger.WithContext(ctx).Info("Usage recorded",
		"usageId", usage.ID.Hex(), "siteId", cmd.SiteID, "item", usage.Item.String(),
		"quantity", cmd.Quantity, "actor", cmd.Actor)
	return ToUsageDTO(usage, nil), nil
}

// ListUsages lists consumption records, optionally scoped to one site
func (s *UsageApplicationService) ListUsages(ctx context.Context, query ListUsagesQuery) (*UsageListDTO, error) {
	usages, err := s.usages.FindAll(ctx, query.SiteID, query.Limit, query.Offset)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to list usages", "siteId", query.SiteID, "error", err)
		return nil, fmt.Errorf("failed to list usages: %w", err)
	}

	siteNames := s.resolveSiteNames(ctx, siteIDsOfUsages(usages))

	dtos := make([]*UsageDTO, 0, len(usages))
	for _, usage := range usages {
		dtos = append(dtos, ToUsageDTO(usage, siteNames))
	}
	return &UsageListDTO{Usages: dtos, Total: len(dtos)}, nil
}

func (s *UsageApplicationService) publishUsageRecorded(ctx context.Context, usage *domain.UsageRecord) {
	event := kafka.NewEvent(domain.EventUsageRecorded, eventSource, usage.ID.Hex(), domain.UsageRecordedEvent{
		UsageID:    usage.ID.Hex(),
		SiteID:     usage.SiteID,
		Item:       usage.Item,
		Quantity:   usage.Quantity,
		RecordedBy: usage.RecordedBy,
		RecordedAt: usage.CreatedAt,
	})
	if err := s.producer.PublishEvent(ctx, kafka.Topics.StockEvents, event); err != nil {
		s.metrics.RecordKafkaEventPublished(kafka.Topics.StockEvents, domain.EventUsageRecorded, false)
		s.logger.WithContext(ctx).Error("Failed to publish usage event",
			"usageId", usage.ID.Hex(), "error", err)
		return
	}
	s.metrics.RecordKafkaEventPublished(kafka.Topics.StockEvents, domain.EventUsageRecorded, true)
}

func (s *UsageApplicationService) resolveSiteNames(ctx context.Context, siteIDs []string) map[string]string {
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

func siteIDsOfUsages(usages []*domain.UsageRecord) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(usages))
	for _, usage := range usages {
		if seen[usage.SiteID] {
			continue
		}
		seen[usage.SiteID] = true
		ids = append(ids, usage.SiteID)
	}
	return ids
}
