package application

import (
	"context"
	"fmt"

	"github.com/buildsite-platform/stock-service/internal/domain"
	apperrors "github.com/buildsite-platform/stock-service/pkg/errors"
	"github.com/buildsite-platform/stock-service/pkg/kafka"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

const eventSource = "stock-service"

// EventPublisher publishes platform events. Satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *kafka.Event) error
}

// StockApplicationService handles stock ledger use cases
type StockApplicationService struct {
	stocks   domain.StockRepository
	sites    domain.SiteAccounts
	producer EventPublisher
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewStockApplicationService creates a new StockApplicationService
func NewStockApplicationService(
	stocks domain.StockRepository,
	sites domain.SiteAccounts,
	producer EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *StockApplicationService {
	return &StockApplicationService{
		stocks:   stocks,
		sites:    sites,
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// AddStock credits quantity to the holder's ledger line, creating the line
// when it does not exist yet
func (s *StockApplicationService) AddStock(ctx context.Context, cmd AddStockCommand) (*StockDTO, error) {
	item := domain.ItemIdentity{Name: cmd.Name, Unit: cmd.Unit, Category: cmd.Category}
	if err := item.Validate(); err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}
	if cmd.Quantity <= 0 {
		return nil, apperrors.ErrValidation(domain.ErrInvalidQuantity.Error())
	}
	if cmd.Actor == "" {
		return nil, apperrors.ErrUnauthorized(domain.ErrMissingActor.Error())
	}

	stock, err := s.stocks.Credit(ctx, item, cmd.SiteID, cmd.Quantity)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to add stock",
			"item", item.String(), "siteId", cmd.SiteID, "error", err)
		return nil, fmt.Errorf("failed to add stock: %w", err)
	}

	s.metrics.RecordStockAddition()
	s.publishStockAdded(ctx, stock, cmd.Quantity)

	s.logger.WithContext(ctx).Info("Added stock",
		"item", item.String(), "siteId", cmd.SiteID, "quantity", cmd.Quantity, "actor", cmd.Actor)
	return ToStockDTO(stock, nil), nil
}

// ListStocks lists ledger lines, optionally scoped to one holder
func (s *StockApplicationService) ListStocks(ctx context.Context, query ListStocksQuery) (*StockListDTO, error) {
	stocks, err := s.stocks.FindAll(ctx, query.SiteID, query.Limit, query.Offset)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to list stocks", "siteId", query.SiteID, "error", err)
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}

	siteNames := s.resolveSiteNames(ctx, siteIDsOfStocks(stocks))

	dtos := make([]*StockDTO, 0, len(stocks))
	for _, stock := range stocks {
		dtos = append(dtos, ToStockDTO(stock, siteNames))
	}
	return &StockListDTO{Stocks: dtos, Total: len(dtos)}, nil
}

func (s *StockApplicationService) publishStockAdded(ctx context.Context, stock *domain.StockItem, quantity int) {
	event := kafka.NewEvent(domain.EventStockAdded, eventSource, stock.ID.Hex(), domain.StockAddedEvent{
		StockID:  stock.ID.Hex(),
		Item:     stock.Item,
		SiteID:   stock.SiteID,
		Quantity: quantity,
		AddedAt:  stock.UpdatedAt,
	})
	if err := s.producer.PublishEvent(ctx, kafka.Topics.StockEvents, event); err != nil {
		s.metrics.RecordKafkaEventPublished(kafka.Topics.StockEvents, domain.EventStockAdded, false)
		s.logger.WithContext(ctx).Error("Failed to publish stock event",
			"eventType", domain.EventStockAdded, "stockId", stock.ID.Hex(), "error", err)
		return
	}
	s.metrics.RecordKafkaEventPublished(kafka.Topics.StockEvents, domain.EventStockAdded, true)
}

// resolveSiteNames is best-effort; listings fall back to holder labels when
// the site lookup fails
func (s *StockApplicationService) resolveSiteNames(ctx context.Context, siteIDs []string) map[string]string {
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

func siteIDsOfStocks(stocks []*domain.StockItem) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(stocks))
	for _, stock := range stocks {
		if stock.SiteID == domain.CompanyHolder || seen[stock.SiteID] {
			continue
		}
		seen[stock.SiteID] = true
		ids = append(ids, stock.SiteID)
	}
	return ids
}
