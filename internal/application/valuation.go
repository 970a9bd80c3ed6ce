package application

import (
	"context"

	"github.com/buildsite-platform/stock-service/internal/domain"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// DefaultCurrency is the currency all site balances are kept in
const DefaultCurrency = "USD"

// Valuator resolves the money value of a quantity of stock from purchase
// history. Items with no purchase history value to zero; that degrades the
// balance adjustment, never the transfer itself.
type Valuator struct {
	purchases domain.PurchaseHistory
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewValuator creates a Valuator
func NewValuator(purchases domain.PurchaseHistory, m *metrics.Metrics, logger *logging.Logger) *Valuator {
	return &Valuator{
		purchases: purchases,
		metrics:   m,
		logger:    logger.WithComponent("valuator"),
	}
}

// Value returns quantity times the item's most recent purchase unit price.
// A lookup error or missing history yields zero; only the zero fallback is
// allowed to mask errors because valuation must never block a transfer.
func (v *Valuator) Value(ctx context.Context, item domain.ItemIdentity, quantity int) domain.Money {
	unitPrice, found, err := v.purchases.FindUnitPrice(ctx, item.Name)
	if err != nil {
		v.metrics.RecordValuationMiss()
		v.logger.WithContext(ctx).Warn("Purchase price lookup failed, valuing at zero",
			"item", item.Name, "error", err)
		return domain.ZeroMoney(DefaultCurrency)
	}
	if !found {
		v.metrics.RecordValuationMiss()
		v.logger.WithContext(ctx).Info("No purchase history for item, valuing at zero",
			"item", item.Name)
		return domain.ZeroMoney(DefaultCurrency)
	}

	total, err := unitPrice.Multiply(quantity)
	if err != nil {
		v.metrics.RecordValuationMiss()
		v.logger.WithContext(ctx).Warn("Valuation overflow, valuing at zero",
			"item", item.Name, "quantity", quantity, "unitPrice", unitPrice.Amount())
		return domain.ZeroMoney(DefaultCurrency)
	}
	return total
}
