// Package propagation applies checklist price overrides to every
// still-undelivered order of the week, and reverts them to the catalog base
// price when an override is cleared. Prices written here are raw base prices;
// the global margin is applied at read sites only.
package propagation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/models"
)

// CatalogReader resolves products for revert decisions.
type CatalogReader interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// OrderStore reads a week's orders and commits item rewrites as one
// all-or-nothing batch.
type OrderStore interface {
	OrdersForWeek(ctx context.Context, weekCode string) ([]models.Order, error)
	UpdateItemsBatch(ctx context.Context, updates []ItemsUpdate) error
}

// ItemsUpdate is one staged order mutation within a batch.
type ItemsUpdate struct {
	OrderID   string
	Items     []models.LineItem
	UpdatedAt time.Time
}

// Engine decides and applies price changes for checklist events.
type Engine struct {
	catalog CatalogReader
	orders  OrderStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewEngine(catalog CatalogReader, orders OrderStore, logger *zap.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		orders:  orders,
		logger:  logger,
		now:     time.Now,
	}
}

// PriceChanged reports whether the override value differs between two
// checklist states. This comparison is the idempotence guard: a redelivered
// identical event compares equal and produces no writes.
func PriceChanged(previous, current *models.ChecklistEntry) bool {
	switch {
	case !previous.HasOverride() && !current.HasOverride():
		return false
	case previous.HasOverride() && current.HasOverride():
		return *previous.NewPrice != *current.NewPrice
	default:
		return true
	}
}

// Apply handles one checklist change event. previous is nil when the entry
// was just created; current is nil when it was deleted (a no-op). Validation
// failures skip silently; only a failed batch commit is returned for retry.
func (e *Engine) Apply(ctx context.Context, previous, current *models.ChecklistEntry) error {
	if current == nil {
		return nil
	}
	if current.ProductID == "" {
		e.logger.Info("checklist event without productId, skipping")
		return nil
	}
	if current.WeekCode == "" {
		e.logger.Info("checklist event without weekCode, skipping",
			zap.String("product_id", current.ProductID))
		return nil
	}
	if !PriceChanged(previous, current) {
		e.logger.Info("newPrice unchanged, skipping",
			zap.String("product_id", current.ProductID),
			zap.String("week_code", current.WeekCode))
		return nil
	}

	var priceToApply float64
	if current.HasOverride() {
		priceToApply = *current.NewPrice
		e.logger.Info("applying price override",
			zap.String("product_id", current.ProductID),
			zap.String("week_code", current.WeekCode),
			zap.Float64("price", priceToApply))
	} else {
		// Override cleared. Only revert if one was actually set before,
		// otherwise an edit to an unrelated field would rewrite orders.
		if !previous.HasOverride() {
			e.logger.Info("no prior override, skipping revert",
				zap.String("product_id", current.ProductID))
			return nil
		}
		product, err := e.catalog.GetProduct(ctx, current.ProductID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				e.logger.Warn("product not found, cannot revert price",
					zap.String("product_id", current.ProductID))
				return nil
			}
			return fmt.Errorf("failed to fetch product %s: %w", current.ProductID, err)
		}
		priceToApply = product.Price
		e.logger.Info("reverting to catalog price",
			zap.String("product_id", current.ProductID),
			zap.Float64("price", priceToApply))
	}

	orders, err := e.orders.OrdersForWeek(ctx, current.WeekCode)
	if err != nil {
		return fmt.Errorf("failed to query orders for week %s: %w", current.WeekCode, err)
	}

	updates := e.stageUpdates(orders, current.ProductID, priceToApply)
	if len(updates) == 0 {
		e.logger.Info("no orders needed updating",
			zap.String("product_id", current.ProductID),
			zap.String("week_code", current.WeekCode))
		return nil
	}

	if err := e.orders.UpdateItemsBatch(ctx, updates); err != nil {
		return fmt.Errorf("failed to commit price batch for product %s: %w", current.ProductID, err)
	}

	e.logger.Info("price propagated",
		zap.String("product_id", current.ProductID),
		zap.String("week_code", current.WeekCode),
		zap.Float64("price", priceToApply),
		zap.Int("orders_updated", len(updates)))
	return nil
}

// stageUpdates rewrites matching line items in every non-delivered order.
// Orders without a matching item are left completely untouched, not even a
// timestamp bump.
func (e *Engine) stageUpdates(orders []models.Order, productID string, price float64) []ItemsUpdate {
	now := e.now()
	var updates []ItemsUpdate

	for _, order := range orders {
		if order.IsDelivered() || len(order.Items) == 0 {
			continue
		}

		changed := false
		items := make([]models.LineItem, len(order.Items))
		for i, item := range order.Items {
			if item.ID == productID {
				item.Price = price
				changed = true
			}
			items[i] = item
		}

		if changed {
			updates = append(updates, ItemsUpdate{
				OrderID:   order.ID,
				Items:     items,
				UpdatedAt: now,
			})
		}
	}

	return updates
}
