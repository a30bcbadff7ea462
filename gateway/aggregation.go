package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/aggregate"
	"github.com/example/weekmarket/pkg/pricing"
)

// aggregateLine is one purchase line with margin-adjusted display pricing.
// The unit price comes from the current catalog record when the product still
// exists, because line-item snapshots may predate a price change.
type aggregateLine struct {
	ProductID    string              `json:"product_id"`
	Name         string              `json:"name"`
	Quantity     int                 `json:"quantity"`
	UnitPrice    float64             `json:"unit_price"`
	LineTotal    float64             `json:"line_total"`
	Collected    bool                `json:"collected"`
	CollectedQty float64             `json:"collected_quantity"`
	Comments     []aggregate.Comment `json:"comments,omitempty"`
}

// getAggregation computes the per-supplier purchase lists for the week:
// summed quantities, attributed comments, checklist progress, and
// margin-adjusted totals.
func (g *Gateway) getAggregation(c *gin.Context) {
	ctx := c.Request.Context()
	weekCode := weekParam(c)

	orders, err := g.orders.OrdersForWeek(ctx, weekCode)
	if err != nil {
		g.logger.Error("Failed to query orders", zap.String("week_code", weekCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate orders"})
		return
	}

	result := aggregate.Orders(orders)

	products, err := g.catalog.GetProducts(ctx, result.ProductIDs())
	if err != nil {
		g.logger.Error("Failed to batch-fetch products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate orders"})
		return
	}

	checklist, err := g.checklist.ForWeek(ctx, weekCode)
	if err != nil {
		g.logger.Warn("Failed to load checklist, continuing without it",
			zap.String("week_code", weekCode), zap.Error(err))
		checklist = nil
	}

	margin, err := g.settings.GetMargin(ctx)
	if err != nil {
		g.logger.Warn("Failed to read margin, using 0", zap.Error(err))
		margin = 0
	}

	view := make(map[string][]aggregateLine, len(result))
	for _, supplier := range result.Suppliers() {
		for _, entry := range result.Entries(supplier) {
			basePrice := entry.Item.Price
			if product, ok := products[entry.Item.ID]; ok {
				basePrice = product.Price
			}
			unitPrice := pricing.Apply(basePrice, margin)

			line := aggregateLine{
				ProductID: entry.Item.ID,
				Name:      entry.Item.Name,
				Quantity:  entry.Quantity,
				UnitPrice: unitPrice,
				LineTotal: unitPrice * float64(entry.Quantity),
				Comments:  entry.Comments,
			}
			if ce, ok := checklist[entry.Item.ID]; ok {
				line.Collected = ce.Collected
				line.CollectedQty = ce.CollectedQuantity
			}
			view[supplier] = append(view[supplier], line)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"week":      weekCode,
		"margin":    margin,
		"suppliers": view,
	})
}
