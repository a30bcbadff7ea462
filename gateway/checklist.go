package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/models"
)

func (g *Gateway) listChecklist(c *gin.Context) {
	weekCode := weekParam(c)
	entries, err := g.checklist.ForWeek(c.Request.Context(), weekCode)
	if err != nil {
		g.logger.Error("Failed to list checklist", zap.String("week_code", weekCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list checklist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week":    weekCode,
		"entries": entries,
	})
}

type setFieldRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// setChecklistField writes one numeric field of the week's entry for a
// product. Clearing newPrice (an empty or non-numeric value) removes the
// override so the trigger reverts orders to the catalog price; for
// collectedQuantity malformed input coerces to 0.
func (g *Gateway) setChecklistField(c *gin.Context) {
	var req setFieldRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Field != models.FieldCollectedQuantity && req.Field != models.FieldNewPrice {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown field"})
		return
	}

	ctx := c.Request.Context()
	weekCode := weekParam(c)
	productID := c.Param("productId")

	value, ok := checklistFieldValue(req.Field, req.Value)
	if !ok {
		if err := g.checklist.ClearNewPrice(ctx, weekCode, productID); err != nil && err != mongo.ErrNoDocuments {
			g.logger.Error("Failed to clear price override",
				zap.String("product_id", productID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update checklist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := g.checklist.SetField(ctx, weekCode, productID, req.Field, value); err != nil {
		g.logger.Error("Failed to set checklist field",
			zap.String("product_id", productID),
			zap.String("field", req.Field),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update checklist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (g *Gateway) toggleCollected(c *gin.Context) {
	weekCode := weekParam(c)
	productID := c.Param("productId")

	collected, err := g.checklist.ToggleCollected(c.Request.Context(), weekCode, productID)
	if err != nil {
		g.logger.Error("Failed to toggle collected",
			zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update checklist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collected": collected})
}

// checklistFieldValue resolves the value to store for a checklist edit. For
// newPrice, ok=false means the override must be cleared; the parsed value is
// stored as-is so a padded entry like " 12.5 " never degrades to 0. For
// collectedQuantity malformed input coerces to 0.
func checklistFieldValue(field string, v interface{}) (float64, bool) {
	if field == models.FieldNewPrice {
		return numericInput(v)
	}
	return models.CoerceNumber(v), true
}

// numericInput reports whether a JSON value is a usable number, accepting
// numeric strings the way the delivery screens submit them.
func numericInput(v interface{}) (float64, bool) {
	if n, ok := models.NumericValue(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
