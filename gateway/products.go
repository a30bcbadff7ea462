package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/models"
	"github.com/example/weekmarket/pkg/pricing"
	"github.com/example/weekmarket/pkg/repository"
)

// productView is a catalog record with the margin-adjusted display price
// attached. Stored prices stay raw.
type productView struct {
	models.Product
	DisplayPrice float64 `json:"display_price"`
}

func (g *Gateway) listProducts(c *gin.Context) {
	filter := repository.ProductFilter{Supplier: c.Query("supplier")}
	if av := c.Query("available"); av != "" {
		available := av == "true"
		filter.Available = &available
	}

	products, err := g.catalog.QueryProducts(c.Request.Context(), filter)
	if err != nil {
		g.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	margin, err := g.settings.GetMargin(c.Request.Context())
	if err != nil {
		g.logger.Warn("Failed to read margin, using 0", zap.Error(err))
		margin = 0
	}

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = productView{Product: p, DisplayPrice: pricing.Apply(p.Price, margin)}
	}

	c.JSON(http.StatusOK, gin.H{
		"products": views,
		"total":    len(views),
	})
}

func (g *Gateway) getProduct(c *gin.Context) {
	product, err := g.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		g.logger.Error("Failed to get product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	margin, _ := g.settings.GetMargin(c.Request.Context())
	c.JSON(http.StatusOK, productView{Product: *product, DisplayPrice: pricing.Apply(product.Price, margin)})
}

func (g *Gateway) upsertProduct(c *gin.Context) {
	var product models.Product
	if err := c.BindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product.ID = c.Param("id")

	if err := g.catalog.UpsertProduct(c.Request.Context(), &product); err != nil {
		g.logger.Error("Failed to upsert product", zap.String("product_id", product.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (g *Gateway) disableProduct(c *gin.Context) {
	id := c.Param("id")
	if err := g.catalog.Disable(c.Request.Context(), id); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		g.logger.Error("Failed to disable product", zap.String("product_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disable product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
