package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/models"
)

func (g *Gateway) getMargin(c *gin.Context) {
	margin, err := g.settings.GetMargin(c.Request.Context())
	if err != nil {
		g.logger.Error("Failed to read margin", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read margin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"margin": margin})
}

func (g *Gateway) setMargin(c *gin.Context) {
	var req struct {
		Margin interface{} `json:"margin"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	margin := models.CoerceNumber(req.Margin)
	if err := g.settings.SetMargin(c.Request.Context(), margin); err != nil {
		g.logger.Error("Failed to set margin", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set margin"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"margin": margin})
}

func (g *Gateway) getInvoice(c *gin.Context) {
	weekCode := weekParam(c)
	supplier := c.Param("supplier")

	invoice, err := g.invoices.Get(c.Request.Context(), weekCode, supplier)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "no invoice for this supplier and week"})
			return
		}
		g.logger.Error("Failed to get invoice", zap.String("supplier", supplier), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get invoice"})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (g *Gateway) setInvoice(c *gin.Context) {
	var req struct {
		InvoiceURL string `json:"invoice_url"`
	}
	if err := c.BindJSON(&req); err != nil || req.InvoiceURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice_url is required"})
		return
	}

	weekCode := weekParam(c)
	supplier := c.Param("supplier")
	if err := g.invoices.SetURL(c.Request.Context(), weekCode, supplier, req.InvoiceURL); err != nil {
		g.logger.Error("Failed to set invoice", zap.String("supplier", supplier), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set invoice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
