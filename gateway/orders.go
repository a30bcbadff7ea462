package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/models"
	"github.com/example/weekmarket/pkg/repository"
	"github.com/example/weekmarket/pkg/week"
)

type createOrderRequest struct {
	UserID      string            `json:"user_id"`
	Email       string            `json:"email"`
	CompanyName string            `json:"company_name"`
	WeekCode    string            `json:"week_code"`
	Items       []models.LineItem `json:"items"`
}

// createOrder saves a customer basket. If the customer already has an open
// order for the week, the items are merged into it instead of creating a
// duplicate order.
func (g *Gateway) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	weekCode := req.WeekCode
	if weekCode == "" {
		weekCode = week.Code(time.Now())
	}

	ctx := c.Request.Context()
	existing, err := g.orders.Query(ctx, repository.OrderFilter{WeekCode: weekCode, UserID: req.UserID})
	if err != nil {
		g.logger.Error("Failed to query orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save order"})
		return
	}

	for i := range existing {
		if existing[i].Status != models.StatusOpen {
			continue
		}
		order := &existing[i]
		for _, item := range req.Items {
			order.MergeItem(item)
		}
		if err := g.orders.UpdateItems(ctx, order.ID, order.Items, time.Now()); err != nil {
			g.logger.Error("Failed to merge into open order", zap.String("order_id", order.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save order"})
			return
		}
		c.JSON(http.StatusOK, order)
		return
	}

	order := &models.Order{
		UserID:      req.UserID,
		Email:       req.Email,
		CompanyName: req.CompanyName,
		WeekCode:    weekCode,
		Status:      models.StatusOpen,
	}
	for _, item := range req.Items {
		order.MergeItem(item)
	}

	id, err := g.orders.Create(ctx, order)
	if err != nil {
		g.logger.Error("Failed to create order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "order": order})
}

func (g *Gateway) listOrders(c *gin.Context) {
	filter := repository.OrderFilter{
		UserID:         c.Query("userId"),
		DeliveryStatus: c.Query("deliveryStatus"),
	}
	// A user history request spans weeks; everything else defaults to the
	// current week.
	if filter.UserID == "" || c.Query("week") != "" {
		filter.WeekCode = weekParam(c)
	}

	orders, err := g.orders.Query(c.Request.Context(), filter)
	if err != nil {
		g.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  len(orders),
	})
}

func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		g.logger.Error("Failed to get order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// saveItems replaces an order's items wholesale, merging duplicate product
// ids from the payload.
func (g *Gateway) saveItems(c *gin.Context) {
	var req struct {
		Items []models.LineItem `json:"items"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := &models.Order{}
	for _, item := range req.Items {
		order.MergeItem(item)
	}

	orderID := c.Param("id")
	if err := g.orders.UpdateItems(c.Request.Context(), orderID, order.Items, time.Now()); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		g.logger.Error("Failed to save items", zap.String("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type updateItemRequest struct {
	Quantity interface{} `json:"quantity"`
	Price    interface{} `json:"price"`
	Comment  *string     `json:"comment"`
	Refused  *bool       `json:"refused"`
}

// updateItem applies a partial edit to one line item: quantity correction,
// comment, refusal flag, or a direct price overwrite by delivery staff.
// Malformed numeric input coerces to 0 rather than failing.
func (g *Gateway) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	orderID := c.Param("id")
	order, err := g.orders.Get(ctx, orderID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		g.logger.Error("Failed to get order", zap.String("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}

	item := order.FindItem(c.Param("itemId"))
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	if req.Quantity != nil {
		qty := int(models.CoerceNumber(req.Quantity))
		if qty < 0 {
			qty = 0
		}
		item.Quantity = qty
	}
	if req.Price != nil {
		item.Price = models.CoerceNumber(req.Price)
	}
	if req.Comment != nil {
		item.Comment = *req.Comment
	}
	if req.Refused != nil {
		item.Refused = *req.Refused
	}

	if err := g.orders.UpdateItems(ctx, orderID, order.Items, time.Now()); err != nil {
		g.logger.Error("Failed to update item", zap.String("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (g *Gateway) saveSignature(c *gin.Context) {
	var req struct {
		Signature string `json:"signature"`
	}
	if err := c.BindJSON(&req); err != nil || req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature is required"})
		return
	}

	orderID := c.Param("id")
	if err := g.orders.SaveSignature(c.Request.Context(), orderID, req.Signature); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		g.logger.Error("Failed to save signature", zap.String("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save signature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (g *Gateway) markDelivered(c *gin.Context) {
	orderID := c.Param("id")
	if err := g.orders.MarkDelivered(c.Request.Context(), orderID, time.Now()); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		g.logger.Error("Failed to mark delivered", zap.String("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark delivered"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
