package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/config"
	"github.com/example/weekmarket/pkg/repository"
	"github.com/example/weekmarket/pkg/week"
)

// Gateway is the HTTP surface the ordering and delivery screens talk to.
type Gateway struct {
	config    *config.Config
	logger    *zap.Logger
	router    *gin.Engine
	catalog   *repository.CatalogStore
	orders    *repository.OrdersStore
	checklist *repository.ChecklistStore
	settings  *repository.SettingsStore
	invoices  *repository.InvoicesStore
}

// Stores bundles the repositories the gateway serves.
type Stores struct {
	Catalog   *repository.CatalogStore
	Orders    *repository.OrdersStore
	Checklist *repository.ChecklistStore
	Settings  *repository.SettingsStore
	Invoices  *repository.InvoicesStore
}

func New(cfg *config.Config, logger *zap.Logger, stores Stores) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Gateway{
		config:    cfg,
		logger:    logger,
		router:    router,
		catalog:   stores.Catalog,
		orders:    stores.Orders,
		checklist: stores.Checklist,
		settings:  stores.Settings,
		invoices:  stores.Invoices,
	}
}

func (g *Gateway) SetupRoutes() {
	// Health check
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := g.router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", g.listProducts)
			products.GET("/:id", g.getProduct)
			products.PUT("/:id", g.upsertProduct)
			products.DELETE("/:id", g.disableProduct)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", g.createOrder)
			orders.GET("", g.listOrders)
			orders.GET("/:id", g.getOrder)
			orders.PUT("/:id/items", g.saveItems)
			orders.PUT("/:id/items/:itemId", g.updateItem)
			orders.PUT("/:id/signature", g.saveSignature)
			orders.PUT("/:id/delivered", g.markDelivered)
		}

		checklist := v1.Group("/checklist")
		{
			checklist.GET("", g.listChecklist)
			checklist.PUT("/:productId/field", g.setChecklistField)
			checklist.PUT("/:productId/collected", g.toggleCollected)
		}

		v1.GET("/aggregation", g.getAggregation)

		settings := v1.Group("/settings")
		{
			settings.GET("/margin", g.getMargin)
			settings.PUT("/margin", g.setMargin)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.GET("/:supplier", g.getInvoice)
			invoices.PUT("/:supplier", g.setInvoice)
		}
	}

	// Swagger
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Server.Host, g.config.Server.Port)
	g.logger.Info("Gateway starting", zap.String("address", addr))
	return g.router.Run(addr)
}

// weekParam resolves the target week from the query string, defaulting to the
// current week. The week code itself is always computed from an explicit
// date.
func weekParam(c *gin.Context) string {
	if wc := c.Query("week"); wc != "" {
		return wc
	}
	return week.Code(time.Now())
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
