package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"restock-service/internal/models"
	"restock-service/internal/service"
	"restock-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	products  *service.ProductService
	purchases *service.PurchaseService
	stats     *service.StatsService
	export    *service.ExportService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	products *service.ProductService,
	purchases *service.PurchaseService,
	stats *service.StatsService,
	export *service.ExportService,
) *Handler {
	return &Handler{
		products:  products,
		purchases: purchases,
		stats:     stats,
		export:    export,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.createProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.GET("/products/:id/purchases", h.listProductPurchases)

		v1.GET("/purchases", h.listPurchases)
		v1.POST("/purchases", h.recordPurchase)
		v1.PUT("/purchases/:id", h.updatePurchase)
		v1.DELETE("/purchases/:id", h.deletePurchase)

		v1.GET("/statistics/spending", h.spending)
		v1.GET("/statistics/top-products", h.topProducts)
		v1.GET("/statistics/monthly", h.monthlySpend)
		v1.GET("/statistics/report", h.spendingReport)

		v1.GET("/export", h.exportSnapshot)
		v1.POST("/import", h.importSnapshot)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts returns all products with their runout forecast, most
// urgent first
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load products",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// createProduct handles product creation
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create product",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// updateProduct handles product edits
func (h *Handler) updateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// deleteProduct handles product deletion, cascading purchase history
func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.products.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err, "Failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// listProductPurchases returns one product's purchases, newest first
func (h *Handler) listProductPurchases(c *gin.Context) {
	if _, err := h.products.GetProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err, "Failed to load product")
		return
	}

	purchases, err := h.purchases.ListPurchases(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load purchases",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// listPurchases returns all purchases, newest first
func (h *Handler) listPurchases(c *gin.Context) {
	purchases, err := h.purchases.ListPurchases(c.Request.Context(), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load purchases",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// recordPurchase handles purchase creation
func (h *Handler) recordPurchase(c *gin.Context) {
	var req service.RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	purchase, err := h.purchases.RecordPurchase(c.Request.Context(), &req)
	if err != nil {
		h.writeServiceError(c, err, "Failed to record purchase")
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

// updatePurchase handles purchase edits
func (h *Handler) updatePurchase(c *gin.Context) {
	var req service.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	purchase, err := h.purchases.UpdatePurchase(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err, "Failed to update purchase")
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// deletePurchase handles purchase deletion
func (h *Handler) deletePurchase(c *gin.Context) {
	if err := h.purchases.DeletePurchase(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err, "Failed to delete purchase")
		return
	}

	c.Status(http.StatusNoContent)
}

// spending returns the spend chart series for a granularity
func (h *Handler) spending(c *gin.Context) {
	series, err := h.stats.Spending(c.Request.Context(), c.DefaultQuery("period", "month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to build spending series",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, series)
}

// topProducts returns the purchase-frequency ranking
func (h *Handler) topProducts(c *gin.Context) {
	top, err := h.stats.TopProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build top products",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"top_products": top})
}

// monthlySpend returns spend totals per calendar month, most recent first
func (h *Handler) monthlySpend(c *gin.Context) {
	totals, err := h.stats.MonthlySpend(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build monthly spend",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"monthly": totals})
}

// spendingReport streams the XLSX spend report
func (h *Handler) spendingReport(c *gin.Context) {
	report, err := h.stats.SpendingReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build report",
			"details": err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("spending_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report)
}

// exportSnapshot returns the full data snapshot
func (h *Handler) exportSnapshot(c *gin.Context) {
	snapshot, err := h.export.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to export snapshot",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// importSnapshot replaces all data with the posted snapshot
func (h *Handler) importSnapshot(c *gin.Context) {
	var snapshot models.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid snapshot body",
			"details": err.Error(),
		})
		return
	}

	if err := h.export.Import(c.Request.Context(), &snapshot); err != nil {
		if errors.Is(err, service.ErrUnsupportedVersion) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Unsupported snapshot version",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to import snapshot",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported_products":  len(snapshot.Products),
		"imported_purchases": len(snapshot.History),
	})
}

// writeServiceError maps service errors onto HTTP statuses
func (h *Handler) writeServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": message, "details": err.Error()})
	case errors.Is(err, service.ErrLocked):
		c.JSON(http.StatusConflict, gin.H{"error": message, "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
