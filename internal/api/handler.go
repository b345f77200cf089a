package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bistro-service/internal/cart"
	"bistro-service/internal/models"
	"bistro-service/internal/service"
	"bistro-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the HTTP-level settings
type Config struct {
	LoginRatePerMinute float64
	LoginBurst         int
}

// Handler contains HTTP handlers
type Handler struct {
	catalog   *service.CatalogService
	checkout  *service.CheckoutService
	orders    *service.OrderService
	analytics *service.AnalyticsService
	auth      *service.AuthService
	waiter    *service.WaiterService
	carts     *cart.Registry
	feed      http.Handler
	store     Pinger
	limiter   *ipRateLimiter
	logger    *zap.Logger
}

// Services groups the dependencies of Handler
type Services struct {
	Catalog   *service.CatalogService
	Checkout  *service.CheckoutService
	Orders    *service.OrderService
	Analytics *service.AnalyticsService
	Auth      *service.AuthService
	Waiter    *service.WaiterService
	Carts     *cart.Registry
	Feed      http.Handler
	Store     Pinger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, cfg Config) *Handler {
	return &Handler{
		catalog:   svc.Catalog,
		checkout:  svc.Checkout,
		orders:    svc.Orders,
		analytics: svc.Analytics,
		auth:      svc.Auth,
		waiter:    svc.Waiter,
		carts:     svc.Carts,
		feed:      svc.Feed,
		store:     svc.Store,
		limiter:   newIPRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
		logger:    util.GetLogger(),
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
		v1.GET("/menu", h.listMenu)
		v1.GET("/menu/categories", h.listCategories)
		v1.GET("/menu/:id/variants", h.listVariants)

		v1.GET("/cart", h.getCart)
		v1.PATCH("/cart", h.setCartOpen)
		v1.DELETE("/cart", h.clearCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items", h.updateCartItem)
		v1.DELETE("/cart/items", h.removeCartItem)

		v1.POST("/checkout", h.placeOrder)
		v1.POST("/chat", h.chat)

		v1.POST("/admin/login", h.limiter.middleware(), h.login)

		admin := v1.Group("/admin", adminAuth(h.auth))
		{
			admin.POST("/register", h.register)
			admin.GET("/orders", h.listOrders)
			admin.GET("/orders/:id", h.getOrder)
			admin.PATCH("/orders/:id/status", h.updateOrderStatus)
			admin.GET("/analytics", h.getAnalytics)
			admin.PUT("/menu", h.replaceMenu)
			admin.POST("/menu/items", h.saveMenuItem)
			admin.DELETE("/menu/items/:id", h.deleteMenuItem)
			admin.GET("/feed", gin.WrapH(h.feed))
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the store answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidOrder),
		errors.Is(err, models.ErrInvalidMenuItem),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidAdmin):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredential):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrMenuItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAdminExists),
		errors.Is(err, models.ErrStatusConflict),
		errors.Is(err, models.ErrDuplicateOrder):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrItemUnavailable):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}
