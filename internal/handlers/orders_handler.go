package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/orders"
)

// OrderStore is the checkout write path plus lookup by id.
type OrderStore interface {
	checkout.OrderStore
	Get(ctx context.Context, orderID string) (*orders.Order, error)
}

// RegisterOrdersRoutes registers GET /orders/:id. Only the owner of an
// order can read it; other callers get 404.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r.GET("/orders/:id", func(c *gin.Context) {
		user, ok := identityFrom(c).CurrentUser()
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		order, err := cfg.Orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			requestLogger(c, cfg.Logger).Error("order lookup failed", zap.String("order_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed"})
			return
		}
		if order == nil || order.UserID != user.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		c.JSON(http.StatusOK, order)
	})
}
