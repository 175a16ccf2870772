package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/auth"
	"github.com/imrishuroy/storefront-checkout/internal/products"
	"github.com/imrishuroy/storefront-checkout/internal/validation"
)

const ctxProfile = "profile"

// ProductWriter is satisfied by *products.Store.
type ProductWriter interface {
	Get(ctx context.Context, productID string) (*products.Product, error)
	Put(ctx context.Context, p products.Product) error
}

// AdminConfig groups dependencies for the profile and catalog admin routes.
type AdminConfig struct {
	Products ProductWriter
	Profiles auth.ProfileRepository
	Logger   *zap.Logger
}

// RegisterAdminRoutes registers GET /me and the admin-only catalog routes.
func RegisterAdminRoutes(r *gin.Engine, cfg AdminConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	v := validation.New()

	r.GET("/me", loadProfile(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, c.MustGet(ctxProfile))
	})

	admin := r.Group("/admin", loadProfile(cfg), requireRole(auth.RoleAdmin))
	admin.PUT("/products/:id", func(c *gin.Context) {
		var req validation.ProductRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		ctx := c.Request.Context()
		id := c.Param("id")

		existing, err := cfg.Products.Get(ctx, id)
		if err != nil {
			requestLogger(c, cfg.Logger).Error("product lookup failed", zap.String("product_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "product_lookup_failed"})
			return
		}
		created := time.Now().UTC()
		status := http.StatusCreated
		if existing != nil {
			created = existing.CreatedAt
			status = http.StatusOK
		}

		p := products.Product{
			ID:           id,
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			Stock:        req.Stock,
			Category:     req.Category,
			Size:         req.Size,
			Color:        req.Color,
			ImageURL:     req.ImageURL,
			Collection:   req.Collection,
			ProductGroup: req.ProductGroup,
			CreatedAt:    created,
		}
		if err := cfg.Products.Put(ctx, p); err != nil {
			requestLogger(c, cfg.Logger).Error("product write failed", zap.String("product_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "product_write_failed"})
			return
		}
		c.JSON(status, p)
	})
}

// loadProfile resolves the caller's profile; anonymous callers get 401 and
// callers without a profile 403.
func loadProfile(cfg AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := identityFrom(c).CurrentUser()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		p, err := cfg.Profiles.Get(c.Request.Context(), user.ID)
		if err != nil {
			requestLogger(c, cfg.Logger).Error("profile lookup failed", zap.String("user_id", user.ID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "profile_lookup_failed"})
			return
		}
		if p == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "profile_not_found"})
			return
		}
		c.Set(ctxProfile, *p)
		c.Next()
	}
}

func requireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := c.Get(ctxProfile)
		if profile, ok := p.(auth.Profile); !ok || profile.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
