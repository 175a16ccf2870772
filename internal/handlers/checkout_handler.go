package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/checkoutform"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
	"github.com/imrishuroy/storefront-checkout/internal/products"
	"github.com/imrishuroy/storefront-checkout/internal/shipping"
	"github.com/imrishuroy/storefront-checkout/internal/validation"
)

const headerIdempotencyKey = "Idempotency-Key"

// HandlerConfig groups dependencies for the checkout and order routes.
type HandlerConfig struct {
	Products checkout.ProductStore
	Orders   OrderStore
	Attempts checkout.AttemptStore
	Notifier checkout.Notifier
	Metrics  checkout.Metrics
	Logger   *zap.Logger
}

type checkoutHandler struct {
	cfg      HandlerConfig
	validate *validatorv10.Validate
}

// RegisterCheckoutRoutes registers POST /checkout.
func RegisterCheckoutRoutes(r *gin.Engine, cfg HandlerConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	h := &checkoutHandler{cfg: cfg, validate: validation.New()}
	r.POST("/checkout", h.checkout)
}

func (h *checkoutHandler) checkout(c *gin.Context) {
	ctx := c.Request.Context()
	logger := requestLogger(c, h.cfg.Logger)

	// Bind + validate request
	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	idempKey := c.GetHeader(headerIdempotencyKey)
	if idempKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
		return
	}

	// A completed key replays before the cart is rebuilt, since its order may
	// have bought the last units.
	if orderID, ok := h.completedOrder(c, idempKey); ok {
		if h.cfg.Metrics != nil {
			h.cfg.Metrics.RecordCheckout(ctx, checkout.OutcomeReplayed)
		}
		logger.Info("checkout replayed", zap.String("order_id", orderID))
		c.JSON(http.StatusOK, gin.H{"order_id": orderID, "replayed": true})
		return
	}

	// Build the cart from fresh product records; the ledger clamps to stock.
	ledger := cart.NewLedger(h.cfg.Products, logger)
	var warnings []cart.Warning
	for _, it := range req.Items {
		p, err := h.cfg.Products.Get(ctx, it.ProductID)
		if err != nil {
			logger.Error("product lookup failed", zap.String("product_id", it.ProductID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "product_lookup_failed"})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found", "product_id": it.ProductID})
			return
		}
		if w := ledger.AddItem(ctx, *p, it.Quantity); w != nil {
			warnings = append(warnings, *w)
		}
	}
	if len(warnings) > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "stock_unavailable", "warnings": warnings})
		return
	}

	form := fillForm(req.Customer)
	if err := form.SelectShippingOption(shipping.DeliveryMethod(req.DeliveryMethod)); err != nil {
		code := "shipping_option_not_offered"
		if errors.Is(err, checkoutform.ErrShippingOptionUnavailable) {
			code = "shipping_option_unavailable"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": code, "msg": err.Error()})
		return
	}

	pay := payment.New()
	pay.SetCardNumber(req.Payment.Number)
	pay.SetCardName(req.Payment.Name)
	pay.SetExpiryDate(req.Payment.Expiry)
	pay.SetCVV(req.Payment.CVV)

	orch := checkout.New(checkout.Deps{
		Products: h.cfg.Products,
		Orders:   h.cfg.Orders,
		Attempts: h.cfg.Attempts,
		Notifier: h.cfg.Notifier,
		Metrics:  h.cfg.Metrics,
		Identity: identityFrom(c),
		Cart:     ledger,
		Address:  form,
		Payment:  pay,
		Logger:   logger,
	})

	res, err := orch.Checkout(ctx, idempKey)
	if err != nil {
		writeCheckoutError(c, err, form, pay)
		return
	}

	if res.Replayed {
		c.JSON(http.StatusOK, gin.H{"order_id": res.OrderID, "replayed": true})
		return
	}
	c.Header("Location", fmt.Sprintf("/orders/%s", res.OrderID))
	c.JSON(http.StatusCreated, res)
}

// completedOrder returns the order of a DONE attempt owned by the caller.
// Lookup failures fall through to the orchestrator, which checks again.
func (h *checkoutHandler) completedOrder(c *gin.Context, key string) (string, bool) {
	if h.cfg.Attempts == nil {
		return "", false
	}
	user, ok := identityFrom(c).CurrentUser()
	if !ok {
		return "", false
	}
	rec, err := h.cfg.Attempts.Get(c.Request.Context(), key)
	if err != nil {
		requestLogger(c, h.cfg.Logger).Warn("attempt lookup failed", zap.String("idempotency_key", key), zap.Error(err))
		return "", false
	}
	if rec == nil || rec.Status != idempotency.StatusDone || rec.UserID != user.ID {
		return "", false
	}
	return rec.OrderID, true
}

// fillForm applies the setters in dependency order so that no later call
// resets an earlier field.
func fillForm(cu validation.Customer) *checkoutform.State {
	s := checkoutform.New()
	s.SetCountry(cu.Country)
	s.SetProvince(cu.Province)
	s.SetDistrict(cu.District)
	s.SetPostalCode(cu.PostalCode)
	s.SetEmail(cu.Email)
	s.SetNewsletter(cu.Newsletter)
	s.SetFirstName(cu.FirstName)
	s.SetLastName(cu.LastName)
	s.SetDocumentType(cu.DocumentType)
	s.SetDocumentID(cu.DocumentID)
	s.SetPhone(cu.Phone)
	s.SetAddress(cu.Address)
	s.SetApartment(cu.Apartment)
	return s
}

func writeCheckoutError(c *gin.Context, err error, form *checkoutform.State, pay *payment.State) {
	var ce *checkout.Error
	if !errors.As(err, &ce) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_failed"})
		return
	}

	switch ce.Kind {
	case checkout.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "msg": ce.Message})
	case checkout.KindPrecondition:
		body := gin.H{"error": "precondition_failed", "msg": ce.Message}
		switch {
		case errors.Is(err, checkout.ErrInvalidForm):
			body["fields"] = form.Errors()
		case errors.Is(err, checkout.ErrInvalidPayment):
			body["fields"] = pay.Errors()
		}
		c.JSON(http.StatusBadRequest, body)
	case checkout.KindAvailability:
		c.JSON(http.StatusConflict, gin.H{"error": "stock_unavailable", "msg": ce.Message, "problems": ce.Problems()})
	case checkout.KindConflict:
		if errors.Is(err, checkout.ErrAttemptForeign) {
			c.JSON(http.StatusConflict, gin.H{"error": "idempotency_key_conflict", "msg": ce.Message})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress"})
	case checkout.KindCommit:
		if errors.Is(err, products.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, gin.H{"error": "stock_conflict", "msg": ce.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_failed", "msg": ce.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_failed"})
	}
}
