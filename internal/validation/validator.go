package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/storefront-checkout/internal/shipping"
)

// New returns a configured validator with the struct-level rules of the
// request payloads registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})
	v.RegisterStructValidation(quoteStructValidation, ShippingQuoteRequest{})

	return v
}

// checkoutStructValidation rejects a product listed twice and an unknown
// delivery method.
func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)

	seen := make(map[string]struct{}, len(req.Items))
	for _, it := range req.Items {
		if _, dup := seen[it.ProductID]; dup {
			sl.ReportError(req.Items, "items", "Items", "unique_products", fmt.Sprintf("product %s listed twice", it.ProductID))
			break
		}
		seen[it.ProductID] = struct{}{}
	}

	if req.DeliveryMethod != "" && !shipping.DeliveryMethod(req.DeliveryMethod).Valid() {
		sl.ReportError(req.DeliveryMethod, "delivery_method", "DeliveryMethod", "delivery_method", req.DeliveryMethod)
	}
}

func quoteStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(ShippingQuoteRequest)

	if req.DeliveryMethod != "" && !shipping.DeliveryMethod(req.DeliveryMethod).Valid() {
		sl.ReportError(req.DeliveryMethod, "delivery_method", "DeliveryMethod", "delivery_method", req.DeliveryMethod)
	}
}
