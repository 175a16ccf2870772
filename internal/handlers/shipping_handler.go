package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/storefront-checkout/internal/checkoutform"
	"github.com/imrishuroy/storefront-checkout/internal/shipping"
	"github.com/imrishuroy/storefront-checkout/internal/validation"
)

type optionView struct {
	shipping.Option
	FormattedCost string `json:"formatted_cost"`
}

func viewOf(o shipping.Option) optionView {
	return optionView{Option: o, FormattedCost: shipping.FormatCost(o.Cost, o.Currency)}
}

// RegisterShippingRoutes registers the read-only catalog routes.
func RegisterShippingRoutes(r *gin.Engine) {
	v := validation.New()

	r.GET("/shipping/options", listShippingOptions)
	r.POST("/shipping/quote", func(c *gin.Context) { quoteShipping(c, v) })
	r.GET("/checkout/form", describeForm)
}

func listShippingOptions(c *gin.Context) {
	country := strings.ToUpper(strings.TrimSpace(c.Query("country")))
	province := c.Query("province")
	if country == "" || province == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_destination", "msg": "country and province are required"})
		return
	}

	opts := shipping.Options(country, province, c.Query("district"))
	views := make([]optionView, 0, len(opts))
	for _, o := range opts {
		views = append(views, viewOf(o))
	}
	c.JSON(http.StatusOK, gin.H{
		"options": views,
		"default": shipping.DefaultDeliveryMethod(country, province),
	})
}

func quoteShipping(c *gin.Context, v *validatorv10.Validate) {
	var req validation.ShippingQuoteRequest
	if err := validation.BindAndValidate(c, &req, v); err != nil {
		return
	}
	country := strings.ToUpper(req.Country)

	method := shipping.DeliveryMethod(req.DeliveryMethod)
	if method == "" {
		method = shipping.DefaultDeliveryMethod(country, req.Province)
	}
	opt, ok := shipping.Find(country, req.Province, req.District, method)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shipping_option_not_offered", "delivery_method": method})
		return
	}
	if !opt.Available {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shipping_option_unavailable", "delivery_method": method})
		return
	}

	total := shipping.Total(decimal.NewFromFloat(req.Subtotal), &opt)
	c.JSON(http.StatusOK, gin.H{
		"option":        viewOf(opt),
		"shipping_cost": shipping.CostInDomesticCurrency(opt).StringFixed(2),
		"delivery_time": shipping.DeliveryTimeFor(&opt),
		"total":         total.StringFixed(2),
		"currency":      shipping.CurrencyPEN,
	})
}

// describeForm returns the country-dependent labels and limits of the
// checkout form.
func describeForm(c *gin.Context) {
	s := checkoutform.New()
	if country := c.Query("country"); country != "" {
		s.SetCountry(country)
	}
	c.JSON(http.StatusOK, gin.H{
		"country":              s.Form().Country,
		"international":        s.IsInternational(),
		"countries":            s.AvailableCountries(),
		"provinces":            s.AvailableProvinces(),
		"document_types":       s.AvailableDocumentTypes(),
		"province_label":       s.ProvinceLabel(),
		"district_label":       s.DistrictLabel(),
		"district_placeholder": s.DistrictPlaceholder(),
		"postal_max_length":    s.PostalMaxLength(),
		"postal_placeholder":   s.PostalPlaceholder(),
		"phone_max_length":     s.PhoneMaxLength(),
		"phone_placeholder":    s.PhonePlaceholder(),
		"phone_hint":           s.PhoneHint(),
	})
}
