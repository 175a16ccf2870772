package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/storefront-checkout/internal/auth"
	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/checkoutform"
	"github.com/imrishuroy/storefront-checkout/internal/orders"
	"github.com/imrishuroy/storefront-checkout/internal/shipping"
)

// Placeholders written when a snapshot field is blank.
const (
	defaultFirstName      = "Cliente"
	defaultDocumentType   = "DNI"
	defaultUnspecified    = "No especificado"
	defaultAddress        = "Dirección no especificada"
	defaultDistrict       = "Distrito"
	defaultProvince       = "Provincia"
	defaultShippingMethod = "Método de envío"
	defaultProductName    = "Producto"
)

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func productName(p cart.Item) string {
	return orDefault(p.Product.Name, defaultProductName)
}

// buildOrder snapshots the form and the shipping option. The total is the
// cart subtotal plus the option cost in PEN.
func buildOrder(orderID string, user auth.User, form checkoutform.Form, option *shipping.Option, subtotal decimal.Decimal) orders.Order {
	email := orDefault(user.Email, form.Email)

	return orders.Order{
		OrderID:        orderID,
		UserID:         user.ID,
		UserEmail:      email,
		Total:          shipping.Total(subtotal, option).InexactFloat64(),
		Status:         orders.StatusCompleted,
		DeliveryMethod: string(option.ID),
		ShippingAddress: orders.ShippingAddress{
			FirstName:      orDefault(form.FirstName, defaultFirstName),
			LastName:       strings.TrimSpace(form.LastName),
			DocumentType:   orDefault(form.DocumentType, defaultDocumentType),
			DocumentID:     orDefault(form.DocumentID, defaultUnspecified),
			Email:          email,
			Phone:          orDefault(form.Phone, defaultUnspecified),
			Country:        orDefault(form.Country, shipping.DomesticCountry),
			Address:        orDefault(form.Address, defaultAddress),
			Apartment:      strings.TrimSpace(form.Apartment),
			District:       orDefault(form.District, defaultDistrict),
			Province:       orDefault(form.Province, defaultProvince),
			PostalCode:     strings.TrimSpace(form.PostalCode),
			ShippingMethod: orDefault(option.Label, defaultShippingMethod),
			ShippingCost:   shipping.CostInDomesticCurrency(*option).InexactFloat64(),
			Currency:       shipping.CurrencyPEN,
			DeliveryTime:   shipping.DeliveryTimeFor(option),
		},
	}
}

func buildItems(orderID string, items []cart.Item) []orders.OrderItem {
	out := make([]orders.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, orders.OrderItem{
			OrderID:     orderID,
			ProductID:   it.Product.ID,
			ProductName: productName(it),
			Price:       it.Product.Price,
			Size:        it.Product.Size,
			Color:       it.Product.Color,
			ImageURL:    it.Product.ImageURL,
			Quantity:    it.Quantity,
			Subtotal:    it.LineTotal().InexactFloat64(),
		})
	}
	return out
}

// subtotalOf sums the line totals of one items snapshot, so the order total
// always matches the lines written with it.
func subtotalOf(items []cart.Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
