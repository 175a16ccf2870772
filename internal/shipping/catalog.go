// Package shipping computes the delivery options offered for a destination
// and prices an order total with the chosen option.
package shipping

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ExchangeRate converts USD shipping costs into PEN.
var ExchangeRate = decimal.RequireFromString("3.75")

var (
	costPickup        = decimal.Zero
	costExpressLima   = decimal.NewFromInt(25)
	costRegularLima   = decimal.NewFromInt(12)
	costProvince      = decimal.NewFromInt(18)
	costInternational = decimal.NewFromInt(35)
)

var defaultDeliveryTimes = map[DeliveryMethod]string{
	MethodPickup:        "Disponible inmediatamente",
	MethodExpressLima:   "24 horas",
	MethodRegularLima:   "3-5 días hábiles",
	MethodProvince:      "3-7 días hábiles",
	MethodInternational: "~15 días hábiles",
}

// Options lists the delivery options for a destination. Pickup is always
// first; exactly one of the Lima, province or international branches follows.
// Unknown country codes are treated as international.
func Options(country, province, district string) []Option {
	options := []Option{pickupOption()}

	switch {
	case IsDomestic(country) && province == CapitalProvince:
		options = append(options, expressLimaOption(IsDistrictExcludedFromExpress(district)), regularLimaOption())
	case IsDomestic(country):
		options = append(options, provinceOption())
	default:
		options = append(options, internationalOption())
	}

	return options
}

// Find returns the option with id among the options for a destination.
func Find(country, province, district string, id DeliveryMethod) (Option, bool) {
	for _, o := range Options(country, province, district) {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Total adds the shipping cost of option to subtotal, converting USD costs
// with ExchangeRate. A nil option leaves subtotal unchanged. No rounding is
// applied.
func Total(subtotal decimal.Decimal, option *Option) decimal.Decimal {
	if option == nil {
		return subtotal
	}
	return subtotal.Add(CostInDomesticCurrency(*option))
}

// CostInDomesticCurrency returns the option cost expressed in PEN.
func CostInDomesticCurrency(option Option) decimal.Decimal {
	if option.Currency == CurrencyUSD {
		return option.Cost.Mul(ExchangeRate)
	}
	return option.Cost
}

// DefaultDeliveryMethod preselects a method before a district is known.
func DefaultDeliveryMethod(country, province string) DeliveryMethod {
	switch {
	case IsDomestic(country) && province == CapitalProvince:
		return MethodRegularLima
	case IsDomestic(country):
		return MethodProvince
	default:
		return MethodInternational
	}
}

// FormatCost renders a cost for display: "Gratis" for zero, "$35.00 USD" for
// USD and "S/. 12.00" otherwise.
func FormatCost(cost decimal.Decimal, currency string) string {
	if cost.IsZero() {
		return "Gratis"
	}
	if currency == CurrencyUSD {
		return fmt.Sprintf("$%s USD", cost.StringFixed(2))
	}
	return fmt.Sprintf("S/. %s", cost.StringFixed(2))
}

// DeliveryTimeFor returns the option's delivery time, falling back to the
// method default when the option text is blank.
func DeliveryTimeFor(option *Option) string {
	if option == nil {
		return defaultDeliveryTimes[MethodPickup]
	}
	if t := strings.TrimSpace(option.DeliveryTime); t != "" {
		return t
	}
	if t, ok := defaultDeliveryTimes[option.ID]; ok {
		return t
	}
	return "Según método seleccionado"
}

func pickupOption() Option {
	return Option{
		ID:           MethodPickup,
		Label:        "Retiro en Tienda",
		Description:  "Recoge tu pedido en nuestra tienda física",
		Cost:         costPickup,
		Currency:     CurrencyPEN,
		DeliveryTime: defaultDeliveryTimes[MethodPickup],
		Icon:         "fa-store",
		Available:    true,
		Conditions: []string{
			"Sin costo de envío",
			"Horario: Lun-Vie 10:30am - 6:30pm, Sáb 11:00am - 1:00pm",
		},
	}
}

func expressLimaOption(excluded bool) Option {
	conditions := []string{
		"Entrega dentro de las 24 horas",
		"Lun-Vie: 10:30am - 6:30pm",
		"Sábados: 11:00am - 1:00pm",
	}
	if excluded {
		conditions = []string{
			"No disponible para tu distrito",
			"Distritos excluidos: Puente Piedra, Ancón, Ventanilla, Cieneguilla, Carabayllo",
		}
	}
	return Option{
		ID:           MethodExpressLima,
		Label:        "Envío Express - Lima",
		Description:  "Entrega en 24 horas",
		Cost:         costExpressLima,
		Currency:     CurrencyPEN,
		DeliveryTime: defaultDeliveryTimes[MethodExpressLima],
		Icon:         "fa-bolt",
		Available:    !excluded,
		Conditions:   conditions,
	}
}

func regularLimaOption() Option {
	return Option{
		ID:           MethodRegularLima,
		Label:        "Envío Regular - Lima",
		Description:  "Entrega en 3-5 días hábiles",
		Cost:         costRegularLima,
		Currency:     CurrencyPEN,
		DeliveryTime: defaultDeliveryTimes[MethodRegularLima],
		Icon:         "fa-truck",
		Available:    true,
		Conditions: []string{
			"Cobertura: Todo Lima Metropolitana",
			"Tiempo de entrega: 3-5 días hábiles",
		},
	}
}

func provinceOption() Option {
	return Option{
		ID:           MethodProvince,
		Label:        "Envío a Provincia",
		Description:  "Entrega en 3-7 días hábiles",
		Cost:         costProvince,
		Currency:     CurrencyPEN,
		DeliveryTime: defaultDeliveryTimes[MethodProvince],
		Icon:         "fa-truck",
		Available:    true,
		Conditions: []string{
			"Cobertura: Todo el Perú",
			"La empresa de envío puede variar según la zona",
		},
	}
}

func internationalOption() Option {
	return Option{
		ID:           MethodInternational,
		Label:        "Envío Internacional",
		Description:  "Entrega en ~15 días hábiles",
		Cost:         costInternational,
		Currency:     CurrencyUSD,
		DeliveryTime: defaultDeliveryTimes[MethodInternational],
		Icon:         "fa-plane",
		Available:    true,
		Conditions: []string{
			"Courier: DHL",
			"Tiempo estimado: 15 días hábiles",
			"Costos de aduana no incluidos",
		},
	}
}
