package shipping

import "github.com/shopspring/decimal"

// DeliveryMethod identifies a shipping option.
type DeliveryMethod string

const (
	MethodPickup        DeliveryMethod = "pickup"
	MethodExpressLima   DeliveryMethod = "express-lima"
	MethodRegularLima   DeliveryMethod = "regular-lima"
	MethodProvince      DeliveryMethod = "province"
	MethodInternational DeliveryMethod = "international"
)

// Valid reports whether m is one of the known delivery methods.
func (m DeliveryMethod) Valid() bool {
	switch m {
	case MethodPickup, MethodExpressLima, MethodRegularLima, MethodProvince, MethodInternational:
		return true
	}
	return false
}

// Currencies used by the catalog. PEN is the domestic currency, USD the
// secondary one international shipping is quoted in.
const (
	CurrencyPEN = "PEN"
	CurrencyUSD = "USD"
)

// Option is a priced delivery choice. Options are computed on demand and
// never mutated after being returned.
type Option struct {
	ID           DeliveryMethod  `json:"id"`
	Label        string          `json:"label"`
	Description  string          `json:"description"`
	Cost         decimal.Decimal `json:"cost"`
	Currency     string          `json:"currency"`
	DeliveryTime string          `json:"delivery_time"`
	Icon         string          `json:"icon"`
	Available    bool            `json:"available"`
	Conditions   []string        `json:"conditions,omitempty"`
}

// Country is a destination the store ships to.
type Country struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Currency        string `json:"currency"`
	IsInternational bool   `json:"is_international"`
}

// Province is a first-level subdivision of a Country.
type Province struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}
