package shipping

import "strings"

const (
	// DomesticCountry is where the store operates.
	DomesticCountry = "PE"
	// CapitalProvince is the only province served by the Lima couriers.
	CapitalProvince = "Lima"
)

var countries = []Country{
	{Code: "PE", Name: "Perú", Currency: "PEN", IsInternational: false},
	{Code: "AR", Name: "Argentina", Currency: "ARS", IsInternational: true},
	{Code: "CL", Name: "Chile", Currency: "CLP", IsInternational: true},
	{Code: "CO", Name: "Colombia", Currency: "COP", IsInternational: true},
	{Code: "MX", Name: "México", Currency: "MXN", IsInternational: true},
	{Code: "US", Name: "Estados Unidos", Currency: "USD", IsInternational: true},
}

var provinces = map[string][]string{
	"PE": {"Lima", "Arequipa", "Cusco", "Trujillo", "Piura", "Chiclayo", "Iquitos", "Huancayo", "Tacna", "Puno"},
	"AR": {"Buenos Aires", "Córdoba", "Santa Fe", "Mendoza", "Tucumán"},
	"CL": {"Santiago", "Valparaíso", "Concepción", "La Serena", "Antofagasta"},
	"CO": {"Bogotá", "Medellín", "Cali", "Barranquilla", "Cartagena"},
	"MX": {"Ciudad de México", "Guadalajara", "Monterrey", "Puebla", "Cancún"},
	"US": {"California", "Texas", "Florida", "New York", "Illinois"},
}

// excludedExpressDistricts are matched as substrings of the normalized district.
var excludedExpressDistricts = []string{
	"puente piedra",
	"ancon",
	"ventanilla",
	"cieneguilla",
	"carabayllo",
}

// Countries returns the destinations offered at checkout.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// Provinces returns the provinces of country, or nil for an unknown code.
func Provinces(country string) []Province {
	names := provinces[country]
	if len(names) == 0 {
		return nil
	}
	out := make([]Province, 0, len(names))
	for _, n := range names {
		out = append(out, Province{Name: n, Country: country})
	}
	return out
}

// IsDomestic reports whether country is the store's home country.
func IsDomestic(country string) bool {
	return country == DomesticCountry
}

// IsDistrictExcludedFromExpress reports whether express delivery does not
// reach district.
func IsDistrictExcludedFromExpress(district string) bool {
	normalized := strings.ToLower(strings.TrimSpace(district))
	if normalized == "" {
		return false
	}
	for _, excluded := range excludedExpressDistricts {
		if strings.Contains(normalized, excluded) {
			return true
		}
	}
	return false
}
