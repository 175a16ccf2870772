package checkoutform

// DocumentType is an identity document accepted for a country.
type DocumentType struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	MaxLength int    `json:"max_length"`
	Hint      string `json:"hint"`
	Numeric   bool   `json:"numeric"`
}

type lengthRules struct {
	postal int
	phone  int
}

const (
	defaultPostalMaxLength   = 10
	defaultPhoneMaxLength    = 15
	defaultDocumentMaxLength = 20
)

var countryRules = map[string]lengthRules{
	"PE": {postal: 5, phone: 9},
	"AR": {postal: 8, phone: 10},
	"CL": {postal: 7, phone: 9},
	"CO": {postal: 6, phone: 10},
	"MX": {postal: 5, phone: 10},
	"US": {postal: 5, phone: 10},
}

var passportES = DocumentType{Value: "passport", Label: "Pasaporte", MaxLength: 12, Hint: "Hasta 12 caracteres"}

var documentTypes = map[string][]DocumentType{
	"PE": {
		{Value: "dni", Label: "DNI - Documento Nacional de Identidad", MaxLength: 8, Hint: "8 dígitos", Numeric: true},
		{Value: "ce", Label: "Carné de Extranjería", MaxLength: 12, Hint: "12 caracteres alfanuméricos"},
		passportES,
	},
	"AR": {
		{Value: "dni", Label: "DNI - Documento Nacional de Identidad", MaxLength: 8, Hint: "8 dígitos", Numeric: true},
		{Value: "cuil", Label: "CUIL/CUIT", MaxLength: 11, Hint: "11 dígitos", Numeric: true},
		passportES,
	},
	"CL": {
		{Value: "rut", Label: "RUT - Rol Único Tributario", MaxLength: 9, Hint: "9 dígitos", Numeric: true},
		passportES,
	},
	"CO": {
		{Value: "cc", Label: "Cédula de Ciudadanía", MaxLength: 11, Hint: "Hasta 11 dígitos", Numeric: true},
		{Value: "ce", Label: "Cédula de Extranjería", MaxLength: 11, Hint: "Hasta 11 dígitos", Numeric: true},
		passportES,
	},
	"MX": {
		{Value: "curp", Label: "CURP - Clave Única de Registro", MaxLength: 18, Hint: "18 caracteres"},
		{Value: "ine", Label: "INE - Credencial de Elector", MaxLength: 13, Hint: "13 dígitos", Numeric: true},
		passportES,
	},
	"US": {
		{Value: "ssn", Label: "SSN - Social Security Number", MaxLength: 9, Hint: "9 dígitos", Numeric: true},
		{Value: "drivers", Label: "Driver License", MaxLength: 15, Hint: "Hasta 15 caracteres"},
		{Value: "passport", Label: "Passport", MaxLength: 12, Hint: "Up to 12 characters"},
	},
}

var districtLabels = map[string]string{
	"PE": "Distrito *",
	"AR": "Ciudad",
	"CL": "Comuna",
	"CO": "Ciudad",
	"MX": "Municipio",
	"US": "City",
}

var districtPlaceholders = map[string]string{
	"PE": "Ej: Miraflores",
	"AR": "Ej: Palermo",
	"CL": "Ej: Providencia",
	"CO": "Ej: Chapinero",
	"MX": "Ej: Polanco",
	"US": "Ex: Manhattan",
}

// DocumentTypes lists the documents accepted for country, nil if unknown.
func DocumentTypes(country string) []DocumentType {
	types, ok := documentTypes[country]
	if !ok {
		return nil
	}
	out := make([]DocumentType, len(types))
	copy(out, types)
	return out
}

func findDocumentType(country, value string) (DocumentType, bool) {
	for _, dt := range documentTypes[country] {
		if dt.Value == value {
			return dt, true
		}
	}
	return DocumentType{}, false
}

func postalMaxLength(country string) int {
	if r, ok := countryRules[country]; ok {
		return r.postal
	}
	return defaultPostalMaxLength
}

func phoneMaxLength(country string) int {
	if r, ok := countryRules[country]; ok {
		return r.phone
	}
	return defaultPhoneMaxLength
}
