package checkoutform

import (
	"fmt"

	"github.com/imrishuroy/storefront-checkout/internal/shipping"
)

func (s *State) AvailableCountries() []shipping.Country {
	return shipping.Countries()
}

func (s *State) AvailableProvinces() []shipping.Province {
	return shipping.Provinces(s.form.Country)
}

func (s *State) AvailableDocumentTypes() []DocumentType {
	return DocumentTypes(s.form.Country)
}

func (s *State) ProvinceLabel() string {
	if shipping.IsDomestic(s.form.Country) {
		return "Provincia"
	}
	return "Estado/Provincia"
}

func (s *State) DistrictLabel() string {
	if l, ok := districtLabels[s.form.Country]; ok {
		return l
	}
	return "Ciudad"
}

func (s *State) DistrictPlaceholder() string {
	if p, ok := districtPlaceholders[s.form.Country]; ok {
		return p
	}
	return "Ciudad"
}

func (s *State) DocumentLabel() string {
	if dt, ok := findDocumentType(s.form.Country, s.form.DocumentType); ok {
		return dt.Label
	}
	return "Número de Documento"
}

func (s *State) DocumentPlaceholder() string {
	if dt, ok := findDocumentType(s.form.Country, s.form.DocumentType); ok {
		return fmt.Sprintf("%s (%s)", dt.Label, dt.Hint)
	}
	return "Seleccione primero el tipo de documento"
}

func (s *State) DocumentMaxLength() int {
	if dt, ok := findDocumentType(s.form.Country, s.form.DocumentType); ok {
		return dt.MaxLength
	}
	return defaultDocumentMaxLength
}

func (s *State) DocumentHint() string {
	if dt, ok := findDocumentType(s.form.Country, s.form.DocumentType); ok {
		return fmt.Sprintf("Ingrese su %s - %s", dt.Label, dt.Hint)
	}
	return "Seleccione el tipo de documento primero"
}

func (s *State) PostalMaxLength() int { return postalMaxLength(s.form.Country) }

func (s *State) PostalPlaceholder() string {
	return fmt.Sprintf("Código postal (%d caracteres)", s.PostalMaxLength())
}

func (s *State) PhoneMaxLength() int { return phoneMaxLength(s.form.Country) }

func (s *State) PhonePlaceholder() string {
	return fmt.Sprintf("Teléfono (%d dígitos)", s.PhoneMaxLength())
}

func (s *State) PhoneHint() string {
	return fmt.Sprintf("Ingrese su número de %d dígitos", s.PhoneMaxLength())
}
