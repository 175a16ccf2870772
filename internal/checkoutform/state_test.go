package checkoutform

import (
	"errors"
	"testing"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/storefront-checkout/internal/shipping"
)

func filledDomestic() *State {
	s := New()
	s.SetEmail("ana@example.com")
	s.SetFirstName("Ana")
	s.SetLastName("Quispe")
	s.SetDocumentType("dni")
	s.SetDocumentID("12345678")
	s.SetAddress("Av. Larco 123")
	s.SetProvince("Lima")
	s.SetDistrict("Miraflores")
	s.SetPhone("987654321")
	return s
}

func TestIsFormValid_Domestic(t *testing.T) {
	s := filledDomestic()
	assert.True(t, s.IsFormValid())
	assert.False(t, s.HasErrors())

	s.SetDistrict("")
	assert.False(t, s.IsFormValid(), "domestic address requires district")

	err := s.Validate()
	var verrs validatorv10.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "District", verrs[0].StructField())
}

func TestIsFormValid_International(t *testing.T) {
	s := New()
	s.SetCountry("us")
	s.SetEmail("john@example.com")
	s.SetFirstName("John")
	s.SetLastName("Smith")
	s.SetDocumentType("passport")
	s.SetDocumentID("x1234567")
	s.SetAddress("5th Ave 1")
	s.SetProvince("New York")
	s.SetPhone("2125550100")
	assert.False(t, s.IsFormValid(), "international address requires postal code")

	s.SetPostalCode("10001")
	assert.True(t, s.IsFormValid())
	assert.Equal(t, "X1234567", s.Form().DocumentID)
}

func TestIsFormValid_MissingRequired(t *testing.T) {
	s := filledDomestic()
	s.SetEmail("   ")
	assert.False(t, s.IsFormValid())
}

func TestSetCountry_ResetsDependentFields(t *testing.T) {
	s := filledDomestic()
	require.NoError(t, s.SelectShippingOption(shipping.MethodRegularLima))
	s.SetPhone("12")
	require.True(t, s.HasErrors())

	s.SetCountry("CL")

	f := s.Form()
	assert.Equal(t, "CL", f.Country)
	assert.Empty(t, f.Province)
	assert.Empty(t, f.District)
	assert.Empty(t, f.PostalCode)
	assert.Empty(t, f.DocumentType)
	assert.Empty(t, f.DocumentID)
	assert.Empty(t, f.Phone)
	assert.Nil(t, s.SelectedShippingOption())
	assert.False(t, s.HasErrors())
	assert.Equal(t, "Ana", f.FirstName, "contact fields survive a country change")
}

func TestSetProvince_ResetsDistrictAndOption(t *testing.T) {
	s := filledDomestic()
	require.NoError(t, s.SelectShippingOption(shipping.MethodExpressLima))

	s.SetProvince("Cusco")
	assert.Empty(t, s.Form().District)
	assert.Nil(t, s.SelectedShippingOption())
}

func TestSanitizeNames(t *testing.T) {
	s := New()
	s.SetFirstName("Ana María")
	assert.Equal(t, "Ana María", s.Form().FirstName)
	assert.Empty(t, s.Errors().FirstName)

	s.SetLastName("Pérez3!")
	assert.Equal(t, "Pérez", s.Form().LastName)
	assert.Equal(t, "Solo se permiten letras", s.Errors().LastName)
}

func TestSetDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		country string
		docType string
		input   string
		want    string
		wantErr string
	}{
		{"numeric complete", "PE", "dni", "1234-5678", "12345678", ""},
		{"numeric clamped", "PE", "dni", "1234567890", "12345678", ""},
		{"numeric partial", "PE", "dni", "1234", "1234", "Debe tener 8 dígitos"},
		{"alnum upper", "PE", "ce", "ab-12cd34", "AB12CD34", ""},
		{"alnum short", "PE", "passport", "ab1", "AB1", "Mínimo 6 caracteres"},
		{"alnum clamped", "MX", "curp", "abcd123456hdfxyz0199", "ABCD123456HDFXYZ01", ""},
		{"empty is fine", "PE", "dni", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.SetCountry(tt.country)
			s.SetDocumentType(tt.docType)
			s.SetDocumentID(tt.input)
			assert.Equal(t, tt.want, s.Form().DocumentID)
			assert.Equal(t, tt.wantErr, s.Errors().DocumentID)
		})
	}
}

func TestSetDocumentID_WithoutType(t *testing.T) {
	s := New()
	s.SetDocumentID("123")
	assert.Equal(t, "Seleccione el tipo de documento primero", s.Errors().DocumentID)

	s.SetDocumentType("dni")
	assert.Empty(t, s.Form().DocumentID)
	assert.Empty(t, s.Errors().DocumentID)
}

func TestSetPostalCode(t *testing.T) {
	s := New()
	s.SetPostalCode("15-07")
	assert.Equal(t, "1507", s.Form().PostalCode)
	assert.Empty(t, s.Errors().PostalCode, "partial postal code is not an error at home")

	s.SetCountry("AR")
	s.SetPostalCode("c1425abc99")
	assert.Equal(t, "C1425ABC", s.Form().PostalCode)
	assert.Empty(t, s.Errors().PostalCode)

	s.SetPostalCode("c14")
	assert.Equal(t, "Debe tener 8 caracteres", s.Errors().PostalCode)
}

func TestSetPhone(t *testing.T) {
	s := New()
	s.SetPhone("987 654 321 00")
	assert.Equal(t, "987654321", s.Form().Phone)
	assert.Empty(t, s.Errors().Phone)

	s.SetPhone("98765")
	assert.Equal(t, "Debe tener 9 dígitos", s.Errors().Phone)

	s.SetCountry("ZZ")
	s.SetPhone("123")
	assert.Equal(t, "Debe tener 15 dígitos", s.Errors().Phone)
}

func TestAvailableShippingOptions(t *testing.T) {
	s := New()
	assert.Empty(t, s.AvailableShippingOptions(), "no province yet")

	s.SetProvince("Arequipa")
	opts := s.AvailableShippingOptions()
	require.Len(t, opts, 2)
	assert.Equal(t, shipping.MethodProvince, opts[1].ID)
}

func TestSelectShippingOption(t *testing.T) {
	s := filledDomestic()

	err := s.SelectShippingOption(shipping.MethodInternational)
	assert.ErrorIs(t, err, ErrShippingOptionNotOffered)

	s.SetDistrict("Puente Piedra")
	err = s.SelectShippingOption(shipping.MethodExpressLima)
	assert.ErrorIs(t, err, ErrShippingOptionUnavailable)
	assert.Nil(t, s.SelectedShippingOption())

	require.NoError(t, s.SelectShippingOption(shipping.MethodRegularLima))
	opt := s.SelectedShippingOption()
	require.NotNil(t, opt)
	assert.Equal(t, "12", opt.Cost.String())
}

func TestSetDistrict_DropsExpressWhenExcluded(t *testing.T) {
	s := filledDomestic()
	require.NoError(t, s.SelectShippingOption(shipping.MethodExpressLima))

	s.SetDistrict("Carabayllo")
	assert.Nil(t, s.SelectedShippingOption())

	s.SetDistrict("San Isidro")
	require.NoError(t, s.SelectShippingOption(shipping.MethodRegularLima))
	s.SetDistrict("Ancón Ventanilla")
	assert.NotNil(t, s.SelectedShippingOption(), "regular stays available")
}

func TestLabels(t *testing.T) {
	s := New()
	assert.Equal(t, "Provincia", s.ProvinceLabel())
	assert.Equal(t, "Distrito *", s.DistrictLabel())
	assert.Equal(t, "Ej: Miraflores", s.DistrictPlaceholder())
	assert.Equal(t, "Número de Documento", s.DocumentLabel())
	assert.Equal(t, 20, s.DocumentMaxLength())
	assert.Equal(t, "Seleccione primero el tipo de documento", s.DocumentPlaceholder())
	assert.Equal(t, "Código postal (5 caracteres)", s.PostalPlaceholder())
	assert.Equal(t, "Teléfono (9 dígitos)", s.PhonePlaceholder())
	assert.Equal(t, "Ingrese su número de 9 dígitos", s.PhoneHint())
	assert.Len(t, s.AvailableDocumentTypes(), 3)
	assert.Len(t, s.AvailableProvinces(), 10)
	assert.Len(t, s.AvailableCountries(), 6)

	s.SetDocumentType("dni")
	assert.Equal(t, "DNI - Documento Nacional de Identidad (8 dígitos)", s.DocumentPlaceholder())
	assert.Equal(t, "Ingrese su DNI - Documento Nacional de Identidad - 8 dígitos", s.DocumentHint())
	assert.Equal(t, 8, s.DocumentMaxLength())

	s.SetCountry("CL")
	assert.Equal(t, "Estado/Provincia", s.ProvinceLabel())
	assert.Equal(t, "Comuna", s.DistrictLabel())

	s.SetCountry("BR")
	assert.Equal(t, "Ciudad", s.DistrictLabel())
	assert.Equal(t, "Ciudad", s.DistrictPlaceholder())
	assert.Empty(t, s.AvailableDocumentTypes())
}
