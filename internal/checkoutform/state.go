// Package checkoutform holds the contact and address fields of a checkout
// together with their inline validation messages. Setters sanitize input the
// way the storefront form does while the shopper types.
package checkoutform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/storefront-checkout/internal/shipping"
)

var (
	// ErrShippingOptionNotOffered is returned when the option id is not in
	// the list computed for the current destination.
	ErrShippingOptionNotOffered = errors.New("shipping option not offered for destination")
	// ErrShippingOptionUnavailable is returned when the option is listed but
	// marked unavailable (e.g. express to an excluded district).
	ErrShippingOptionUnavailable = errors.New("shipping option unavailable")
)

var (
	nameDisallowed  = regexp.MustCompile(`[^a-zA-ZáéíóúÁÉÍÓÚñÑ\s]`)
	nonDigit        = regexp.MustCompile(`\D`)
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Form is the address/contact snapshot. Required fields are enforced by
// validator tags; the district/postal rule depends on the country.
type Form struct {
	Email        string `json:"email" validate:"required"`
	Newsletter   bool   `json:"newsletter"`
	Country      string `json:"country" validate:"required"`
	DocumentType string `json:"document_type" validate:"required"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	DocumentID   string `json:"document_id" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Apartment    string `json:"apartment"`
	PostalCode   string `json:"postal_code"`
	District     string `json:"district"`
	Province     string `json:"province" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
}

// Errors holds one inline message per validated field; empty means valid.
type Errors struct {
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Any reports whether at least one message is set.
func (e Errors) Any() bool {
	return e.FirstName != "" || e.LastName != "" || e.DocumentID != "" || e.PostalCode != "" || e.Phone != ""
}

var validate = newValidator()

func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(destinationStructValidation, Form{})
	return v
}

// destinationStructValidation requires a district for domestic addresses and
// a postal code for international ones.
func destinationStructValidation(sl validatorv10.StructLevel) {
	f := sl.Current().Interface().(Form)
	if f.Country == "" {
		return
	}
	if shipping.IsDomestic(f.Country) {
		if f.District == "" {
			sl.ReportError(f.District, "district", "District", "required_domestic", "")
		}
		return
	}
	if f.PostalCode == "" {
		sl.ReportError(f.PostalCode, "postal_code", "PostalCode", "required_international", "")
	}
}

// State is owned by a single checkout session and is not safe for
// concurrent use.
type State struct {
	form     Form
	errors   Errors
	selected *shipping.Option
}

// New returns a form preset to the domestic country.
func New() *State {
	return &State{form: Form{Country: shipping.DomesticCountry}}
}

func (s *State) Form() Form     { return s.form }
func (s *State) Errors() Errors { return s.errors }
func (s *State) HasErrors() bool {
	return s.errors.Any()
}

// Validate runs the required-field rules. The returned error is a
// validator.ValidationErrors listing every missing field.
func (s *State) Validate() error {
	return validate.Struct(s.form)
}

func (s *State) IsFormValid() bool {
	return s.Validate() == nil
}

func (s *State) IsInternational() bool {
	return !shipping.IsDomestic(s.form.Country)
}

func (s *State) SetEmail(v string)     { s.form.Email = strings.TrimSpace(v) }
func (s *State) SetNewsletter(v bool)  { s.form.Newsletter = v }
func (s *State) SetAddress(v string)   { s.form.Address = v }
func (s *State) SetApartment(v string) { s.form.Apartment = v }

// SetCountry switches the destination country and resets every
// country-dependent field and the selected shipping option.
func (s *State) SetCountry(v string) {
	s.form.Country = strings.ToUpper(strings.TrimSpace(v))
	s.form.Province = ""
	s.form.District = ""
	s.form.PostalCode = ""
	s.form.DocumentType = ""
	s.form.DocumentID = ""
	s.form.Phone = ""
	s.selected = nil
	s.errors.DocumentID = ""
	s.errors.Phone = ""
}

// SetProvince resets the district and the selected shipping option.
func (s *State) SetProvince(v string) {
	s.form.Province = strings.TrimSpace(v)
	s.form.District = ""
	s.selected = nil
}

// SetDistrict updates the district. A selected option is re-resolved since
// express availability depends on the district; it is dropped if it became
// unavailable.
func (s *State) SetDistrict(v string) {
	s.form.District = v
	if s.selected == nil {
		return
	}
	opt, ok := s.findOption(s.selected.ID)
	if !ok || !opt.Available {
		s.selected = nil
		return
	}
	s.selected = &opt
}

func (s *State) SetFirstName(v string) {
	s.form.FirstName, s.errors.FirstName = sanitizeName(v)
}

func (s *State) SetLastName(v string) {
	s.form.LastName, s.errors.LastName = sanitizeName(v)
}

func sanitizeName(v string) (string, string) {
	if nameDisallowed.MatchString(v) {
		return nameDisallowed.ReplaceAllString(v, ""), "Solo se permiten letras"
	}
	return v, ""
}

// SetDocumentType selects a document type and clears the document id.
func (s *State) SetDocumentType(v string) {
	s.form.DocumentType = v
	s.form.DocumentID = ""
	s.errors.DocumentID = ""
}

// SetDocumentID sanitizes per the selected document type: numeric types keep
// digits only and must be complete; alphanumeric types are uppercased and
// need at least 6 characters.
func (s *State) SetDocumentID(v string) {
	dt, ok := findDocumentType(s.form.Country, s.form.DocumentType)
	if !ok {
		s.form.DocumentID = v
		s.errors.DocumentID = "Seleccione el tipo de documento primero"
		return
	}
	if dt.Numeric {
		digits := truncate(nonDigit.ReplaceAllString(v, ""), dt.MaxLength)
		s.form.DocumentID = digits
		s.errors.DocumentID = ""
		if len(digits) > 0 && len(digits) < dt.MaxLength {
			s.errors.DocumentID = fmt.Sprintf("Debe tener %d dígitos", dt.MaxLength)
		}
		return
	}
	cleaned := truncate(nonAlphanumeric.ReplaceAllString(v, ""), dt.MaxLength)
	s.form.DocumentID = strings.ToUpper(cleaned)
	s.errors.DocumentID = ""
	if len(cleaned) > 0 && len(cleaned) < 6 {
		s.errors.DocumentID = "Mínimo 6 caracteres"
	}
}

// SetPostalCode keeps alphanumerics, uppercased and clamped to the country
// length. Incomplete codes are only an error for international addresses.
func (s *State) SetPostalCode(v string) {
	max := postalMaxLength(s.form.Country)
	cleaned := truncate(nonAlphanumeric.ReplaceAllString(v, ""), max)
	s.form.PostalCode = strings.ToUpper(cleaned)
	s.errors.PostalCode = ""
	if s.IsInternational() && len(cleaned) > 0 && len(cleaned) < max {
		s.errors.PostalCode = fmt.Sprintf("Debe tener %d caracteres", max)
	}
}

func (s *State) SetPhone(v string) {
	max := phoneMaxLength(s.form.Country)
	digits := nonDigit.ReplaceAllString(v, "")
	s.form.Phone = truncate(digits, max)
	s.errors.Phone = ""
	if len(digits) > 0 && len(digits) < max {
		s.errors.Phone = fmt.Sprintf("Debe tener %d dígitos", max)
	}
}

// AvailableShippingOptions is empty until both country and province are set.
func (s *State) AvailableShippingOptions() []shipping.Option {
	if s.form.Country == "" || s.form.Province == "" {
		return nil
	}
	return shipping.Options(s.form.Country, s.form.Province, s.form.District)
}

// SelectShippingOption selects an option from AvailableShippingOptions.
func (s *State) SelectShippingOption(id shipping.DeliveryMethod) error {
	opt, ok := s.findOption(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrShippingOptionNotOffered, id)
	}
	if !opt.Available {
		return fmt.Errorf("%w: %s", ErrShippingOptionUnavailable, id)
	}
	s.selected = &opt
	return nil
}

// SelectedShippingOption returns a copy of the selection, nil if none.
func (s *State) SelectedShippingOption() *shipping.Option {
	if s.selected == nil {
		return nil
	}
	opt := *s.selected
	return &opt
}

func (s *State) findOption(id shipping.DeliveryMethod) (shipping.Option, bool) {
	for _, o := range s.AvailableShippingOptions() {
		if o.ID == id {
			return o, true
		}
	}
	return shipping.Option{}, false
}

// truncate cuts s to at most n bytes; callers only pass ASCII.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
