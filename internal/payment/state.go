// Package payment formats and validates card-like input. No charge is made;
// the values only gate the checkout.
package payment

import (
	"regexp"
	"strconv"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

const cardNumberDigits = 16

var (
	nonDigit       = regexp.MustCompile(`\D`)
	nameDisallowed = regexp.MustCompile(`[^a-zA-ZáéíóúÁÉÍÓÚñÑ\s]`)
	validate       = validatorv10.New()
)

// Form holds the values as displayed (card number grouped by four, expiry
// as MM/YY). Validator tags express the completeness rules.
type Form struct {
	CardNumber string `json:"card_number" validate:"required"`
	CardName   string `json:"card_name" validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"len=5"`
	CVV        string `json:"cvv" validate:"min=3,max=4,numeric"`
}

// Errors holds one inline message per field; empty means valid.
type Errors struct {
	CardNumber string `json:"card_number,omitempty"`
	CardName   string `json:"card_name,omitempty"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	CVV        string `json:"cvv,omitempty"`
}

func (e Errors) Any() bool {
	return e.CardNumber != "" || e.CardName != "" || e.ExpiryDate != "" || e.CVV != ""
}

// State is not safe for concurrent use.
type State struct {
	form   Form
	errors Errors
}

func New() *State { return &State{} }

func (s *State) Form() Form      { return s.form }
func (s *State) Errors() Errors  { return s.errors }
func (s *State) HasErrors() bool { return s.errors.Any() }

// SetCardNumber keeps up to 16 digits, displayed in groups of four.
func (s *State) SetCardNumber(v string) {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) > cardNumberDigits {
		digits = digits[:cardNumberDigits]
	}
	groups := make([]string, 0, 4)
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		groups = append(groups, digits[i:end])
	}
	s.form.CardNumber = strings.Join(groups, " ")
	s.errors.CardNumber = ""
	if len(digits) > 0 && len(digits) < cardNumberDigits {
		s.errors.CardNumber = "Debe tener 16 dígitos"
	}
}

// SetCardName keeps letters and spaces, uppercased.
func (s *State) SetCardName(v string) {
	cleaned := strings.ToUpper(nameDisallowed.ReplaceAllString(v, ""))
	s.form.CardName = cleaned
	s.errors.CardName = ""
	if n := len([]rune(cleaned)); n > 0 && n < 3 {
		s.errors.CardName = "Mínimo 3 caracteres"
	}
}

// SetExpiryDate keeps digits and inserts "/" after the month. The month is
// checked once the value is complete.
func (s *State) SetExpiryDate(v string) {
	value := nonDigit.ReplaceAllString(v, "")
	if len(value) >= 2 {
		rest := value[2:]
		if len(rest) > 2 {
			rest = rest[:2]
		}
		value = value[:2] + "/" + rest
	}
	s.form.ExpiryDate = value

	switch {
	case len(value) == 5:
		month, _ := strconv.Atoi(value[:2])
		s.errors.ExpiryDate = ""
		if month < 1 || month > 12 {
			s.errors.ExpiryDate = "Mes inválido (01-12)"
		}
	case len(value) > 0:
		s.errors.ExpiryDate = "Formato: MM/AA"
	default:
		s.errors.ExpiryDate = ""
	}
}

// SetCVV keeps up to 4 digits.
func (s *State) SetCVV(v string) {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	s.form.CVV = digits
	s.errors.CVV = ""
	if len(digits) > 0 && len(digits) < 3 {
		s.errors.CVV = "Mínimo 3 dígitos"
	}
}

// CardDigits returns the card number without separators.
func (s *State) CardDigits() string {
	return strings.ReplaceAll(s.form.CardNumber, " ", "")
}

// IsValid requires a 16-digit card, a name of at least 3 characters, a
// complete MM/YY expiry, a 3-4 digit CVV and no outstanding messages.
func (s *State) IsValid() bool {
	if s.HasErrors() {
		return false
	}
	if len(s.CardDigits()) != cardNumberDigits {
		return false
	}
	if len([]rune(strings.TrimSpace(s.form.CardName))) < 3 {
		return false
	}
	return validate.Struct(s.form) == nil
}
