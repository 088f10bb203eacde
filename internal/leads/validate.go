package leads

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

const (
	minNameLength = 2
	phoneDigits   = 10
)

// Form fields in the order their warnings are reported.
const (
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldState         = "state"
	FieldInsuranceType = "insurance_type"
)

// FormInput is the raw, untrusted set of values supplied by the form.
type FormInput struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	State         string `json:"state"`
	InsuranceType string `json:"insurance_type"`
}

// FieldError is a human-readable warning for one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// IsValidEmail checks the address against a permissive local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// IsValidPhone reports whether s carries exactly ten digits once formatting
// is removed.
func IsValidPhone(s string) bool {
	return len(DigitsOnly(s)) == phoneDigits
}

// IsValidName requires at least two characters after trimming.
func IsValidName(s string) bool {
	return len([]rune(strings.TrimSpace(s))) >= minNameLength
}

// Validate returns one warning per failing field, first name through
// insurance type. An empty result means the input can be built into a Record.
func Validate(in FormInput, catalog Catalog) []FieldError {
	var errs []FieldError
	if !IsValidName(in.FirstName) {
		errs = append(errs, FieldError{Field: FieldFirstName, Message: "Please enter your first name"})
	}
	if !IsValidName(in.LastName) {
		errs = append(errs, FieldError{Field: FieldLastName, Message: "Please enter your last name"})
	}
	if !IsValidEmail(in.Email) {
		errs = append(errs, FieldError{Field: FieldEmail, Message: "Please enter a valid email address"})
	}
	if !IsValidPhone(in.Phone) {
		errs = append(errs, FieldError{Field: FieldPhone, Message: "Please enter a valid 10-digit phone number"})
	}
	if !catalog.ValidState(in.State) {
		errs = append(errs, FieldError{Field: FieldState, Message: "Please select your state"})
	}
	if !catalog.ValidInsuranceType(in.InsuranceType) {
		errs = append(errs, FieldError{Field: FieldInsuranceType, Message: "Please select an insurance type"})
	}
	return errs
}
