// Package registration holds the registration form and its validator.
package registration

import (
	"strings"

	"github.com/hamvadakara/hammeet/pkg/forms"
	"github.com/hamvadakara/hammeet/pkg/i18n"
)

// Field names, as used in ValidationErrors and client change events.
const (
	FieldName     = "name"
	FieldCallSign = "callSign"
	FieldMobile   = "mobile"
	FieldAddress  = "address"
)

// Message ids for validation failures.
const (
	MsgNameRequired     = "validation.name_required"
	MsgCallSignRequired = "validation.call_sign_required"
	MsgMobileInvalid    = "validation.mobile_invalid"
	MsgAddressRequired  = "validation.address_required"
)

// Form is one attendee's registration details.
type Form struct {
	Name     string
	CallSign string
	Mobile   string
	Address  string
}

// Values returns the form keyed by field name.
func (f Form) Values() map[string]string {
	return map[string]string{
		FieldName:     f.Name,
		FieldCallSign: f.CallSign,
		FieldMobile:   f.Mobile,
		FieldAddress:  f.Address,
	}
}

// Get returns the value of a field, or "" for unknown names.
func (f Form) Get(field string) string {
	return f.Values()[field]
}

// Set updates a field by name. It reports false for unknown names.
func (f *Form) Set(field, value string) bool {
	switch field {
	case FieldName:
		f.Name = value
	case FieldCallSign:
		f.CallSign = value
	case FieldMobile:
		f.Mobile = value
	case FieldAddress:
		f.Address = value
	default:
		return false
	}
	return true
}

// IsZero reports whether every field is empty.
func (f Form) IsZero() bool {
	return f == Form{}
}

// Normalized returns a copy with surrounding whitespace removed and the
// call sign upper-cased, for display and receipts.
func (f Form) Normalized() Form {
	return Form{
		Name:     strings.TrimSpace(f.Name),
		CallSign: strings.ToUpper(strings.TrimSpace(f.CallSign)),
		Mobile:   f.Mobile,
		Address:  strings.TrimSpace(f.Address),
	}
}

// ValidationErrors maps a field name to its message. A missing key means
// the field is valid.
type ValidationErrors map[string]string

// Valid reports whether there are no errors.
func (e ValidationErrors) Valid() bool {
	return len(e) == 0
}

// Has reports whether field has an error.
func (e ValidationErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Rules is the registration rule set. Every field is required; mobile must
// be exactly ten ASCII digits with nothing around them.
var Rules = forms.Rules{
	{Field: FieldName, Validators: []forms.Validator{forms.Required(MsgNameRequired)}},
	{Field: FieldCallSign, Validators: []forms.Validator{forms.Required(MsgCallSignRequired)}},
	{Field: FieldMobile, Validators: []forms.Validator{forms.Pattern(`[0-9]{10}`, MsgMobileInvalid)}},
	{Field: FieldAddress, Validators: []forms.Validator{forms.Required(MsgAddressRequired)}},
}

// Validate checks every field and returns all failures, in English.
func Validate(f Form) ValidationErrors {
	return ValidateWith(f, i18n.Default())
}

// ValidateWith is Validate with messages from t.
func ValidateWith(f Form, t *i18n.Translator) ValidationErrors {
	var translate func(string) string
	if t != nil {
		translate = func(id string) string { return t.T(id) }
	}
	return ValidationErrors(Rules.Check(f.Values(), translate))
}
