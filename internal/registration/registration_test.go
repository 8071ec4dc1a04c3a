package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() Form {
	return Form{Name: "A", CallSign: "B", Mobile: "9876543210", Address: "C"}
}

func TestValidate_Valid(t *testing.T) {
	errs := Validate(validForm())
	assert.Empty(t, errs)
	assert.True(t, errs.Valid())
}

func TestValidate_Empty(t *testing.T) {
	errs := Validate(Form{})
	assert.Equal(t, ValidationErrors{
		FieldName:     "Full name is required",
		FieldCallSign: "Call sign is required",
		FieldMobile:   "Enter a 10-digit mobile number",
		FieldAddress:  "Address is required",
	}, errs)
}

func TestValidate_Mobile(t *testing.T) {
	tests := []struct {
		mobile string
		ok     bool
	}{
		{"1234567890", true},
		{"0000000000", true},
		{"123456789", false},
		{"12345678901", false},
		{"12345abcde", false},
		{"+911234567890", false},
		{"12345 67890", false},
		{" 1234567890", false},
		{"1234567890\n", false},
		{"١٢٣٤٥٦٧٨٩٠", false}, // non-ASCII digits
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mobile, func(t *testing.T) {
			f := validForm()
			f.Mobile = tt.mobile
			errs := Validate(f)
			assert.Equal(t, !tt.ok, errs.Has(FieldMobile))
			assert.Len(t, errs, boolToInt(!tt.ok))
		})
	}
}

func TestValidate_WhitespaceIsEmpty(t *testing.T) {
	f := Form{Name: "   ", CallSign: "\t", Mobile: "9876543210", Address: " \n "}
	errs := Validate(f)

	assert.True(t, errs.Has(FieldName))
	assert.True(t, errs.Has(FieldCallSign))
	assert.True(t, errs.Has(FieldAddress))
	assert.False(t, errs.Has(FieldMobile))
}

func TestValidate_Independent(t *testing.T) {
	f := validForm()
	f.Name = ""
	f.Mobile = "abc"

	errs := Validate(f)
	assert.Len(t, errs, 2)
	assert.True(t, errs.Has(FieldName))
	assert.True(t, errs.Has(FieldMobile))
}

func TestValidateWith_NilTranslatorKeepsIDs(t *testing.T) {
	errs := ValidateWith(Form{Mobile: "9876543210", Name: "x", CallSign: "y"}, nil)
	assert.Equal(t, ValidationErrors{FieldAddress: MsgAddressRequired}, errs)
}

func TestForm_SetGet(t *testing.T) {
	var f Form
	assert.True(t, f.IsZero())

	assert.True(t, f.Set(FieldCallSign, "vu2abc"))
	assert.True(t, f.Set(FieldMobile, "9876543210"))
	assert.False(t, f.Set("email", "x@example.com"))

	assert.Equal(t, "vu2abc", f.Get(FieldCallSign))
	assert.Equal(t, "", f.Get("email"))
	assert.Equal(t, "VU2ABC", f.Normalized().CallSign)
	assert.False(t, f.IsZero())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
