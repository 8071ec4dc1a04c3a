// Package forms provides field validators and ordered rule sets for text
// forms.
package forms

import (
	"errors"
	"regexp"
	"strings"
)

// Validation failures.
var (
	ErrRequired        = errors.New("required")
	ErrPatternMismatch = errors.New("pattern mismatch")
)

// Validator validates a field value.
type Validator interface {
	// Validate checks if the value is valid.
	Validate(value string) error

	// Message returns the message id reported when Validate fails.
	Message() string
}

// RequiredValidator rejects values that are empty after trimming whitespace.
type RequiredValidator struct {
	Msg string
}

func (v RequiredValidator) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrRequired
	}
	return nil
}

func (v RequiredValidator) Message() string { return v.Msg }

// PatternValidator requires the whole, untrimmed value to match a regular
// expression. Empty values are checked too.
type PatternValidator struct {
	re  *regexp.Regexp
	Msg string
}

func (v PatternValidator) Validate(value string) error {
	if !v.re.MatchString(value) {
		return ErrPatternMismatch
	}
	return nil
}

func (v PatternValidator) Message() string { return v.Msg }

// Required returns a required validator.
func Required(msg string) Validator {
	return RequiredValidator{Msg: msg}
}

// Pattern returns a validator for the given expression. The expression is
// anchored at both ends.
func Pattern(expr, msg string) Validator {
	return PatternValidator{re: regexp.MustCompile(`^(?:` + expr + `)$`), Msg: msg}
}

// Rule binds validators to a field. Validators run in order and the first
// failure is reported.
type Rule struct {
	Field      string
	Validators []Validator
}

// Rules is an ordered rule set.
type Rules []Rule

// Check evaluates every rule against values and returns one message per
// invalid field. translate maps message ids to text; nil keeps the ids.
// The result is empty, never nil, when every field is valid.
func (rs Rules) Check(values map[string]string, translate func(id string) string) map[string]string {
	errs := make(map[string]string)
	for _, rule := range rs {
		value := values[rule.Field]
		for _, v := range rule.Validators {
			if v.Validate(value) == nil {
				continue
			}
			msg := v.Message()
			if translate != nil {
				msg = translate(msg)
			}
			errs[rule.Field] = msg
			break
		}
	}
	return errs
}

// Fields returns the rule field names in order.
func (rs Rules) Fields() []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Field
	}
	return names
}

// Func adapts the validators of one field to a func(string) error, the
// shape terminal form libraries expect. Unknown fields always pass.
func (rs Rules) Func(field string, translate func(id string) string) func(string) error {
	var only Rules
	for _, r := range rs {
		if r.Field == field {
			only = append(only, r)
		}
	}
	return func(value string) error {
		if msg, ok := only.Check(map[string]string{field: value}, translate)[field]; ok {
			return errors.New(msg)
		}
		return nil
	}
}
