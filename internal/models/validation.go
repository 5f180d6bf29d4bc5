package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate shares gin's "binding" tag convention so insert DTOs read the same
// whether they are checked by the router or by a store.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	ConfigureBinding(v)
	return v
}

// ConfigureBinding makes v report JSON field names. The app applies it to
// gin's binding engine so router and store errors name fields alike.
func ConfigureBinding(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError reports input that violates an entity's insert contract.
type ValidationError struct {
	Entity string
	Fields []FieldError
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s", e.Entity)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	for i, f := range e.Fields {
		if i == 0 && e.Reason == "" {
			b.WriteString(": ")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s failed %s", f.Field, f.Rule)
	}
	return b.String()
}

// NewValidationError builds a ValidationError carrying a free-form reason.
func NewValidationError(entity, reason string, fields ...FieldError) *ValidationError {
	return &ValidationError{Entity: entity, Reason: reason, Fields: fields}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FieldErrors extracts per-field failures from a validator or gin binding error.
// It returns nil for other errors such as malformed JSON.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

func validateStruct(entity string, in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	fields := FieldErrors(err)
	if fields == nil {
		return &ValidationError{Entity: entity, Reason: err.Error()}
	}
	return &ValidationError{Entity: entity, Fields: fields}
}

// Describe prefixes summary to the reason, if there is one.
func (e *ValidationError) Describe(summary string) string {
	if e.Reason == "" {
		return summary
	}
	return summary + ": " + e.Reason
}
