package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire name so violations match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors}
		}
		return err
	}
	return nil
}

// Var validates a single value against a tag expression such as "required,uuid".
// field is used as the property name in the resulting violations.
func Var(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors, field: field}
		}
		return err
	}
	return nil
}

// Violation is one failed constraint, in the shape the storefront forms render.
type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// ValidationError wraps validator.ValidationErrors with a user-friendly message.
type ValidationError struct {
	Errors validator.ValidationErrors

	// field overrides the reported field name for Var validations, which
	// have no struct field to name.
	field string

	extra []Violation
}

// NewViolation builds a ValidationError for a constraint checked outside of
// struct tags, e.g. "the review id does not belong to this customer".
func NewViolation(field, code, message string) *ValidationError {
	return &ValidationError{extra: []Violation{{PropertyPath: "/" + field, Code: code, Message: message}}}
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, v := range e.Violations() {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", strings.TrimPrefix(v.PropertyPath, "/"), v.Message))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	violations := e.Violations()
	fields := make(map[string]string, len(violations))
	for _, v := range violations {
		fields[strings.TrimPrefix(v.PropertyPath, "/")] = v.Message
	}
	return fields
}

// Violations returns every failed constraint in declaration order.
func (e *ValidationError) Violations() []Violation {
	out := make([]Violation, 0, len(e.Errors)+len(e.extra))
	for _, fe := range e.Errors {
		name := fe.Field()
		if e.field != "" {
			name = e.field
		}
		out = append(out, Violation{
			PropertyPath: "/" + name,
			Code:         fe.Tag(),
			Message:      msgForTag(fe),
		})
	}
	return append(out, e.extra...)
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "hexadecimal":
		return "must be a hexadecimal id"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
