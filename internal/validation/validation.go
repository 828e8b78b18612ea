// Package validation checks user input against the forum's content rules and
// reports every failing field with a human-readable message.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the list of failures for one input. It is returned as an error.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Messages maps "field.tag" (or just "field") to the message shown to users.
type Messages map[string]string

func (m Messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}

var subgroupPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields under their form names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsHTTPURL(fl.Field().String())
	}))
	mustRegister(v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return subgroupPattern.MatchString(fl.Field().String())
	}))

	return v
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host.
func IsHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Struct validates s and returns Errors listing every failed field, or nil.
func Struct(s any, messages Messages) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: messages.lookup(fe.Field(), fe.Tag()),
		})
	}
	return out
}

// Field builds a single-field failure.
func Field(field, message string) Errors {
	return Errors{{Field: field, Message: message}}
}
