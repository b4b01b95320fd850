// pkg/config/validate.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their koanf key, which is also the flag name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError is a lightweight error describing one invalid setting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "validation failed"
	}
	if e.Reason == "" {
		return e.Field + ": invalid"
	}
	return e.Field + ": " + e.Reason
}

// Validate checks cfg against its struct tags and returns every violation
// joined into a single error, or nil.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{Field: fe.Field(), Reason: reason(fe)})
	}
	return errors.Join(errs...)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "ip":
		return fmt.Sprintf("must be a valid IP address, got %q", fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
