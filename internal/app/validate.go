package app

import (
	"errors"
	"reflect"
	"strings"

	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// firstFieldError returns the earliest failing field in declaration order.
func firstFieldError(err error) (validator.FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return nil, false
	}
	return verrs[0], true
}

// ValidateRequest runs the struct tags of a request and reports the first
// failing field as a VALIDATION error. Tenant fields are tagged "-" and
// checked separately through TenantContext.Validate.
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	fe, ok := firstFieldError(err)
	if !ok {
		return err
	}
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "%s is required", field)
	case "min", "gte":
		return domain.NewValidationError(field, "%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return domain.NewValidationError(field, "%s must be at most %s", field, fe.Param())
	case "oneof":
		return domain.NewValidationError(field, "%s must be one of %s", field, fe.Param())
	case "required_if":
		return domain.NewValidationError(field, "%s is required when %s", field, fe.Param())
	default:
		return domain.NewValidationError(field, "%s is invalid (%s)", field, fe.Tag())
	}
}
