package validation

import (
	"errors"
	"reflect"
	"strings"

	"carrental/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator runs struct tag validation and reports failures as a
// domain.ValidationError keyed by JSON field name.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("email_shape", stringRule(IsValidEmail))
	_ = v.RegisterValidation("phone", stringRule(IsValidPhone))
	_ = v.RegisterValidation("card_number", stringRule(IsValidCardNumber))
	_ = v.RegisterValidation("card_expiry", stringRule(IsValidExpiry))
	_ = v.RegisterValidation("cvv", stringRule(IsValidCVV))

	return &Validator{v: v}
}

func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	}
}

// Struct validates s. Every failing field is reported, not only the first.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := domain.NewValidationError()
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "eq":
		if fe.Kind() == reflect.Bool {
			return "must be accepted"
		}
		return "must equal " + fe.Param()
	case "email_shape":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "card_number":
		return "must be 13 to 19 digits"
	case "card_expiry":
		return "must be MM/YY"
	case "cvv":
		return "must be 3 or 4 digits"
	case "datetime":
		return "must match " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "gt", "gte":
		return "must be at least " + fe.Param()
	case "lt", "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
